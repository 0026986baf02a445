// internal/app/features/userinfo/handler.go
package userinfo

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/dexterhub/internal/app/features/errors"
	userstore "github.com/dalemusser/dexterhub/internal/app/store/users"
	"github.com/dalemusser/dexterhub/internal/app/system/apperr"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/app/system/respond"
	"github.com/dalemusser/dexterhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the signed-in user's own record.
type Handler struct {
	Users  *userstore.Store
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler creates a new userinfo handler.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Users: userstore.New(db), Log: logger, ErrLog: errLog}
}

// ServeMe returns the current user. The password hash never leaves the
// server because the model omits it from JSON.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentActor(r)
	if !ok {
		h.ErrLog.Respond(w, r, apperr.ErrUnauthenticated)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "current user")
	defer cancel()

	u, err := h.Users.GetByID(ctx, actor.ID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.Respond(w, r, apperr.ErrUnauthenticated)
		return
	}
	if err != nil {
		h.ErrLog.Respond(w, r, apperr.Store("load current user", err))
		return
	}
	respond.OK(w, u)
}
