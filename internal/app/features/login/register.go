// internal/app/features/login/register.go
package login

import (
	"errors"
	"net/http"

	userstore "github.com/dalemusser/dexterhub/internal/app/store/users"
	"github.com/dalemusser/dexterhub/internal/app/system/apperr"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/app/system/formutil"
	"github.com/dalemusser/dexterhub/internal/app/system/normalize"
	"github.com/dalemusser/dexterhub/internal/app/system/timeouts"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"go.uber.org/zap"
)

type registerRequest struct {
	FullName string `json:"fullName" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// HandleRegister handles POST /auth/register. New accounts are always
// learners; other roles are granted by an administrator.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := formutil.Bind(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	if normalize.Name(req.FullName) == "" {
		h.ErrLog.Respond(w, r, apperr.Invalid("fullName", "this field is required"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password failed", err, "Could not create the account.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "register")
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleLearner,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		h.ErrLog.Respond(w, r, apperr.Conflict(err.Error()))
		return
	}
	if err != nil {
		h.ErrLog.Respond(w, r, apperr.Store("create user", err))
		return
	}

	h.Log.Info("learner registered", zap.String("user_id", u.ID.Hex()))
	h.signIn(w, r, u, http.StatusCreated)
}
