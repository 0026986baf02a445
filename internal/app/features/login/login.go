// internal/app/features/login/login.go
package login

import (
	"errors"
	"net/http"

	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/app/system/formutil"
	"github.com/dalemusser/dexterhub/internal/app/system/normalize"
	"github.com/dalemusser/dexterhub/internal/app/system/respond"
	"github.com/dalemusser/dexterhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const badCredentials = "invalid email or password"

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := formutil.Bind(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	email := normalize.Email(req.Email)

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, email); !ok {
			h.Log.Warn("login rate limited", zap.String("email", email))
			respond.Error(w, http.StatusTooManyRequests, reason, nil)
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login")
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		burnCompare(req.Password)
		respond.Error(w, http.StatusUnauthorized, badCredentials, nil)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load user for login failed", err, "Could not sign you in.")
		return
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		h.Log.Info("login failed", zap.String("user_id", u.ID.Hex()))
		respond.Error(w, http.StatusUnauthorized, badCredentials, nil)
		return
	}
	if !u.IsActive() {
		respond.Error(w, http.StatusForbidden, "this account is disabled", nil)
		return
	}

	if h.Limiter != nil {
		h.Limiter.Succeeded(email)
	}
	h.Log.Info("user logged in", zap.String("user_id", u.ID.Hex()), zap.String("role", u.Role))
	h.signIn(w, r, *u, http.StatusOK)
}
