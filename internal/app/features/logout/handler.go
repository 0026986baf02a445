// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log  *zap.Logger
	Auth *auth.Manager
}

func NewHandler(mgr *auth.Manager, logger *zap.Logger) *Handler {
	return &Handler{
		Log:  logger,
		Auth: mgr,
	}
}

// HandleLogout handles POST /auth/logout. Tokens are stateless, so signing
// out only expires the session cookie; bearer clients discard their token.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.ClearCookie(w, r); err != nil {
		h.Log.Error("logout: clear session cookie", zap.Error(err))
	}
	if a, ok := auth.CurrentActor(r); ok {
		h.Log.Info("user logged out", zap.String("user_id", a.ID.Hex()))
	}
	w.WriteHeader(http.StatusNoContent)
}
