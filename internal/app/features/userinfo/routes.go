// internal/app/features/userinfo/routes.go
package userinfo

import (
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers GET /me on the supplied router (typically the
// "/auth" subrouter).
func MountRoutes(r chi.Router, h *Handler) {
	r.With(auth.RequireSignedIn).Get("/me", h.ServeMe)
}
