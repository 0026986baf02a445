// internal/app/features/systemusers/routes.go
package systemusers

import (
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts user management under the path where this router is
// mounted (typically "/users"). Admins only; the workflow further limits
// who may touch admin accounts.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin))
		pr.Get("/", h.ServeList)
		pr.Put("/{id}/role", h.HandleRole)
		pr.Put("/{id}/status", h.HandleStatus)
	})

	return r
}
