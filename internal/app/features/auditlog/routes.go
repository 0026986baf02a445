// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit log under the path where this router is mounted
// (typically "/admin/audit-logs"). Admins only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin))
		pr.Get("/", h.ServeList)
	})

	return r
}
