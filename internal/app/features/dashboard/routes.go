// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes wires the dashboards under whatever mount point the top-level
// router chooses (e.g., "/dashboard"). GET / picks the view for the
// caller's role.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/", h.ServeDashboard)
	})
	r.With(auth.RequireRole(models.RoleLearner)).Get("/learner", h.ServeLearner)
	r.With(auth.RequireRole(models.RoleInstructor)).Get("/instructor", h.ServeInstructor)
	r.With(auth.RequireRole(models.RoleAdmin)).Get("/admin", h.ServeAdmin)

	return r
}
