// internal/app/features/appeals/routes.go
package appeals

import (
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// AdminRoutes mounts the appeal workflow (typically at "/admin/appeals").
// Learners file appeals here; admins list and review them.
func AdminRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.With(auth.RequireRole(models.RoleLearner)).Post("/", h.HandleFile)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin))
		pr.Get("/", h.ServeList)
		pr.Put("/{id}", h.HandleReview)
	})

	return r
}

// Routes mounts the learner's own view (typically at "/appeals").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.With(auth.RequireRole(models.RoleLearner)).Get("/my", h.ServeMine)
	return r
}
