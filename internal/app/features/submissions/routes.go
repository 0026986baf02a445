// internal/app/features/submissions/routes.go
package submissions

import (
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts submission routes (typically at "/submissions").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleLearner))
		pr.Post("/", h.HandleSubmit)
		pr.Get("/my", h.ServeMine)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleInstructor, models.RoleAdmin))
		pr.Get("/course/{courseId}", h.ServeCourse)
		pr.Put("/{id}/grade", h.HandleGrade)
	})

	return r
}
