// internal/app/features/courses/routes.go
package courses

import (
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts course routes (typically at "/courses").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/", h.ServeList)
		pr.Get("/{id}", h.ServeCourse)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleInstructor, models.RoleAdmin))
		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Post("/{id}/modules", h.HandleAddModule)
		pr.Post("/{id}/modules/{moduleId}/lessons", h.HandleAddLesson)
	})

	return r
}
