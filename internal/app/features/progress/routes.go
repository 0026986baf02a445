// internal/app/features/progress/routes.go
package progress

import (
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts progress routes (typically at "/progress"). Learners only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleLearner))
		pr.Get("/my", h.ServeMine)
		pr.Post("/lessons/{lessonId}/complete", h.HandleComplete)
	})
	return r
}
