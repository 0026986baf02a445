// internal/app/features/droprecs/routes.go
package droprecs

import (
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// InstructorRoutes mounts filing and the instructor's own list (typically
// at "/instructors/drop-recommendations").
func InstructorRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleInstructor))
		pr.Post("/", h.HandleRecommend)
		pr.Get("/", h.ServeMine)
	})
	return r
}

// AdminRoutes mounts review (typically at "/admin/drop-recommendations").
func AdminRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin))
		pr.Get("/", h.ServeList)
		pr.Put("/{id}", h.HandleReview)
	})
	return r
}
