// internal/app/features/cohorts/routes.go
package cohorts

import (
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts cohort routes (typically at "/cohorts").
//
// Learners apply and see their own applications; instructors and admins
// review; admins manage cohorts and their member sets.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleLearner))
		pr.Post("/apply", h.HandleApply)
		pr.Get("/applications/my", h.ServeMyApplications)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleInstructor, models.RoleAdmin))
		pr.Get("/applications/pending", h.ServePendingApplications)
		pr.Post("/applications/{id}/action", h.HandleReviewApplication)
		pr.Post("/{id}/events", h.HandleCreateEvent)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/", h.ServeList)
		pr.Get("/{id}", h.ServeCohort)
		pr.Get("/{id}/events", h.ServeEvents)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin))
		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Post("/{id}/courses", h.HandleAddCourse)
		pr.Delete("/{id}/courses/{courseId}", h.HandleRemoveCourse)
		pr.Post("/{id}/instructors", h.HandleAddInstructor)
		pr.Delete("/{id}/instructors/{userId}", h.HandleRemoveInstructor)
	})

	return r
}
