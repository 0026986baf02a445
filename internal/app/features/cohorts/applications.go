// internal/app/features/cohorts/applications.go
package cohorts

import (
	"net/http"

	"github.com/dalemusser/dexterhub/internal/app/features/shared"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/app/system/formutil"
	"github.com/dalemusser/dexterhub/internal/app/system/respond"
	"github.com/dalemusser/dexterhub/internal/app/system/timeouts"
	"github.com/dalemusser/dexterhub/internal/app/views"
	"github.com/dalemusser/dexterhub/internal/app/workflow"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type applyRequest struct {
	CohortID string `json:"cohortId" validate:"required,objectid"`
	CourseID string `json:"courseId" validate:"required,objectid"`
	Note     string `json:"note"`
}

// HandleApply handles POST /cohorts/apply.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)

	var req applyRequest
	if err := formutil.Bind(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	cohortID, _ := primitive.ObjectIDFromHex(req.CohortID)
	courseID, _ := primitive.ObjectIDFromHex(req.CourseID)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "apply to cohort")
	defer cancel()

	app, err := h.Workflow.Apply(ctx, actor, workflow.ApplyInput{
		CohortID: cohortID,
		CourseID: courseID,
		Note:     req.Note,
	})
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	respond.Created(w, app)
}

// ServeMyApplications handles GET /cohorts/applications/my.
func (h *Handler) ServeMyApplications(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "my applications")
	defer cancel()

	apps, err := h.Workflow.MyApplications(ctx, actor)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	respond.OK(w, views.FilterApplications(apps, shared.ReviewFilter(r)))
}

// ServePendingApplications handles GET /cohorts/applications/pending.
// Instructors only see applications for cohorts they teach.
func (h *Handler) ServePendingApplications(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "pending applications")
	defer cancel()

	apps, err := h.Workflow.PendingApplications(ctx, actor)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	f := shared.ReviewFilter(r)
	f.Status = ""
	respond.OK(w, views.FilterApplications(apps, f))
}

// HandleReviewApplication handles POST /cohorts/applications/{id}/action.
func (h *Handler) HandleReviewApplication(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)

	id, err := formutil.PathID(r, "id", "application")
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	var req shared.ReviewRequest
	if err := formutil.Bind(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "review application")
	defer cancel()

	app, err := h.Workflow.ReviewApplication(ctx, actor, id, req.Input())
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	respond.OK(w, app)
}
