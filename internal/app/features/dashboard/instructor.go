// internal/app/features/dashboard/instructor.go
package dashboard

import (
	"net/http"

	cohortstore "github.com/dalemusser/dexterhub/internal/app/store/cohorts"
	"github.com/dalemusser/dexterhub/internal/app/system/apperr"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/app/system/respond"
	"github.com/dalemusser/dexterhub/internal/app/system/timeouts"
	"github.com/dalemusser/dexterhub/internal/app/views"
	"go.uber.org/zap"
)

// ServeInstructor handles GET /dashboard/instructor.
func (h *Handler) ServeInstructor(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "instructor dashboard")
	defer cancel()

	now := h.now()
	var d views.InstructorData
	var err error

	if d.Cohorts, _, err = h.Cohorts.List(ctx, cohortstore.ListFilter{InstructorID: &actor.ID}); err != nil {
		h.ErrLog.Respond(w, r, apperr.Store("list cohorts", err))
		return
	}
	if d.PendingApplications, err = h.Workflow.PendingApplications(ctx, actor); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	if d.DropRecommendations, err = h.Workflow.MyDropRecommendations(ctx, actor); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	if d.Events, err = h.Events.ListByCohorts(ctx, cohortIDs(d.Cohorts), now); err != nil {
		h.ErrLog.Respond(w, r, apperr.Store("list events", err))
		return
	}

	h.Log.Debug("instructor dashboard served", zap.String("user", actor.ID.Hex()))
	respond.OK(w, views.NewInstructorDashboard(d, now))
}
