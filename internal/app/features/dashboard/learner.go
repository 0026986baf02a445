// internal/app/features/dashboard/learner.go
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

// ServeLearner handles GET /dashboard/learner.
func (h *Handler) ServeLearner(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "learner dashboard")
	defer cancel()

	now := h.now()
	var d views.LearnerData
	var err error

	if d.Cohorts, _, err = h.Cohorts.List(ctx, cohortstore.ListFilter{LearnerID: &actor.ID}); err != nil {
		h.ErrLog.Respond(w, r, apperr.Store("list cohorts", err))
		return
	}
	if d.Progress, err = h.Progress.ListByLearner(ctx, actor.ID); err != nil {
		h.ErrLog.Respond(w, r, apperr.Store("list progress", err))
		return
	}
	if d.Applications, err = h.Workflow.MyApplications(ctx, actor); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	if d.Appeals, err = h.Workflow.MyAppeals(ctx, actor); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	if d.Events, err = h.Events.ListByCohorts(ctx, cohortIDs(d.Cohorts), now); err != nil {
		h.ErrLog.Respond(w, r, apperr.Store("list events", err))
		return
	}

	h.Log.Debug("learner dashboard served", zap.String("user", actor.ID.Hex()))
	respond.OK(w, views.NewLearnerDashboard(d, now))
}
