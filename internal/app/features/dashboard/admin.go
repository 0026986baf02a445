// internal/app/features/dashboard/admin.go
package dashboard

import (
	"net/http"

	"github.com/dalemusser/dexterhub/internal/app/store/audit"
	"github.com/dalemusser/dexterhub/internal/app/system/apperr"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/app/system/normalize"
	"github.com/dalemusser/dexterhub/internal/app/system/paging"
	"github.com/dalemusser/dexterhub/internal/app/system/respond"
	"github.com/dalemusser/dexterhub/internal/app/system/timeouts"
	"github.com/dalemusser/dexterhub/internal/app/views"
	"go.uber.org/zap"
)

// ServeAdmin handles GET /dashboard/admin. The optional actor, action and
// actionType query params narrow the recent audit panel.
func (h *Handler) ServeAdmin(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "admin dashboard")
	defer cancel()

	var d views.AdminData
	var err error

	if d.UsersByRole, err = h.Users.CountByRole(ctx); err != nil {
		h.ErrLog.Respond(w, r, apperr.Store("count users", err))
		return
	}
	if d.PendingApplications, err = h.Workflow.PendingApplications(ctx, actor); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	if d.DropRecommendations, err = h.Workflow.ListDropRecommendations(ctx, actor, ""); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	if d.Appeals, err = h.Workflow.ListAppeals(ctx, actor, ""); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	recent, _, err := h.Audit.Query(ctx, audit.QueryFilter{Page: paging.Page{Limit: recentAuditLimit}})
	if err != nil {
		h.ErrLog.Respond(w, r, apperr.Store("query audit log", err))
		return
	}
	q := r.URL.Query()
	d.RecentAudit = views.FilterAuditLogs(recent, views.AuditFilter{
		Actor:      normalize.QueryParam(q.Get("actor")),
		Action:     normalize.QueryParam(q.Get("action")),
		ActionType: normalize.QueryParam(q.Get("actionType")),
	})

	h.Log.Debug("admin dashboard served", zap.String("user", actor.ID.Hex()))
	respond.OK(w, views.NewAdminDashboard(d))
}
