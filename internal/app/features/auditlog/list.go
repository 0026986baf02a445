// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"slices"
	"strings"

	"github.com/dalemusser/dexterhub/internal/app/store/audit"
	"github.com/dalemusser/dexterhub/internal/app/system/apperr"
	"github.com/dalemusser/dexterhub/internal/app/system/formutil"
	"github.com/dalemusser/dexterhub/internal/app/system/normalize"
	"github.com/dalemusser/dexterhub/internal/app/system/paging"
	"github.com/dalemusser/dexterhub/internal/app/system/respond"
	"github.com/dalemusser/dexterhub/internal/app/system/timeouts"
	"github.com/dalemusser/dexterhub/internal/domain/models"
)

type listResponse struct {
	Entries     []models.AuditLog `json:"entries"`
	Page        paging.Result     `json:"page"`
	ActionTypes []string          `json:"actionTypes"`
}

// ServeList handles GET /admin/audit-logs, newest first.
//
// Query: actor and action are case-insensitive substring matches,
// actionType is exact; actorId, targetUser and targetCohort narrow by id;
// offset and limit page.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := audit.QueryFilter{
		Actor:      normalize.QueryParam(q.Get("actor")),
		Action:     normalize.QueryParam(q.Get("action")),
		ActionType: strings.TrimSpace(q.Get("actionType")),
		Page:       paging.Parse(r),
	}
	var err error
	var c apperr.Collector
	if f.ActorID, err = formutil.QueryID(r, "actorId"); err != nil {
		c.Add("actorId", "must be a valid id")
	}
	if f.TargetUser, err = formutil.QueryID(r, "targetUser"); err != nil {
		c.Add("targetUser", "must be a valid id")
	}
	if f.TargetCohort, err = formutil.QueryID(r, "targetCohort"); err != nil {
		c.Add("targetCohort", "must be a valid id")
	}
	c.Check(f.ActionType == "" || slices.Contains(models.ActionTypes(), f.ActionType),
		"actionType", "must be one of "+strings.Join(models.ActionTypes(), ", "))
	if err := c.Err(); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	entries, page, err := h.Audit.Query(ctx, f)
	if err != nil {
		h.ErrLog.Respond(w, r, apperr.Store("query audit log", err))
		return
	}
	respond.OK(w, listResponse{Entries: entries, Page: page, ActionTypes: models.ActionTypes()})
}
