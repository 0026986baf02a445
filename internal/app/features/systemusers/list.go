// internal/app/features/systemusers/list.go
package systemusers

import (
	"net/http"

	userstore "github.com/dalemusser/dexterhub/internal/app/store/users"
	"github.com/dalemusser/dexterhub/internal/app/system/apperr"
	"github.com/dalemusser/dexterhub/internal/app/system/normalize"
	"github.com/dalemusser/dexterhub/internal/app/system/paging"
	"github.com/dalemusser/dexterhub/internal/app/system/respond"
	"github.com/dalemusser/dexterhub/internal/app/system/timeouts"
	"github.com/dalemusser/dexterhub/internal/domain/models"
)

type listResponse struct {
	Users []models.User `json:"users"`
	Page  paging.Result `json:"page"`
}

// ServeList handles GET /users. Query: search (or q), role, status,
// offset, limit.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := q.Get("search")
	if search == "" {
		search = q.Get("q")
	}
	f := userstore.ListFilter{
		Search: normalize.QueryParam(search),
		Role:   normalize.Role(q.Get("role")),
		Status: normalize.Status(q.Get("status")),
		Page:   paging.Parse(r),
	}

	var c apperr.Collector
	c.Check(f.Role == "" || models.ValidRole(f.Role), "role", "must be learner, instructor, admin or super-admin")
	c.Check(f.Status == "" || f.Status == models.UserActive || f.Status == models.UserDisabled, "status", "must be active or disabled")
	if err := c.Err(); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list users")
	defer cancel()

	users, page, err := h.Users.List(ctx, f)
	if err != nil {
		h.ErrLog.Respond(w, r, apperr.Store("list users", err))
		return
	}
	respond.OK(w, listResponse{Users: users, Page: page})
}
