// internal/app/features/systemusers/edit.go
package systemusers

import (
	"net/http"

	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/app/system/formutil"
	"github.com/dalemusser/dexterhub/internal/app/system/respond"
	"github.com/dalemusser/dexterhub/internal/app/system/timeouts"
)

type roleRequest struct {
	Role string `json:"role" validate:"required"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// HandleRole handles PUT /users/{id}/role.
func (h *Handler) HandleRole(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)

	id, err := formutil.PathID(r, "id", "user")
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	var req roleRequest
	if err := formutil.Bind(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "change role")
	defer cancel()

	u, err := h.Workflow.ChangeRole(ctx, actor, id, req.Role)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	respond.OK(w, u)
}

// HandleStatus handles PUT /users/{id}/status.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)

	id, err := formutil.PathID(r, "id", "user")
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	var req statusRequest
	if err := formutil.Bind(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "change user status")
	defer cancel()

	u, err := h.Workflow.ChangeStatus(ctx, actor, id, req.Status)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	respond.OK(w, u)
}
