// internal/app/features/cohorts/events.go
package cohorts

import (
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/dexterhub/internal/app/system/apperr"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/app/system/formutil"
	"github.com/dalemusser/dexterhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/dexterhub/internal/app/system/respond"
	"github.com/dalemusser/dexterhub/internal/app/system/timeouts"
	"github.com/dalemusser/dexterhub/internal/domain/models"
)

type eventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=5000"`
	StartsAt    time.Time `json:"startsAt" validate:"required"`
	EndsAt      time.Time `json:"endsAt" validate:"required"`
}

// canSee reports whether actor may read the cohort's events.
func canSee(actor auth.Actor, c *models.Cohort) bool {
	return actor.IsAdmin() || c.HasInstructor(actor.ID) || c.HasLearner(actor.ID)
}

// ServeEvents handles GET /cohorts/{id}/events. Query: upcoming=true hides
// events that already ended.
func (h *Handler) ServeEvents(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)

	id, err := formutil.PathID(r, "id", "cohort")
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "cohort events")
	defer cancel()

	c, err := h.loadCohort(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	if !canSee(actor, c) {
		h.ErrLog.Respond(w, r, apperr.Unauthorized("only cohort members may view its events"))
		return
	}

	var from time.Time
	if r.URL.Query().Get("upcoming") == "true" {
		from = time.Now().UTC()
	}
	events, err := h.Events.ListByCohort(ctx, id, from)
	if err != nil {
		h.ErrLog.Respond(w, r, apperr.Store("list events", err))
		return
	}
	respond.OK(w, events)
}

// HandleCreateEvent handles POST /cohorts/{id}/events. Admins and the
// cohort's instructors may schedule events.
func (h *Handler) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)

	id, err := formutil.PathID(r, "id", "cohort")
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	var req eventRequest
	if err := formutil.Bind(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	if req.EndsAt.Before(req.StartsAt) {
		h.ErrLog.Respond(w, r, apperr.Invalid("endsAt", "must not be before the start time"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create event")
	defer cancel()

	c, err := h.loadCohort(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	if !actor.IsAdmin() && !c.HasInstructor(actor.ID) {
		h.ErrLog.Respond(w, r, apperr.Unauthorized("only the cohort's instructors may schedule events"))
		return
	}

	title := htmlsanitize.PlainText(strings.TrimSpace(req.Title))
	if title == "" {
		h.ErrLog.Respond(w, r, apperr.Invalid("title", "this field is required"))
		return
	}
	ev, err := h.Events.Create(ctx, models.Event{
		CohortID:    id,
		Title:       title,
		Description: htmlsanitize.PlainText(req.Description),
		StartsAt:    req.StartsAt.UTC(),
		EndsAt:      req.EndsAt.UTC(),
		CreatedByID: actor.ID,
	})
	if err != nil {
		h.ErrLog.Respond(w, r, apperr.Store("create event", err))
		return
	}
	respond.Created(w, ev)
}
