// internal/app/features/cohorts/cohorts.go
package cohorts

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	cohortstore "github.com/dalemusser/dexterhub/internal/app/store/cohorts"
	"github.com/dalemusser/dexterhub/internal/app/system/apperr"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/app/system/formutil"
	"github.com/dalemusser/dexterhub/internal/app/system/normalize"
	"github.com/dalemusser/dexterhub/internal/app/system/paging"
	"github.com/dalemusser/dexterhub/internal/app/system/respond"
	"github.com/dalemusser/dexterhub/internal/app/system/timeouts"
	"github.com/dalemusser/dexterhub/internal/app/workflow"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// dateLayouts are accepted for cohort start and end dates.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

type cohortRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Status      string `json:"status"`
}

func (req cohortRequest) input() (workflow.CohortInput, error) {
	var c apperr.Collector
	start, ok := parseDate(req.StartDate)
	c.Check(ok, "startDate", "must be a date (YYYY-MM-DD) or RFC 3339 time")
	end, ok := parseDate(req.EndDate)
	c.Check(ok, "endDate", "must be a date (YYYY-MM-DD) or RFC 3339 time")
	if err := c.Err(); err != nil {
		return workflow.CohortInput{}, err
	}
	return workflow.CohortInput{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
		Status:      req.Status,
	}, nil
}

// parseDate accepts an empty string as the zero time.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

type listResponse struct {
	Cohorts []models.Cohort `json:"cohorts"`
	Page    paging.Result   `json:"page"`
}

// ServeList handles GET /cohorts. Query: q, status, scope=mine.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)
	q := r.URL.Query()

	f := cohortstore.ListFilter{
		Search: normalize.QueryParam(q.Get("q")),
		Status: normalize.Status(q.Get("status")),
		Page:   paging.Parse(r),
	}
	if f.Status != "" && !models.ValidCohortStatus(f.Status) {
		h.ErrLog.Respond(w, r, apperr.Invalid("status", "must be upcoming, active or closed"))
		return
	}
	if normalize.QueryParam(q.Get("scope")) == "mine" {
		switch actor.Role {
		case models.RoleLearner:
			f.LearnerID = &actor.ID
		case models.RoleInstructor:
			f.InstructorID = &actor.ID
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list cohorts")
	defer cancel()

	cohorts, page, err := h.Cohorts.List(ctx, f)
	if err != nil {
		h.ErrLog.Respond(w, r, apperr.Store("list cohorts", err))
		return
	}
	respond.OK(w, listResponse{Cohorts: cohorts, Page: page})
}

// ServeCohort handles GET /cohorts/{id}.
func (h *Handler) ServeCohort(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.PathID(r, "id", "cohort")
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get cohort")
	defer cancel()

	c, err := h.loadCohort(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	respond.OK(w, c)
}

// HandleCreate handles POST /cohorts.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)

	var req cohortRequest
	if err := formutil.Bind(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create cohort")
	defer cancel()

	c, err := h.Workflow.CreateCohort(ctx, actor, in)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	respond.Created(w, c)
}

// HandleUpdate handles PUT /cohorts/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)

	id, err := formutil.PathID(r, "id", "cohort")
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	var req cohortRequest
	if err := formutil.Bind(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update cohort")
	defer cancel()

	c, err := h.Workflow.UpdateCohort(ctx, actor, id, in)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	respond.OK(w, c)
}

// membershipResponse reports whether a set operation changed the cohort.
type membershipResponse struct {
	Changed bool           `json:"changed"`
	Cohort  *models.Cohort `json:"cohort"`
}

type courseRequest struct {
	CourseID string `json:"courseId" validate:"required,objectid"`
}

type instructorRequest struct {
	UserID string `json:"userId" validate:"required,objectid"`
}

type setOp func(ctx context.Context, actor auth.Actor, cohortID, id primitive.ObjectID) (bool, error)

// HandleAddCourse handles POST /cohorts/{id}/courses.
func (h *Handler) HandleAddCourse(w http.ResponseWriter, r *http.Request) {
	var req courseRequest
	if err := formutil.Bind(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	courseID, _ := primitive.ObjectIDFromHex(req.CourseID)
	h.mutate(w, r, "add course to cohort", courseID, h.Workflow.AddCourseToCohort)
}

// HandleRemoveCourse handles DELETE /cohorts/{id}/courses/{courseId}.
func (h *Handler) HandleRemoveCourse(w http.ResponseWriter, r *http.Request) {
	courseID, err := formutil.PathID(r, "courseId", "course")
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	h.mutate(w, r, "remove course from cohort", courseID, h.Workflow.RemoveCourseFromCohort)
}

// HandleAddInstructor handles POST /cohorts/{id}/instructors.
func (h *Handler) HandleAddInstructor(w http.ResponseWriter, r *http.Request) {
	var req instructorRequest
	if err := formutil.Bind(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	userID, _ := primitive.ObjectIDFromHex(req.UserID)
	h.mutate(w, r, "add instructor to cohort", userID, h.Workflow.AddInstructorToCohort)
}

// HandleRemoveInstructor handles DELETE /cohorts/{id}/instructors/{userId}.
func (h *Handler) HandleRemoveInstructor(w http.ResponseWriter, r *http.Request) {
	userID, err := formutil.PathID(r, "userId", "user")
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	h.mutate(w, r, "remove instructor from cohort", userID, h.Workflow.RemoveInstructorFromCohort)
}

// mutate runs a membership operation and answers with the updated cohort.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op string, memberID primitive.ObjectID, fn setOp) {
	actor, _ := auth.CurrentActor(r)

	cohortID, err := formutil.PathID(r, "id", "cohort")
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, op)
	defer cancel()

	changed, err := fn(ctx, actor, cohortID, memberID)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	c, err := h.loadCohort(ctx, cohortID)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	respond.OK(w, membershipResponse{Changed: changed, Cohort: c})
}

// loadCohort reads a cohort, mapping a missing one to NotFound.
func (h *Handler) loadCohort(ctx context.Context, id primitive.ObjectID) (*models.Cohort, error) {
	c, err := h.Cohorts.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("cohort")
	}
	if err != nil {
		return nil, apperr.Store("load cohort", err)
	}
	return c, nil
}
