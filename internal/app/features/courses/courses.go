// internal/app/features/courses/courses.go
package courses

import (
	"net/http"

	coursestore "github.com/dalemusser/dexterhub/internal/app/store/courses"
	"github.com/dalemusser/dexterhub/internal/app/system/apperr"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/app/system/formutil"
	"github.com/dalemusser/dexterhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/dexterhub/internal/app/system/normalize"
	"github.com/dalemusser/dexterhub/internal/app/system/paging"
	"github.com/dalemusser/dexterhub/internal/app/system/respond"
	"github.com/dalemusser/dexterhub/internal/app/system/timeouts"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type listResponse struct {
	Courses []models.Course `json:"courses"`
	Page    paging.Result   `json:"page"`
}

// ServeList handles GET /courses. Query: q, scope=mine.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)
	q := r.URL.Query()

	f := coursestore.ListFilter{
		Search: normalize.QueryParam(q.Get("q")),
		Page:   paging.Parse(r),
	}
	if normalize.QueryParam(q.Get("scope")) == "mine" {
		switch actor.Role {
		case models.RoleLearner:
			f.RegistrarID = &actor.ID
		case models.RoleInstructor:
			f.InstructorID = &actor.ID
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list courses")
	defer cancel()

	courses, page, err := h.Courses.List(ctx, f)
	if err != nil {
		h.ErrLog.Respond(w, r, apperr.Store("list courses", err))
		return
	}
	respond.OK(w, listResponse{Courses: courses, Page: page})
}

// ServeCourse handles GET /courses/{id}.
func (h *Handler) ServeCourse(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.PathID(r, "id", "course")
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get course")
	defer cancel()

	c, err := h.loadCourse(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	respond.OK(w, c)
}

type courseRequest struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Modules     []moduleRequest `json:"modules" validate:"dive"`
}

// HandleCreate handles POST /courses. An instructor who creates a course
// teaches it.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)

	var req courseRequest
	if err := formutil.Bind(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	title := htmlsanitize.PlainText(req.Title)
	if normalize.Name(title) == "" {
		h.ErrLog.Respond(w, r, apperr.Invalid("title", "this field is required"))
		return
	}

	c := models.Course{
		Title:       title,
		Description: htmlsanitize.PlainText(req.Description),
		CreatedByID: actor.ID,
	}
	if actor.Role == models.RoleInstructor {
		c.InstructorIDs = []primitive.ObjectID{actor.ID}
	}
	for _, m := range req.Modules {
		c.Modules = append(c.Modules, m.module())
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create course")
	defer cancel()

	created, err := h.Courses.Create(ctx, c)
	if err != nil {
		h.ErrLog.Respond(w, r, apperr.Store("create course", err))
		return
	}
	respond.Created(w, created)
}

type updateRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
}

// HandleUpdate handles PUT /courses/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)

	id, err := formutil.PathID(r, "id", "course")
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	var req updateRequest
	if err := formutil.Bind(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	title := htmlsanitize.PlainText(req.Title)
	if normalize.Name(title) == "" {
		h.ErrLog.Respond(w, r, apperr.Invalid("title", "this field is required"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update course")
	defer cancel()

	if _, err := h.loadEditable(ctx, actor, id); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	c, err := h.Courses.Update(ctx, id, title, htmlsanitize.PlainText(req.Description))
	if err != nil {
		h.ErrLog.Respond(w, r, apperr.Store("update course", err))
		return
	}
	respond.OK(w, c)
}
