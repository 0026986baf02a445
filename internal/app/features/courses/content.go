// internal/app/features/courses/content.go
package courses

import (
	"errors"
	"net/http"

	"github.com/dalemusser/dexterhub/internal/app/system/apperr"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/app/system/formutil"
	"github.com/dalemusser/dexterhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/dexterhub/internal/app/system/respond"
	"github.com/dalemusser/dexterhub/internal/app/system/timeouts"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

type taskRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	MaxScore int    `json:"maxScore" validate:"gte=0,lte=1000"`
}

type lessonRequest struct {
	Title   string       `json:"title" validate:"required,max=200"`
	Content string       `json:"content" validate:"max=100000"`
	Task    *taskRequest `json:"task"`
}

// lesson converts the request, keeping formatting in content and
// reducing titles to plain text.
func (req lessonRequest) lesson() models.Lesson {
	l := models.Lesson{
		Title:   htmlsanitize.PlainText(req.Title),
		Content: htmlsanitize.Rich(req.Content),
	}
	if req.Task != nil {
		l.Task = &models.Task{
			Title:    htmlsanitize.PlainText(req.Task.Title),
			MaxScore: req.Task.MaxScore,
		}
	}
	return l
}

type moduleRequest struct {
	Title   string          `json:"title" validate:"required,max=200"`
	Lessons []lessonRequest `json:"lessons" validate:"dive"`
}

func (req moduleRequest) module() models.Module {
	m := models.Module{Title: htmlsanitize.PlainText(req.Title)}
	for _, l := range req.Lessons {
		m.Lessons = append(m.Lessons, l.lesson())
	}
	return m
}

// HandleAddModule handles POST /courses/{id}/modules.
func (h *Handler) HandleAddModule(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)

	id, err := formutil.PathID(r, "id", "course")
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	var req moduleRequest
	if err := formutil.Bind(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "add module")
	defer cancel()

	if _, err := h.loadEditable(ctx, actor, id); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	m, err := h.Courses.AddModule(ctx, id, req.module())
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.Respond(w, r, apperr.NotFound("course"))
		return
	}
	if err != nil {
		h.ErrLog.Respond(w, r, apperr.Store("add module", err))
		return
	}
	respond.Created(w, m)
}

// HandleAddLesson handles POST /courses/{id}/modules/{moduleId}/lessons.
func (h *Handler) HandleAddLesson(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)

	id, err := formutil.PathID(r, "id", "course")
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	moduleID, err := formutil.PathID(r, "moduleId", "module")
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	var req lessonRequest
	if err := formutil.Bind(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "add lesson")
	defer cancel()

	if _, err := h.loadEditable(ctx, actor, id); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	l, err := h.Courses.AddLesson(ctx, id, moduleID, req.lesson())
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.Respond(w, r, apperr.NotFound("module"))
		return
	}
	if err != nil {
		h.ErrLog.Respond(w, r, apperr.Store("add lesson", err))
		return
	}
	respond.Created(w, l)
}
