// internal/app/features/submissions/submissions.go
package submissions

import (
	"errors"
	"net/http"

	"github.com/dalemusser/dexterhub/internal/app/system/apperr"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/app/system/formutil"
	"github.com/dalemusser/dexterhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/dexterhub/internal/app/system/normalize"
	"github.com/dalemusser/dexterhub/internal/app/system/respond"
	"github.com/dalemusser/dexterhub/internal/app/system/timeouts"
	"github.com/dalemusser/dexterhub/internal/app/views"
	"github.com/dalemusser/dexterhub/internal/app/workflow"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type submitRequest struct {
	CourseID string `json:"courseId" validate:"required,objectid"`
	LessonID string `json:"lessonId" validate:"required,objectid"`
	Content  string `json:"content" validate:"required,max=20000"`
}

// HandleSubmit handles POST /submissions. The learner must be registered
// in the course and the lesson must belong to it.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)

	var req submitRequest
	if err := formutil.Bind(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	content := htmlsanitize.PlainText(req.Content)
	if content == "" {
		h.ErrLog.Respond(w, r, apperr.Invalid("content", "this field is required"))
		return
	}
	courseID, _ := primitive.ObjectIDFromHex(req.CourseID)
	lessonID, _ := primitive.ObjectIDFromHex(req.LessonID)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "submit task")
	defer cancel()

	course, err := h.Courses.GetByID(ctx, courseID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.Respond(w, r, apperr.Invalid("courseId", "course does not exist"))
		return
	}
	if err != nil {
		h.ErrLog.Respond(w, r, apperr.Store("load course", err))
		return
	}
	if !course.HasRegistrar(actor.ID) {
		h.ErrLog.Respond(w, r, apperr.Unauthorized("you are not registered in this course"))
		return
	}
	if _, ok := course.FindLesson(lessonID); !ok {
		h.ErrLog.Respond(w, r, apperr.Invalid("lessonId", "lesson is not part of this course"))
		return
	}

	sub, err := h.Submissions.Create(ctx, models.Submission{
		LearnerID: actor.ID,
		CourseID:  course.ID,
		LessonID:  lessonID,
		Content:   content,
	})
	if err != nil {
		h.ErrLog.Respond(w, r, apperr.Store("create submission", err))
		return
	}
	respond.Created(w, sub)
}

// ServeMine handles GET /submissions/my. Query: status.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "my submissions")
	defer cancel()

	subs, err := h.Submissions.ListByLearner(ctx, actor.ID)
	if err != nil {
		h.ErrLog.Respond(w, r, apperr.Store("list submissions", err))
		return
	}
	respond.OK(w, views.FilterSubmissions(subs, normalize.Status(r.URL.Query().Get("status"))))
}

// ServeCourse handles GET /submissions/course/{courseId}. Query: status.
func (h *Handler) ServeCourse(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)

	courseID, err := formutil.PathID(r, "courseId", "course")
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	status := normalize.Status(r.URL.Query().Get("status"))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "course submissions")
	defer cancel()

	subs, err := h.Workflow.CourseSubmissions(ctx, actor, courseID, status)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	respond.OK(w, subs)
}

type gradeRequest struct {
	Score    *int   `json:"score" validate:"required"`
	Feedback string `json:"feedback"`
}

// HandleGrade handles PUT /submissions/{id}/grade.
func (h *Handler) HandleGrade(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)

	id, err := formutil.PathID(r, "id", "submission")
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	var req gradeRequest
	if err := formutil.Bind(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "grade submission")
	defer cancel()

	sub, err := h.Workflow.GradeSubmission(ctx, actor, id, workflow.GradeInput{
		Score:    *req.Score,
		Feedback: req.Feedback,
	})
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	respond.OK(w, sub)
}
