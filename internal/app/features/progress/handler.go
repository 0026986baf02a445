// internal/app/features/progress/handler.go
package progress

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/dexterhub/internal/app/features/errors"
	coursestore "github.com/dalemusser/dexterhub/internal/app/store/courses"
	progressstore "github.com/dalemusser/dexterhub/internal/app/store/progress"
	"github.com/dalemusser/dexterhub/internal/app/system/apperr"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/app/system/formutil"
	"github.com/dalemusser/dexterhub/internal/app/system/respond"
	"github.com/dalemusser/dexterhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves a learner's own course progress.
type Handler struct {
	Progress *progressstore.Store
	Courses  *coursestore.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Progress: progressstore.New(db),
		Courses:  coursestore.New(db),
		Log:      logger,
		ErrLog:   errLog,
	}
}

// ServeMine handles GET /progress/my.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "my progress")
	defer cancel()

	list, err := h.Progress.ListByLearner(ctx, actor.ID)
	if err != nil {
		h.ErrLog.Respond(w, r, apperr.Store("list progress", err))
		return
	}
	respond.OK(w, list)
}

type completeRequest struct {
	CourseID string `json:"courseId" validate:"required,objectid"`
}

// HandleComplete handles POST /progress/lessons/{lessonId}/complete. The
// learner must be registered in the course; completing a lesson twice is
// harmless.
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)

	lessonID, err := formutil.PathID(r, "lessonId", "lesson")
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	var req completeRequest
	if err := formutil.Bind(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	courseID, _ := primitive.ObjectIDFromHex(req.CourseID)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "complete lesson")
	defer cancel()

	course, err := h.Courses.GetByID(ctx, courseID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.Respond(w, r, apperr.NotFound("course"))
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
		h.ErrLog.Respond(w, r, apperr.NotFound("lesson"))
		return
	}

	p, err := h.Progress.CompleteLesson(ctx, actor.ID, course.ID, lessonID, course.LessonCount())
	if progressstore.IsNotFound(err) {
		h.ErrLog.Respond(w, r, apperr.NotFound("progress"))
		return
	}
	if err != nil {
		h.ErrLog.Respond(w, r, apperr.Store("complete lesson", err))
		return
	}
	respond.OK(w, p)
}
