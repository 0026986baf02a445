// internal/app/features/courses/handler.go
package courses

import (
	"context"
	"errors"

	uierrors "github.com/dalemusser/dexterhub/internal/app/features/errors"
	coursestore "github.com/dalemusser/dexterhub/internal/app/store/courses"
	"github.com/dalemusser/dexterhub/internal/app/system/apperr"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves courses and their module and lesson content.
type Handler struct {
	Courses *coursestore.Store
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Courses: coursestore.New(db),
		Log:     logger,
		ErrLog:  errLog,
	}
}

func (h *Handler) loadCourse(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	c, err := h.Courses.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("course")
	}
	if err != nil {
		return nil, apperr.Store("load course", err)
	}
	return c, nil
}

// loadEditable loads a course the actor may change: admins edit any
// course, instructors only the ones they teach.
func (h *Handler) loadEditable(ctx context.Context, actor auth.Actor, id primitive.ObjectID) (*models.Course, error) {
	c, err := h.loadCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !c.HasInstructor(actor.ID) {
		return nil, apperr.Unauthorized("only the course's instructors may change it")
	}
	return c, nil
}
