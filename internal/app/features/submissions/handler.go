// internal/app/features/submissions/handler.go
package submissions

import (
	uierrors "github.com/dalemusser/dexterhub/internal/app/features/errors"
	coursestore "github.com/dalemusser/dexterhub/internal/app/store/courses"
	submissionstore "github.com/dalemusser/dexterhub/internal/app/store/submissions"
	"github.com/dalemusser/dexterhub/internal/app/workflow"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves task submissions and grading.
type Handler struct {
	Workflow    *workflow.Engine
	Submissions *submissionstore.Store
	Courses     *coursestore.Store
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
}

func NewHandler(db *mongo.Database, wf *workflow.Engine, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Workflow:    wf,
		Submissions: submissionstore.New(db),
		Courses:     coursestore.New(db),
		Log:         logger,
		ErrLog:      errLog,
	}
}
