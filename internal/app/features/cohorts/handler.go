// internal/app/features/cohorts/handler.go
package cohorts

import (
	uierrors "github.com/dalemusser/dexterhub/internal/app/features/errors"
	cohortstore "github.com/dalemusser/dexterhub/internal/app/store/cohorts"
	eventstore "github.com/dalemusser/dexterhub/internal/app/store/events"
	"github.com/dalemusser/dexterhub/internal/app/workflow"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves cohorts, their membership, events and enrollment
// applications.
type Handler struct {
	Workflow *workflow.Engine
	Cohorts  *cohortstore.Store
	Events   *eventstore.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

// NewHandler constructs a cohorts Handler bound to db and the review workflow.
func NewHandler(db *mongo.Database, wf *workflow.Engine, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Workflow: wf,
		Cohorts:  cohortstore.New(db),
		Events:   eventstore.New(db),
		Log:      logger,
		ErrLog:   errLog,
	}
}
