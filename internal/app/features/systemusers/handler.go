// internal/app/features/systemusers/handler.go
package systemusers

import (
	uierrors "github.com/dalemusser/dexterhub/internal/app/features/errors"
	userstore "github.com/dalemusser/dexterhub/internal/app/store/users"
	"github.com/dalemusser/dexterhub/internal/app/workflow"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users    *userstore.Store
	Workflow *workflow.Engine
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

// NewHandler constructs the user management handler. Role and status
// changes go through the workflow so they are audited.
func NewHandler(db *mongo.Database, wf *workflow.Engine, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    userstore.New(db),
		Workflow: wf,
		Log:      logger,
		ErrLog:   errLog,
	}
}
