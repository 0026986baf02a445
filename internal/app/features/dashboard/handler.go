// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"
	"time"

	uierrors "github.com/dalemusser/dexterhub/internal/app/features/errors"
	"github.com/dalemusser/dexterhub/internal/app/store/audit"
	cohortstore "github.com/dalemusser/dexterhub/internal/app/store/cohorts"
	eventstore "github.com/dalemusser/dexterhub/internal/app/store/events"
	progressstore "github.com/dalemusser/dexterhub/internal/app/store/progress"
	userstore "github.com/dalemusser/dexterhub/internal/app/store/users"
	"github.com/dalemusser/dexterhub/internal/app/system/apperr"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/app/workflow"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// recentAuditLimit is how many audit entries the admin dashboard fetches
// before query filters narrow them.
const recentAuditLimit = 20

type Handler struct {
	Workflow *workflow.Engine
	Cohorts  *cohortstore.Store
	Progress *progressstore.Store
	Events   *eventstore.Store
	Users    *userstore.Store
	Audit    *audit.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger

	now func() time.Time
}

func NewHandler(db *mongo.Database, wf *workflow.Engine, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Workflow: wf,
		Cohorts:  cohortstore.New(db),
		Progress: progressstore.New(db),
		Events:   eventstore.New(db),
		Users:    userstore.New(db),
		Audit:    audit.New(db),
		Log:      logger,
		ErrLog:   errLog,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ServeDashboard sends the caller to the view for their role.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentActor(r)
	if !ok {
		h.ErrLog.Respond(w, r, apperr.ErrUnauthenticated)
		return
	}
	switch {
	case actor.IsAdmin():
		h.ServeAdmin(w, r)
	case actor.Role == models.RoleInstructor:
		h.ServeInstructor(w, r)
	default:
		h.ServeLearner(w, r)
	}
}

func cohortIDs(cs []models.Cohort) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(cs))
	for _, c := range cs {
		ids = append(ids, c.ID)
	}
	return ids
}
