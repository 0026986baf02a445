// internal/app/features/droprecs/handler.go
package droprecs

import (
	"net/http"

	uierrors "github.com/dalemusser/dexterhub/internal/app/features/errors"
	"github.com/dalemusser/dexterhub/internal/app/features/shared"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/app/system/formutil"
	"github.com/dalemusser/dexterhub/internal/app/system/respond"
	"github.com/dalemusser/dexterhub/internal/app/system/timeouts"
	"github.com/dalemusser/dexterhub/internal/app/views"
	"github.com/dalemusser/dexterhub/internal/app/workflow"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves drop recommendations: instructors file them, admins
// review them.
type Handler struct {
	Workflow *workflow.Engine
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

func NewHandler(wf *workflow.Engine, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Workflow: wf, Log: logger, ErrLog: errLog}
}

type dropRequest struct {
	LearnerID string `json:"learnerId" validate:"required,objectid"`
	CohortID  string `json:"cohortId" validate:"omitempty,objectid"`
	Reason    string `json:"reason" validate:"required"`
}

// HandleRecommend handles POST /instructors/drop-recommendations.
func (h *Handler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)

	var req dropRequest
	if err := formutil.Bind(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	learnerID, _ := primitive.ObjectIDFromHex(req.LearnerID)
	cohortID, err := formutil.OptionalID("cohortId", req.CohortID)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "recommend drop")
	defer cancel()

	rec, err := h.Workflow.RecommendDrop(ctx, actor, workflow.DropInput{
		LearnerID: learnerID,
		CohortID:  cohortID,
		Reason:    req.Reason,
	})
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	respond.Created(w, rec)
}

// ServeMine handles GET /instructors/drop-recommendations. Query: q, status.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "my drop recommendations")
	defer cancel()

	recs, err := h.Workflow.MyDropRecommendations(ctx, actor)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	respond.OK(w, views.FilterDropRecommendations(recs, shared.ReviewFilter(r)))
}

// ServeList handles GET /admin/drop-recommendations. Query: q, status.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)
	f := shared.ReviewFilter(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list drop recommendations")
	defer cancel()

	recs, err := h.Workflow.ListDropRecommendations(ctx, actor, f.Status)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	respond.OK(w, views.FilterDropRecommendations(recs, f))
}

// HandleReview handles PUT /admin/drop-recommendations/{id}.
func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)

	id, err := formutil.PathID(r, "id", "drop recommendation")
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	var req shared.ReviewRequest
	if err := formutil.Bind(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "review drop recommendation")
	defer cancel()

	rec, err := h.Workflow.ReviewDropRecommendation(ctx, actor, id, req.Input())
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	respond.OK(w, rec)
}
