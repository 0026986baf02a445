// internal/app/features/appeals/handler.go
package appeals

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
	"go.uber.org/zap"
)

// Handler serves learner appeals and their admin review.
type Handler struct {
	Workflow *workflow.Engine
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

func NewHandler(wf *workflow.Engine, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Workflow: wf, Log: logger, ErrLog: errLog}
}

type appealRequest struct {
	Subject string `json:"subject" validate:"required"`
	Details string `json:"details" validate:"required"`
}

// HandleFile handles POST /admin/appeals.
func (h *Handler) HandleFile(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)

	var req appealRequest
	if err := formutil.Bind(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "file appeal")
	defer cancel()

	a, err := h.Workflow.FileAppeal(ctx, actor, workflow.AppealInput{Subject: req.Subject, Details: req.Details})
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	respond.Created(w, a)
}

// ServeList handles GET /admin/appeals. Query: q, status.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)
	f := shared.ReviewFilter(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list appeals")
	defer cancel()

	list, err := h.Workflow.ListAppeals(ctx, actor, f.Status)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	respond.OK(w, views.FilterAppeals(list, f))
}

// ServeMine handles GET /appeals/my. Query: q, status.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "my appeals")
	defer cancel()

	list, err := h.Workflow.MyAppeals(ctx, actor)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	respond.OK(w, views.FilterAppeals(list, shared.ReviewFilter(r)))
}

// HandleReview handles PUT /admin/appeals/{id}.
func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentActor(r)

	id, err := formutil.PathID(r, "id", "appeal")
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	var req shared.ReviewRequest
	if err := formutil.Bind(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "review appeal")
	defer cancel()

	a, err := h.Workflow.ReviewAppeal(ctx, actor, id, req.Input())
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	respond.OK(w, a)
}
