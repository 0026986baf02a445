// Package shared holds request types used by more than one feature.
package shared

import (
	"net/http"

	"github.com/dalemusser/dexterhub/internal/app/system/normalize"
	"github.com/dalemusser/dexterhub/internal/app/views"
	"github.com/dalemusser/dexterhub/internal/app/workflow"
	"github.com/dalemusser/dexterhub/internal/domain/models"
)

// ReviewRequest is the body of every review endpoint.
type ReviewRequest struct {
	Decision string `json:"decision" validate:"required"`
	Note     string `json:"note"`
}

// Input converts the request for the workflow.
func (rr ReviewRequest) Input() workflow.ReviewInput {
	return workflow.ReviewInput{
		Decision: models.Decision(normalize.Status(rr.Decision)),
		Note:     rr.Note,
	}
}

// ReviewFilter reads the q and status query parameters.
func ReviewFilter(r *http.Request) views.ReviewFilter {
	q := r.URL.Query()
	return views.ReviewFilter{
		Query:  normalize.QueryParam(q.Get("q")),
		Status: normalize.Status(q.Get("status")),
	}
}
