// internal/domain/models/review.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review statuses shared by applications, drop recommendations and appeals.
// pending → approved and pending → rejected are the only transitions; both
// targets are terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Decision is the outcome a reviewer chooses.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Valid reports whether d is approve or reject.
func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// Status returns the terminal review status the decision leads to.
func (d Decision) Status() string {
	if d == DecisionApprove {
		return StatusApproved
	}
	return StatusRejected
}

// Review holds the status field and reviewer metadata embedded in every
// reviewable record.
type Review struct {
	Status       string              `bson:"status" json:"status"`
	ReviewedByID *primitive.ObjectID `bson:"reviewed_by_id,omitempty" json:"reviewedById,omitempty"`
	ReviewedAt   *time.Time          `bson:"reviewed_at,omitempty" json:"reviewedAt,omitempty"`
	ReviewNote   string              `bson:"review_note,omitempty" json:"reviewNote,omitempty"`
}

// IsPending reports whether the record is still awaiting review.
func (r Review) IsPending() bool {
	return r.Status == StatusPending
}
