// internal/domain/models/droprecommendation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DropRecommendation is an instructor's proposal to remove a learner from
// active standing. Review changes the status only.
type DropRecommendation struct {
	ID           primitive.ObjectID  `bson:"_id" json:"id"`
	LearnerID    primitive.ObjectID  `bson:"learner_id" json:"learnerId"`
	InstructorID primitive.ObjectID  `bson:"instructor_id" json:"instructorId"`
	CohortID     *primitive.ObjectID `bson:"cohort_id,omitempty" json:"cohortId,omitempty"`
	Reason       string              `bson:"reason" json:"reason"`

	Review `bson:",inline"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
