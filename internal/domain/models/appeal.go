// internal/domain/models/appeal.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Appeal is a learner's request to contest a prior decision.
type Appeal struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	LearnerID primitive.ObjectID `bson:"learner_id" json:"learnerId"`
	Subject   string             `bson:"subject" json:"subject"`
	Details   string             `bson:"details" json:"details"`

	Review `bson:",inline"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
