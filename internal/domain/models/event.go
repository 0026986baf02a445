// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a scheduled session or announcement for a cohort.
type Event struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	CohortID    primitive.ObjectID `bson:"cohort_id" json:"cohortId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	StartsAt    time.Time          `bson:"starts_at" json:"startsAt"`
	EndsAt      time.Time          `bson:"ends_at" json:"endsAt"`
	CreatedByID primitive.ObjectID `bson:"created_by_id" json:"createdById"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}
