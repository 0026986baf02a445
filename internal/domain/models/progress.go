// internal/domain/models/progress.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Progress statuses.
const (
	ProgressNotStarted = "not_started"
	ProgressInProgress = "in_progress"
	ProgressCompleted  = "completed"
)

// LearnerProgress tracks one learner in one course. Exactly one document per
// (learner_id, course_id).
type LearnerProgress struct {
	ID               primitive.ObjectID   `bson:"_id" json:"id"`
	LearnerID        primitive.ObjectID   `bson:"learner_id" json:"learnerId"`
	CourseID         primitive.ObjectID   `bson:"course_id" json:"courseId"`
	CohortID         primitive.ObjectID   `bson:"cohort_id" json:"cohortId"`
	CompletedLessons []primitive.ObjectID `bson:"completed_lessons" json:"completedLessons"`
	Status           string               `bson:"status" json:"status"`
	Score            int                  `bson:"score" json:"score"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// ProgressStatusFor derives the status from completed vs total lessons.
func ProgressStatusFor(completed, total int) string {
	switch {
	case completed <= 0:
		return ProgressNotStarted
	case total > 0 && completed >= total:
		return ProgressCompleted
	default:
		return ProgressInProgress
	}
}
