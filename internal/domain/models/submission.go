// internal/domain/models/submission.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Submission statuses.
const (
	SubmissionSubmitted = "submitted"
	SubmissionGraded    = "graded"
)

// Submission is a learner's answer to a lesson task.
type Submission struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	LearnerID primitive.ObjectID `bson:"learner_id" json:"learnerId"`
	CourseID  primitive.ObjectID `bson:"course_id" json:"courseId"`
	LessonID  primitive.ObjectID `bson:"lesson_id" json:"lessonId"`
	Content   string             `bson:"content" json:"content"`
	Status    string             `bson:"status" json:"status"`

	Score      *int                `bson:"score,omitempty" json:"score,omitempty"`
	Feedback   string              `bson:"feedback,omitempty" json:"feedback,omitempty"`
	GradedByID *primitive.ObjectID `bson:"graded_by_id,omitempty" json:"gradedById,omitempty"`
	GradedAt   *time.Time          `bson:"graded_at,omitempty" json:"gradedAt,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
