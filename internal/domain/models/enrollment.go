// internal/domain/models/enrollment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EnrollmentRequest is a learner's application to join a course within a cohort.
type EnrollmentRequest struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	LearnerID primitive.ObjectID `bson:"learner_id" json:"learnerId"`
	CohortID  primitive.ObjectID `bson:"cohort_id" json:"cohortId"`
	CourseID  primitive.ObjectID `bson:"course_id" json:"courseId"`
	Note      string             `bson:"note,omitempty" json:"note,omitempty"`

	Review `bson:",inline"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
