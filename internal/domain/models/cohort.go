// internal/domain/models/cohort.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cohort statuses.
const (
	CohortUpcoming = "upcoming"
	CohortActive   = "active"
	CohortClosed   = "closed"
)

// Cohort is a named, time-boxed group of learners sharing courses and instructors.
//
// LearnerIDs, InstructorIDs and CourseIDs are sets: every write goes through
// $addToSet / $pull so an id never appears twice.
type Cohort struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Description string             `bson:"description" json:"description"`
	StartDate   time.Time          `bson:"start_date" json:"startDate"`
	EndDate     time.Time          `bson:"end_date" json:"endDate"`
	Status      string             `bson:"status" json:"status"` // upcoming | active | closed

	LearnerIDs    []primitive.ObjectID `bson:"learner_ids" json:"learnerIds"`
	InstructorIDs []primitive.ObjectID `bson:"instructor_ids" json:"instructorIds"`
	CourseIDs     []primitive.ObjectID `bson:"course_ids" json:"courseIds"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// ValidCohortStatus reports whether s is a known cohort status.
func ValidCohortStatus(s string) bool {
	return s == CohortUpcoming || s == CohortActive || s == CohortClosed
}

// HasInstructor reports whether userID is one of the cohort's instructors.
func (c Cohort) HasInstructor(userID primitive.ObjectID) bool {
	return containsID(c.InstructorIDs, userID)
}

// HasLearner reports whether userID is one of the cohort's learners.
func (c Cohort) HasLearner(userID primitive.ObjectID) bool {
	return containsID(c.LearnerIDs, userID)
}

// HasCourse reports whether courseID is offered in the cohort.
func (c Cohort) HasCourse(courseID primitive.ObjectID) bool {
	return containsID(c.CourseIDs, courseID)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
