// internal/domain/models/course.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Course is the unit learners apply to within a cohort. Modules and lessons
// are embedded; the course document is always read and written whole.
type Course struct {
	ID            primitive.ObjectID   `bson:"_id" json:"id"`
	Title         string               `bson:"title" json:"title"`
	TitleCI       string               `bson:"title_ci" json:"-"`
	Description   string               `bson:"description" json:"description"`
	InstructorIDs []primitive.ObjectID `bson:"instructor_ids" json:"instructorIds"`
	Modules       []Module             `bson:"modules" json:"modules"`

	// Registrars are the learners enrolled in this course.
	Registrars []primitive.ObjectID `bson:"registrars" json:"registrars"`

	CreatedByID primitive.ObjectID `bson:"created_by_id" json:"createdById"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Module groups lessons inside a course.
type Module struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	Title   string             `bson:"title" json:"title"`
	Order   int                `bson:"order" json:"order"`
	Lessons []Lesson           `bson:"lessons" json:"lessons"`
}

// Lesson is a single piece of course content, optionally carrying a task.
type Lesson struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	Title   string             `bson:"title" json:"title"`
	Content string             `bson:"content" json:"content"`
	Order   int                `bson:"order" json:"order"`
	Task    *Task              `bson:"task,omitempty" json:"task,omitempty"`
}

// Task is gradable work attached to a lesson.
type Task struct {
	Title    string `bson:"title" json:"title"`
	MaxScore int    `bson:"max_score" json:"maxScore"`
}

// LessonCount returns the number of lessons across all modules.
func (c Course) LessonCount() int {
	n := 0
	for _, m := range c.Modules {
		n += len(m.Lessons)
	}
	return n
}

// FindLesson looks up a lesson by id across all modules.
func (c Course) FindLesson(id primitive.ObjectID) (Lesson, bool) {
	for _, m := range c.Modules {
		for _, l := range m.Lessons {
			if l.ID == id {
				return l, true
			}
		}
	}
	return Lesson{}, false
}

// HasInstructor reports whether userID teaches the course.
func (c Course) HasInstructor(userID primitive.ObjectID) bool {
	return containsID(c.InstructorIDs, userID)
}

// HasRegistrar reports whether learnerID is registered in the course.
func (c Course) HasRegistrar(learnerID primitive.ObjectID) bool {
	return containsID(c.Registrars, learnerID)
}
