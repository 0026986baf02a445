package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/dexterhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Fixtures inserts test records directly, bypassing store validation.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures for db.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("insert %s fixture: %v", coll, err)
	}
}

// CreateUser inserts an active user with no password.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string) models.User {
	f.t.Helper()
	return f.createUser(ctx, fullName, email, role, models.UserActive, "")
}

// CreateUserWithPassword inserts an active user who can sign in with password.
func (f *Fixtures) CreateUserWithPassword(ctx context.Context, fullName, email, role, password string) models.User {
	f.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash fixture password: %v", err)
	}
	return f.createUser(ctx, fullName, email, role, models.UserActive, string(hash))
}

// CreateDisabledUser inserts a disabled learner.
func (f *Fixtures) CreateDisabledUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.createUser(ctx, fullName, email, models.RoleLearner, models.UserDisabled, "")
}

func (f *Fixtures) createUser(ctx context.Context, fullName, email, role, status, hash string) models.User {
	f.t.Helper()
	now := time.Now().UTC()
	email = strings.ToLower(email)
	u := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        email,
		EmailCI:      text.Fold(email),
		PasswordHash: hash,
		Role:         role,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateCourse inserts a course with one module of two lessons. The first
// lesson carries a task scored out of 10.
func (f *Fixtures) CreateCourse(ctx context.Context, title string, instructorIDs ...primitive.ObjectID) models.Course {
	f.t.Helper()
	now := time.Now().UTC()
	c := models.Course{
		ID:            primitive.NewObjectID(),
		Title:         title,
		TitleCI:       text.Fold(title),
		InstructorIDs: append([]primitive.ObjectID{}, instructorIDs...),
		Registrars:    []primitive.ObjectID{},
		Modules: []models.Module{{
			ID:    primitive.NewObjectID(),
			Title: "Basics",
			Lessons: []models.Lesson{
				{ID: primitive.NewObjectID(), Title: "Intro", Order: 0, Task: &models.Task{Title: "Quiz", MaxScore: 10}},
				{ID: primitive.NewObjectID(), Title: "Next steps", Order: 1},
			},
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "courses", c)
	return c
}

// CreateCohort inserts a cohort running from yesterday for thirty days.
func (f *Fixtures) CreateCohort(ctx context.Context, name, status string, courseIDs []primitive.ObjectID, instructorIDs ...primitive.ObjectID) models.Cohort {
	f.t.Helper()
	now := time.Now().UTC()
	c := models.Cohort{
		ID:            primitive.NewObjectID(),
		Name:          name,
		NameCI:        text.Fold(name),
		StartDate:     now.Add(-24 * time.Hour),
		EndDate:       now.Add(30 * 24 * time.Hour),
		Status:        status,
		LearnerIDs:    []primitive.ObjectID{},
		InstructorIDs: append([]primitive.ObjectID{}, instructorIDs...),
		CourseIDs:     append([]primitive.ObjectID{}, courseIDs...),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	f.insert(ctx, "cohorts", c)
	return c
}

// CreateApplication inserts a pending enrollment request.
func (f *Fixtures) CreateApplication(ctx context.Context, learnerID, cohortID, courseID primitive.ObjectID) models.EnrollmentRequest {
	f.t.Helper()
	now := time.Now().UTC()
	e := models.EnrollmentRequest{
		ID:        primitive.NewObjectID(),
		LearnerID: learnerID,
		CohortID:  cohortID,
		CourseID:  courseID,
		Review:    pendingReview(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "enrollment_requests", e)
	return e
}

// CreateDropRecommendation inserts a pending drop recommendation.
func (f *Fixtures) CreateDropRecommendation(ctx context.Context, instructorID, learnerID primitive.ObjectID, reason string) models.DropRecommendation {
	f.t.Helper()
	now := time.Now().UTC()
	d := models.DropRecommendation{
		ID:           primitive.NewObjectID(),
		InstructorID: instructorID,
		LearnerID:    learnerID,
		Reason:       reason,
		Review:       pendingReview(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.insert(ctx, "drop_recommendations", d)
	return d
}

// CreateAppeal inserts a pending appeal.
func (f *Fixtures) CreateAppeal(ctx context.Context, learnerID primitive.ObjectID, subject, details string) models.Appeal {
	f.t.Helper()
	now := time.Now().UTC()
	a := models.Appeal{
		ID:        primitive.NewObjectID(),
		LearnerID: learnerID,
		Subject:   subject,
		Details:   details,
		Review:    pendingReview(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "appeals", a)
	return a
}

func pendingReview() models.Review {
	return models.Review{Status: models.StatusPending}
}
