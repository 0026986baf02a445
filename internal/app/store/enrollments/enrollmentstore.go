// internal/app/store/enrollments/enrollmentstore.go
package enrollmentstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/dexterhub/internal/app/store/reviews"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicatePending is returned when the learner already has a pending
// application for the same cohort and course.
var ErrDuplicatePending = errors.New("an application for this cohort and course is already pending")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("enrollment_requests")}
}

// Create inserts a pending application.
func (s *Store) Create(ctx context.Context, e models.EnrollmentRequest) (models.EnrollmentRequest, error) {
	e.ID = primitive.NewObjectID()
	e.Review = models.Review{Status: models.StatusPending}
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		if wafflemongo.IsDup(err) {
			return models.EnrollmentRequest{}, ErrDuplicatePending
		}
		return models.EnrollmentRequest{}, err
	}
	return e, nil
}

// GetByID loads an application.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.EnrollmentRequest, error) {
	var e models.EnrollmentRequest
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListByLearner returns a learner's applications, newest first.
func (s *Store) ListByLearner(ctx context.Context, learnerID primitive.ObjectID) ([]models.EnrollmentRequest, error) {
	return s.find(ctx, bson.M{"learner_id": learnerID})
}

// ListPending returns pending applications, newest first. A nil cohortIDs
// means every cohort; an empty slice matches nothing.
func (s *Store) ListPending(ctx context.Context, cohortIDs []primitive.ObjectID) ([]models.EnrollmentRequest, error) {
	q := bson.M{"status": models.StatusPending}
	if cohortIDs != nil {
		if len(cohortIDs) == 0 {
			return []models.EnrollmentRequest{}, nil
		}
		q["cohort_id"] = bson.M{"$in": cohortIDs}
	}
	return s.find(ctx, q)
}

// List returns applications with the given status (all when empty).
func (s *Store) List(ctx context.Context, status string) ([]models.EnrollmentRequest, error) {
	return s.find(ctx, reviews.StatusFilter(status))
}

// Decide records the review outcome. See reviews.Decide for errors.
func (s *Store) Decide(ctx context.Context, id primitive.ObjectID, d reviews.Decision) (*models.EnrollmentRequest, error) {
	var out models.EnrollmentRequest
	if err := reviews.Decide(ctx, s.c, id, d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) find(ctx context.Context, q bson.M) ([]models.EnrollmentRequest, error) {
	cur, err := s.c.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.EnrollmentRequest{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
