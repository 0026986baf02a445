// internal/app/store/events/eventstore.go
package eventstore

import (
	"context"
	"time"

	"github.com/dalemusser/dexterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("events")}
}

// Create inserts an event.
func (s *Store) Create(ctx context.Context, e models.Event) (models.Event, error) {
	e.ID = primitive.NewObjectID()
	e.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// ListByCohort returns a cohort's events in start order. When from is
// non-zero, events that ended before it are skipped.
func (s *Store) ListByCohort(ctx context.Context, cohortID primitive.ObjectID, from time.Time) ([]models.Event, error) {
	return s.find(ctx, bson.M{"cohort_id": cohortID}, from)
}

// ListByCohorts returns upcoming events across several cohorts.
func (s *Store) ListByCohorts(ctx context.Context, cohortIDs []primitive.ObjectID, from time.Time) ([]models.Event, error) {
	if len(cohortIDs) == 0 {
		return []models.Event{}, nil
	}
	return s.find(ctx, bson.M{"cohort_id": bson.M{"$in": cohortIDs}}, from)
}

func (s *Store) find(ctx context.Context, q bson.M, from time.Time) ([]models.Event, error) {
	if !from.IsZero() {
		q["ends_at"] = bson.M{"$gte": from}
	}
	cur, err := s.c.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "starts_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Event{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
