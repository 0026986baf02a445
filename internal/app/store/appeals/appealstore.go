// internal/app/store/appeals/appealstore.go
package appealstore

import (
	"context"
	"time"

	"github.com/dalemusser/dexterhub/internal/app/store/reviews"
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
	return &Store{c: db.Collection("appeals")}
}

// Create inserts a pending appeal.
func (s *Store) Create(ctx context.Context, a models.Appeal) (models.Appeal, error) {
	a.ID = primitive.NewObjectID()
	a.Review = models.Review{Status: models.StatusPending}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Appeal{}, err
	}
	return a, nil
}

// GetByID loads an appeal.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Appeal, error) {
	var a models.Appeal
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns appeals with the given status (all when empty).
func (s *Store) List(ctx context.Context, status string) ([]models.Appeal, error) {
	return s.find(ctx, reviews.StatusFilter(status))
}

// ListByLearner returns a learner's appeals.
func (s *Store) ListByLearner(ctx context.Context, learnerID primitive.ObjectID) ([]models.Appeal, error) {
	return s.find(ctx, bson.M{"learner_id": learnerID})
}

// Decide records the review outcome. See reviews.Decide for errors.
func (s *Store) Decide(ctx context.Context, id primitive.ObjectID, d reviews.Decision) (*models.Appeal, error) {
	var out models.Appeal
	if err := reviews.Decide(ctx, s.c, id, d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) find(ctx context.Context, q bson.M) ([]models.Appeal, error) {
	cur, err := s.c.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Appeal{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
