// internal/app/store/droprecs/droprecstore.go
package droprecstore

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
	return &Store{c: db.Collection("drop_recommendations")}
}

// Create inserts a pending drop recommendation.
func (s *Store) Create(ctx context.Context, d models.DropRecommendation) (models.DropRecommendation, error) {
	d.ID = primitive.NewObjectID()
	d.Review = models.Review{Status: models.StatusPending}
	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now
	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return models.DropRecommendation{}, err
	}
	return d, nil
}

// GetByID loads a drop recommendation.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.DropRecommendation, error) {
	var d models.DropRecommendation
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns recommendations with the given status (all when empty).
func (s *Store) List(ctx context.Context, status string) ([]models.DropRecommendation, error) {
	return s.find(ctx, reviews.StatusFilter(status))
}

// ListByInstructor returns the recommendations instructorID filed.
func (s *Store) ListByInstructor(ctx context.Context, instructorID primitive.ObjectID) ([]models.DropRecommendation, error) {
	return s.find(ctx, bson.M{"instructor_id": instructorID})
}

// Decide records the review outcome. See reviews.Decide for errors.
func (s *Store) Decide(ctx context.Context, id primitive.ObjectID, d reviews.Decision) (*models.DropRecommendation, error) {
	var out models.DropRecommendation
	if err := reviews.Decide(ctx, s.c, id, d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) find(ctx context.Context, q bson.M) ([]models.DropRecommendation, error) {
	cur, err := s.c.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.DropRecommendation{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
