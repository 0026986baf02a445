// internal/app/store/submissions/submissionstore.go
package submissionstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/dexterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrAlreadyGraded is returned when grading a submission a second time.
var ErrAlreadyGraded = errors.New("submission has already been graded")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("submissions")}
}

// Create inserts a submitted (ungraded) submission.
func (s *Store) Create(ctx context.Context, sub models.Submission) (models.Submission, error) {
	sub.ID = primitive.NewObjectID()
	sub.Status = models.SubmissionSubmitted
	sub.Score, sub.GradedByID, sub.GradedAt, sub.Feedback = nil, nil, nil, ""
	now := time.Now().UTC()
	sub.CreatedAt, sub.UpdatedAt = now, now
	if _, err := s.c.InsertOne(ctx, sub); err != nil {
		return models.Submission{}, err
	}
	return sub, nil
}

// GetByID loads a submission.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Submission, error) {
	var sub models.Submission
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListByLearner returns a learner's submissions, newest first.
func (s *Store) ListByLearner(ctx context.Context, learnerID primitive.ObjectID) ([]models.Submission, error) {
	return s.find(ctx, bson.M{"learner_id": learnerID})
}

// ListByCourse returns a course's submissions with the given status (all when empty).
func (s *Store) ListByCourse(ctx context.Context, courseID primitive.ObjectID, status string) ([]models.Submission, error) {
	q := bson.M{"course_id": courseID}
	if status != "" {
		q["status"] = status
	}
	return s.find(ctx, q)
}

// Grade moves a submission from submitted to graded exactly once. It returns
// mongo.ErrNoDocuments for an unknown id and ErrAlreadyGraded otherwise.
func (s *Store) Grade(ctx context.Context, id primitive.ObjectID, score int, feedback string, graderID primitive.ObjectID) (*models.Submission, error) {
	now := time.Now().UTC()
	var out models.Submission
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.SubmissionSubmitted},
		bson.M{"$set": bson.M{
			"status":       models.SubmissionGraded,
			"score":        score,
			"feedback":     feedback,
			"graded_by_id": graderID,
			"graded_at":    now,
			"updated_at":   now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err == nil {
		return &out, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	n, cerr := s.c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if cerr != nil {
		return nil, cerr
	}
	if n == 0 {
		return nil, mongo.ErrNoDocuments
	}
	return nil, ErrAlreadyGraded
}

func (s *Store) find(ctx context.Context, q bson.M) ([]models.Submission, error) {
	cur, err := s.c.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Submission{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
