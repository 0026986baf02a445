// internal/app/store/progress/progressstore.go
package progressstore

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

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("learner_progress")}
}

// EnsureForLearner creates the progress record for (learner, course) if it
// does not exist yet. It reports whether a record was created. An existing
// record is left untouched.
func (s *Store) EnsureForLearner(ctx context.Context, learnerID, courseID, cohortID primitive.ObjectID) (bool, error) {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"learner_id": learnerID, "course_id": courseID},
		bson.M{"$setOnInsert": bson.M{
			"_id":               primitive.NewObjectID(),
			"cohort_id":         cohortID,
			"completed_lessons": []primitive.ObjectID{},
			"status":            models.ProgressNotStarted,
			"score":             0,
			"created_at":        now,
			"updated_at":        now,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

// Get loads the progress record for (learner, course).
func (s *Store) Get(ctx context.Context, learnerID, courseID primitive.ObjectID) (*models.LearnerProgress, error) {
	var p models.LearnerProgress
	if err := s.c.FindOne(ctx, bson.M{"learner_id": learnerID, "course_id": courseID}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByLearner returns every progress record of a learner.
func (s *Store) ListByLearner(ctx context.Context, learnerID primitive.ObjectID) ([]models.LearnerProgress, error) {
	return s.find(ctx, bson.M{"learner_id": learnerID})
}

// ListByCohort returns every progress record in a cohort.
func (s *Store) ListByCohort(ctx context.Context, cohortID primitive.ObjectID) ([]models.LearnerProgress, error) {
	return s.find(ctx, bson.M{"cohort_id": cohortID})
}

// CompleteLesson marks lessonID complete and recomputes status against
// totalLessons. It returns mongo.ErrNoDocuments when the learner has no
// progress record for the course.
func (s *Store) CompleteLesson(ctx context.Context, learnerID, courseID, lessonID primitive.ObjectID, totalLessons int) (*models.LearnerProgress, error) {
	filter := bson.M{"learner_id": learnerID, "course_id": courseID}
	var p models.LearnerProgress
	err := s.c.FindOneAndUpdate(ctx, filter,
		bson.M{
			"$addToSet": bson.M{"completed_lessons": lessonID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		return nil, err
	}

	status := models.ProgressStatusFor(len(p.CompletedLessons), totalLessons)
	if status == p.Status {
		return &p, nil
	}
	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": bson.M{"status": status}}); err != nil {
		return nil, err
	}
	p.Status = status
	return &p, nil
}

// AddScore adds delta to the learner's course score.
func (s *Store) AddScore(ctx context.Context, learnerID, courseID primitive.ObjectID, delta int) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"learner_id": learnerID, "course_id": courseID},
		bson.M{"$inc": bson.M{"score": delta}, "$set": bson.M{"updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *Store) find(ctx context.Context, q bson.M) ([]models.LearnerProgress, error) {
	cur, err := s.c.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.LearnerProgress{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool { return errors.Is(err, mongo.ErrNoDocuments) }
