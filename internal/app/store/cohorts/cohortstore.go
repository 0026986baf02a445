// internal/app/store/cohorts/cohortstore.go
package cohortstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/dalemusser/dexterhub/internal/app/system/normalize"
	"github.com/dalemusser/dexterhub/internal/app/system/paging"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateName is returned when another cohort already uses the name.
var ErrDuplicateName = errors.New("a cohort with this name already exists")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("cohorts")}
}

// Create inserts c with empty member sets.
func (s *Store) Create(ctx context.Context, c models.Cohort) (models.Cohort, error) {
	c.ID = primitive.NewObjectID()
	c.Name = normalize.Name(c.Name)
	c.NameCI = text.Fold(c.Name)
	if c.Status == "" {
		c.Status = models.CohortUpcoming
	}
	if c.LearnerIDs == nil {
		c.LearnerIDs = []primitive.ObjectID{}
	}
	if c.InstructorIDs == nil {
		c.InstructorIDs = []primitive.ObjectID{}
	}
	if c.CourseIDs == nil {
		c.CourseIDs = []primitive.ObjectID{}
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Cohort{}, ErrDuplicateName
		}
		return models.Cohort{}, err
	}
	return c, nil
}

// GetByID loads a cohort.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Cohort, error) {
	var c models.Cohort
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Update is the editable subset of a cohort.
type Update struct {
	Name        string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Status      string
}

// Update replaces the editable fields and returns the updated cohort.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Cohort, error) {
	name := normalize.Name(upd.Name)
	var out models.Cohort
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":        name,
		"name_ci":     text.Fold(name),
		"description": upd.Description,
		"start_date":  upd.StartDate,
		"end_date":    upd.EndDate,
		"status":      upd.Status,
		"updated_at":  time.Now().UTC(),
	}}, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return &out, nil
}

// ListFilter narrows List.
type ListFilter struct {
	Search       string
	Status       string
	InstructorID *primitive.ObjectID
	LearnerID    *primitive.ObjectID
	Page         paging.Page
}

// List returns cohorts sorted by start date, newest first.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Cohort, paging.Result, error) {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.InstructorID != nil {
		q["instructor_ids"] = *f.InstructorID
	}
	if f.LearnerID != nil {
		q["learner_ids"] = *f.LearnerID
	}
	if f.Search != "" {
		q["name_ci"] = bson.M{"$regex": regexp.QuoteMeta(text.Fold(f.Search))}
	}
	if f.Page.Limit == 0 {
		f.Page.Limit = paging.PageSize
	}
	cur, err := s.c.Find(ctx, q, f.Page.FindOptions(bson.D{{Key: "start_date", Value: -1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, paging.Result{}, err
	}
	defer cur.Close(ctx)
	out := []models.Cohort{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, paging.Result{}, err
	}
	out, res := paging.Trim(out, f.Page)
	return out, res, nil
}

// IDsForInstructor returns the ids of every cohort instructorID teaches.
func (s *Store) IDsForInstructor(ctx context.Context, instructorID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{"instructor_ids": instructorID}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	ids := []primitive.ObjectID{}
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	return ids, cur.Err()
}

// AddLearner adds learnerID to the cohort's learner set.
func (s *Store) AddLearner(ctx context.Context, id, learnerID primitive.ObjectID) (bool, error) {
	return s.setOp(ctx, id, "$addToSet", "learner_ids", learnerID)
}

// RemoveLearner removes learnerID from the learner set.
func (s *Store) RemoveLearner(ctx context.Context, id, learnerID primitive.ObjectID) (bool, error) {
	return s.setOp(ctx, id, "$pull", "learner_ids", learnerID)
}

// AddCourse adds courseID to the course set.
func (s *Store) AddCourse(ctx context.Context, id, courseID primitive.ObjectID) (bool, error) {
	return s.setOp(ctx, id, "$addToSet", "course_ids", courseID)
}

// RemoveCourse removes courseID from the course set.
func (s *Store) RemoveCourse(ctx context.Context, id, courseID primitive.ObjectID) (bool, error) {
	return s.setOp(ctx, id, "$pull", "course_ids", courseID)
}

// AddInstructor adds instructorID to the instructor set.
func (s *Store) AddInstructor(ctx context.Context, id, instructorID primitive.ObjectID) (bool, error) {
	return s.setOp(ctx, id, "$addToSet", "instructor_ids", instructorID)
}

// RemoveInstructor removes instructorID from the instructor set.
func (s *Store) RemoveInstructor(ctx context.Context, id, instructorID primitive.ObjectID) (bool, error) {
	return s.setOp(ctx, id, "$pull", "instructor_ids", instructorID)
}

// setOp applies a set operator to one array field. The filter carries the
// precondition ($addToSet: value absent, $pull: value present) so a match
// means the set changed. It returns mongo.ErrNoDocuments when the cohort is
// missing.
func (s *Store) setOp(ctx context.Context, id primitive.ObjectID, op, field string, value primitive.ObjectID) (bool, error) {
	filter := bson.M{"_id": id, field: value}
	if op == "$addToSet" {
		filter[field] = bson.M{"$ne": value}
	}
	res, err := s.c.UpdateOne(ctx, filter, bson.M{
		op:     bson.M{field: value},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return false, err
	}
	if res.MatchedCount > 0 {
		return true, nil
	}
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, mongo.ErrNoDocuments
	}
	return false, nil
}
