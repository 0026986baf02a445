// internal/app/store/courses/coursestore.go
package coursestore

import (
	"context"
	"regexp"
	"time"

	"github.com/dalemusser/dexterhub/internal/app/system/normalize"
	"github.com/dalemusser/dexterhub/internal/app/system/paging"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("courses")}
}

// Create inserts a course. Module and lesson ids are assigned here.
func (s *Store) Create(ctx context.Context, c models.Course) (models.Course, error) {
	c.ID = primitive.NewObjectID()
	c.Title = normalize.Name(c.Title)
	c.TitleCI = text.Fold(c.Title)
	if c.InstructorIDs == nil {
		c.InstructorIDs = []primitive.ObjectID{}
	}
	if c.Registrars == nil {
		c.Registrars = []primitive.ObjectID{}
	}
	if c.Modules == nil {
		c.Modules = []models.Module{}
	}
	for i := range c.Modules {
		prepareModule(&c.Modules[i], i+1)
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Course{}, err
	}
	return c, nil
}

func prepareModule(m *models.Module, order int) {
	m.ID = primitive.NewObjectID()
	if m.Order == 0 {
		m.Order = order
	}
	if m.Lessons == nil {
		m.Lessons = []models.Lesson{}
	}
	for j := range m.Lessons {
		prepareLesson(&m.Lessons[j], j+1)
	}
}

func prepareLesson(l *models.Lesson, order int) {
	l.ID = primitive.NewObjectID()
	if l.Order == 0 {
		l.Order = order
	}
}

// GetByID loads a course.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	var c models.Course
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Update replaces title and description and returns the updated course.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, title, description string) (*models.Course, error) {
	title = normalize.Name(title)
	var out models.Course
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"title":       title,
		"title_ci":    text.Fold(title),
		"description": description,
		"updated_at":  time.Now().UTC(),
	}}, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AddModule appends m (with its lessons) and returns it with ids assigned.
func (s *Store) AddModule(ctx context.Context, courseID primitive.ObjectID, m models.Module) (models.Module, error) {
	c, err := s.GetByID(ctx, courseID)
	if err != nil {
		return models.Module{}, err
	}
	prepareModule(&m, len(c.Modules)+1)
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": courseID}, bson.M{
		"$push": bson.M{"modules": m},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return models.Module{}, err
	}
	if res.MatchedCount == 0 {
		return models.Module{}, mongo.ErrNoDocuments
	}
	return m, nil
}

// AddLesson appends l to module moduleID. It returns mongo.ErrNoDocuments
// when either the course or the module does not exist.
func (s *Store) AddLesson(ctx context.Context, courseID, moduleID primitive.ObjectID, l models.Lesson) (models.Lesson, error) {
	c, err := s.GetByID(ctx, courseID)
	if err != nil {
		return models.Lesson{}, err
	}
	order := 0
	for _, m := range c.Modules {
		if m.ID == moduleID {
			order = len(m.Lessons) + 1
		}
	}
	if order == 0 {
		return models.Lesson{}, mongo.ErrNoDocuments
	}
	prepareLesson(&l, order)
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": courseID, "modules._id": moduleID},
		bson.M{
			"$push": bson.M{"modules.$.lessons": l},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return models.Lesson{}, err
	}
	if res.MatchedCount == 0 {
		return models.Lesson{}, mongo.ErrNoDocuments
	}
	return l, nil
}

// AddRegistrar registers learnerID in the course; it reports whether the
// learner was newly added.
func (s *Store) AddRegistrar(ctx context.Context, courseID, learnerID primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": courseID, "registrars": bson.M{"$ne": learnerID}},
		bson.M{
			"$addToSet": bson.M{"registrars": learnerID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return false, err
	}
	if res.MatchedCount > 0 {
		return true, nil
	}
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": courseID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, mongo.ErrNoDocuments
	}
	return false, nil
}

// AddInstructor adds instructorID to the course's instructors.
func (s *Store) AddInstructor(ctx context.Context, courseID, instructorID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": courseID}, bson.M{
		"$addToSet": bson.M{"instructor_ids": instructorID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListFilter narrows List.
type ListFilter struct {
	Search       string
	IDs          []primitive.ObjectID
	InstructorID *primitive.ObjectID
	RegistrarID  *primitive.ObjectID
	Page         paging.Page
}

// List returns courses sorted by title.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Course, paging.Result, error) {
	q := bson.M{}
	if f.IDs != nil {
		q["_id"] = bson.M{"$in": f.IDs}
	}
	if f.InstructorID != nil {
		q["instructor_ids"] = *f.InstructorID
	}
	if f.RegistrarID != nil {
		q["registrars"] = *f.RegistrarID
	}
	if f.Search != "" {
		q["title_ci"] = bson.M{"$regex": regexp.QuoteMeta(text.Fold(f.Search))}
	}
	if f.Page.Limit == 0 {
		f.Page.Limit = paging.PageSize
	}
	cur, err := s.c.Find(ctx, q, f.Page.FindOptions(bson.D{{Key: "title_ci", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, paging.Result{}, err
	}
	defer cur.Close(ctx)
	out := []models.Course{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, paging.Result{}, err
	}
	out, res := paging.Trim(out, f.Page)
	return out, res, nil
}
