// internal/app/store/audit/store.go
package audit

import (
	"context"
	"regexp"
	"time"

	"github.com/dalemusser/dexterhub/internal/app/system/paging"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// QueryFilter narrows Query. Actor matches a substring of the folded actor
// name (case and accents ignored), Action a case-insensitive substring, and
// ActionType exactly.
type QueryFilter struct {
	Actor        string
	Action       string
	ActionType   string
	ActorID      *primitive.ObjectID
	TargetUser   *primitive.ObjectID
	TargetCohort *primitive.ObjectID
	Page         paging.Page
}

// Store is the append-only audit log. It exposes no update or delete.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_logs")}
}

// Append inserts entry, assigning id and timestamp when unset.
func (s *Store) Append(ctx context.Context, entry models.AuditLog) (models.AuditLog, error) {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	entry.ActorNameCI = text.Fold(entry.ActorName)
	if _, err := s.c.InsertOne(ctx, entry); err != nil {
		return models.AuditLog{}, err
	}
	return entry, nil
}

// Query returns entries matching f, newest first.
func (s *Store) Query(ctx context.Context, f QueryFilter) ([]models.AuditLog, paging.Result, error) {
	q := bson.M{}
	if f.Actor != "" {
		q["actor_name_ci"] = bson.M{"$regex": regexp.QuoteMeta(text.Fold(f.Actor))}
	}
	if f.Action != "" {
		q["action"] = containsCI(f.Action)
	}
	if f.ActionType != "" {
		q["action_type"] = f.ActionType
	}
	if f.ActorID != nil {
		q["actor_id"] = *f.ActorID
	}
	if f.TargetUser != nil {
		q["target_user"] = *f.TargetUser
	}
	if f.TargetCohort != nil {
		q["target_cohort"] = *f.TargetCohort
	}
	if f.Page.Limit == 0 {
		f.Page.Limit = paging.PageSize
	}

	cur, err := s.c.Find(ctx, q, f.Page.FindOptions(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, paging.Result{}, err
	}
	defer cur.Close(ctx)
	out := []models.AuditLog{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, paging.Result{}, err
	}
	out, res := paging.Trim(out, f.Page)
	return out, res, nil
}

// Count returns the number of entries with the given action.
func (s *Store) Count(ctx context.Context, action string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"action": action})
}

func containsCI(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}
