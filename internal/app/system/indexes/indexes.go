// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each collection's set is reconciled
idempotently; problems are aggregated so startup fails with the full list.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string
	for _, spec := range collections() {
		if err := ensureIndexSet(ctx, db.Collection(spec.name), spec.models, logger); err != nil {
			problems = append(problems, spec.name+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type collectionSpec struct {
	name   string
	models []mongo.IndexModel
}

func collections() []collectionSpec {
	return []collectionSpec{
		{"users", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
			},
			{
				Keys: bson.D{
					{Key: "role", Value: 1},
					{Key: "status", Value: 1},
					{Key: "full_name_ci", Value: 1},
					{Key: "_id", Value: 1},
				},
				Options: options.Index().SetName("idx_users_role_status_fullnameci_id"),
			},
		}},
		{"cohorts", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "name_ci", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_cohorts_nameci"),
			},
			// "cohorts I teach" and the instructor scope of pending applications
			{
				Keys:    bson.D{{Key: "instructor_ids", Value: 1}},
				Options: options.Index().SetName("idx_cohorts_instructors"),
			},
			{
				Keys:    bson.D{{Key: "learner_ids", Value: 1}},
				Options: options.Index().SetName("idx_cohorts_learners"),
			},
		}},
		{"courses", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "title_ci", Value: 1}, {Key: "_id", Value: 1}},
				Options: options.Index().SetName("idx_courses_titleci_id"),
			},
			{
				Keys:    bson.D{{Key: "registrars", Value: 1}},
				Options: options.Index().SetName("idx_courses_registrars"),
			},
		}},
		{"enrollment_requests", []mongo.IndexModel{
			// At most one pending application per learner, cohort and course.
			{
				Keys: bson.D{
					{Key: "learner_id", Value: 1},
					{Key: "cohort_id", Value: 1},
					{Key: "course_id", Value: 1},
				},
				Options: options.Index().
					SetUnique(true).
					SetName("uniq_enrollment_pending").
					SetPartialFilterExpression(bson.M{"status": "pending"}),
			},
			{
				Keys:    bson.D{{Key: "status", Value: 1}, {Key: "cohort_id", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_enrollment_status_cohort_created"),
			},
			{
				Keys:    bson.D{{Key: "learner_id", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_enrollment_learner_created"),
			},
		}},
		{"drop_recommendations", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_droprec_status_created"),
			},
			{
				Keys:    bson.D{{Key: "instructor_id", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_droprec_instructor_created"),
			},
		}},
		{"appeals", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_appeals_status_created"),
			},
			{
				Keys:    bson.D{{Key: "learner_id", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_appeals_learner_created"),
			},
		}},
		{"audit_logs", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "timestamp", Value: -1}},
				Options: options.Index().SetName("idx_audit_timestamp"),
			},
			{
				Keys:    bson.D{{Key: "action_type", Value: 1}, {Key: "timestamp", Value: -1}},
				Options: options.Index().SetName("idx_audit_actiontype_timestamp"),
			},
			{
				Keys:    bson.D{{Key: "target_user", Value: 1}, {Key: "timestamp", Value: -1}},
				Options: options.Index().SetName("idx_audit_targetuser_timestamp"),
			},
		}},
		{"learner_progress", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "learner_id", Value: 1}, {Key: "course_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_progress_learner_course"),
			},
			{
				Keys:    bson.D{{Key: "cohort_id", Value: 1}},
				Options: options.Index().SetName("idx_progress_cohort"),
			},
		}},
		{"submissions", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "course_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_submissions_course_status_created"),
			},
			{
				Keys:    bson.D{{Key: "learner_id", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_submissions_learner_created"),
			},
		}},
		{"events", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "cohort_id", Value: 1}, {Key: "starts_at", Value: 1}},
				Options: options.Index().SetName("idx_events_cohort_starts"),
			},
		}},
	}
}

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(b *bool) bool { return b != nil && *b }

func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// ensureIndexSet creates missing indexes and replaces ones whose name or
// uniqueness drifted from the desired definition.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel, logger *zap.Logger) error {
	existing, err := listExisting(ctx, coll)
	if err != nil {
		// A collection that does not exist yet has no indexes.
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		name := *m.Options.Name
		unique := boolVal(m.Options.Unique)
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		log := logger.With(
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique))

		if ex, ok := existing[sig]; ok {
			if ex.Name == name && boolVal(ex.Unique) == unique {
				log.Debug("reusing existing index")
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s: drop %s failed: %v", name, ex.Name, err))
				continue
			}
			log.Info("dropped drifted index", zap.String("old_name", ex.Name))
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if unique && wafflemongo.IsDup(err) {
				errs = append(errs, fmt.Sprintf("%s: cannot create unique index (duplicates present)", name))
			} else {
				errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			}
			log.Warn("index ensure failed", zap.Error(err))
			continue
		}
		log.Info("index ensured", zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
