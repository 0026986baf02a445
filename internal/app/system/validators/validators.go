// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/dexterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates DexterHub's collections (if missing) and attaches
// JSON-Schema validators that pin every status and role to its allowed
// values. Servers without collMod support (some DocumentDB versions) are
// logged and skipped.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll, logger); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema, logger); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				logger.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("cohorts", cohortsSchema())
	ensure("courses", coursesSchema())
	ensure("events", eventsSchema())

	// Review queues share the pending/approved/rejected lifecycle.
	ensure("enrollment_requests", reviewSchema(bson.A{"learner_id", "cohort_id", "course_id"}, bson.M{
		"learner_id": objectID(),
		"cohort_id":  objectID(),
		"course_id":  objectID(),
	}))
	ensure("drop_recommendations", reviewSchema(bson.A{"learner_id", "instructor_id", "reason"}, bson.M{
		"learner_id":    objectID(),
		"instructor_id": objectID(),
		"cohort_id":     objectID(),
		"reason":        nonBlank(),
	}))
	ensure("appeals", reviewSchema(bson.A{"learner_id", "subject", "details"}, bson.M{
		"learner_id": objectID(),
		"subject":    nonBlank(),
		"details":    nonBlank(),
	}))

	ensure("learner_progress", progressSchema())
	ensure("submissions", submissionsSchema())
	ensure("audit_logs", auditSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists reports whether name already exists.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection idempotently makes sure name exists. created is true
// only when this call created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		logger.Debug("collection exists", zap.String("collection", name))
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return false, nil
		}
		logger.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	logger.Info("created collection", zap.String("collection", name))
	return true, nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M, logger *zap.Logger) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	logger.Debug("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func nonBlank() bson.M { return bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"} }
func objectID() bson.M { return bson.M{"bsonType": "objectId"} }
func objectIDs() bson.M {
	return bson.M{"bsonType": "array", "uniqueItems": true, "items": objectID()}
}

func enum(values ...string) bson.M {
	a := bson.A{}
	for _, v := range values {
		a = append(a, v)
	}
	return bson.M{"enum": a}
}

func schema(required bson.A, props bson.M) bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType":   "object",
			"required":   required,
			"properties": props,
		},
	}
}

func usersSchema() bson.M {
	return schema(bson.A{"full_name", "email", "role", "status"}, bson.M{
		"full_name": nonBlank(),
		"email":     nonBlank(),
		"role":      enum(models.RoleLearner, models.RoleInstructor, models.RoleAdmin, models.RoleSuperAdmin),
		"status":    enum(models.UserActive, models.UserDisabled),
	})
}

func cohortsSchema() bson.M {
	return schema(bson.A{"name", "name_ci", "status", "learner_ids", "instructor_ids", "course_ids"}, bson.M{
		"name":           nonBlank(),
		"name_ci":        nonBlank(),
		"status":         enum(models.CohortUpcoming, models.CohortActive, models.CohortClosed),
		"start_date":     bson.M{"bsonType": "date"},
		"end_date":       bson.M{"bsonType": "date"},
		"learner_ids":    objectIDs(),
		"instructor_ids": objectIDs(),
		"course_ids":     objectIDs(),
	})
}

func coursesSchema() bson.M {
	return schema(bson.A{"title", "title_ci"}, bson.M{
		"title":          nonBlank(),
		"title_ci":       nonBlank(),
		"instructor_ids": objectIDs(),
		"registrars":     objectIDs(),
		"modules":        bson.M{"bsonType": "array"},
	})
}

func eventsSchema() bson.M {
	return schema(bson.A{"cohort_id", "title", "starts_at", "ends_at"}, bson.M{
		"cohort_id": objectID(),
		"title":     nonBlank(),
		"starts_at": bson.M{"bsonType": "date"},
		"ends_at":   bson.M{"bsonType": "date"},
	})
}

// reviewSchema adds the shared review fields to a queue's own fields.
func reviewSchema(required bson.A, props bson.M) bson.M {
	props["status"] = enum(models.StatusPending, models.StatusApproved, models.StatusRejected)
	props["reviewed_by_id"] = objectID()
	props["reviewed_at"] = bson.M{"bsonType": "date"}
	return schema(append(required, "status"), props)
}

func progressSchema() bson.M {
	return schema(bson.A{"learner_id", "course_id", "status", "score"}, bson.M{
		"learner_id":        objectID(),
		"course_id":         objectID(),
		"cohort_id":         objectID(),
		"completed_lessons": objectIDs(),
		"status":            enum(models.ProgressNotStarted, models.ProgressInProgress, models.ProgressCompleted),
		"score":             bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
	})
}

func submissionsSchema() bson.M {
	return schema(bson.A{"learner_id", "course_id", "lesson_id", "status"}, bson.M{
		"learner_id": objectID(),
		"course_id":  objectID(),
		"lesson_id":  objectID(),
		"status":     enum(models.SubmissionSubmitted, models.SubmissionGraded),
		"score":      bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
	})
}

func auditSchema() bson.M {
	return schema(bson.A{"actor_id", "action", "action_type", "details", "timestamp"}, bson.M{
		"actor_id":    objectID(),
		"action":      nonBlank(),
		"action_type": enum(models.ActionTypes()...),
		"details":     bson.M{"bsonType": "object"},
		"timestamp":   bson.M{"bsonType": "date"},
	})
}
