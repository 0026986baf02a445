package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/dexterhub/internal/app/system/validators"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"github.com/dalemusser/dexterhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 2; i++ {
		if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
			t.Fatalf("EnsureAll #%d: %v", i+1, err)
		}
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames: %v", err)
	}
	have := map[string]bool{}
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{
		"users", "cohorts", "courses", "events",
		"enrollment_requests", "drop_recommendations", "appeals",
		"learner_progress", "submissions", "audit_logs",
	} {
		if !have[want] {
			t.Errorf("collection %q missing", want)
		}
	}
}

func TestEnsureAll_RejectsBadDocuments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	now := time.Now().UTC()
	review := func(status string) bson.M {
		return bson.M{
			"_id":        primitive.NewObjectID(),
			"learner_id": primitive.NewObjectID(),
			"subject":    "Grade",
			"details":    "Please recheck",
			"status":     status,
			"created_at": now,
		}
	}

	tests := []struct {
		name    string
		coll    string
		doc     bson.M
		wantErr bool
	}{
		{"pending appeal", "appeals", review(models.StatusPending), false},
		{"unknown review status", "appeals", review("maybe"), true},
		{"user with unknown role", "users", bson.M{"full_name": "X", "email": "x@example.com", "role": "wizard", "status": "active"}, true},
		{"user ok", "users", bson.M{"full_name": "X", "email": "x@example.com", "role": models.RoleLearner, "status": "active"}, false},
		{"audit with unknown type", "audit_logs", bson.M{
			"actor_id": primitive.NewObjectID(), "action": "x", "action_type": "nope", "details": bson.M{}, "timestamp": now,
		}, true},
		{"cohort with duplicate learners", "cohorts", func() bson.M {
			id := primitive.NewObjectID()
			return bson.M{
				"name": "C", "name_ci": "c", "status": models.CohortActive,
				"learner_ids": bson.A{id, id}, "instructor_ids": bson.A{}, "course_ids": bson.A{},
			}
		}(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Collection(tt.coll).InsertOne(ctx, tt.doc)
			if (err != nil) != tt.wantErr {
				t.Errorf("insert err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
