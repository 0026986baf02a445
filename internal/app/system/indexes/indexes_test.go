package indexes_test

import (
	"testing"

	"github.com/dalemusser/dexterhub/internal/app/system/indexes"
	"github.com/dalemusser/dexterhub/internal/testutil"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesNamedIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	want := map[string][]string{
		"users":               {"uniq_users_email", "idx_users_role_status_fullnameci_id"},
		"cohorts":             {"uniq_cohorts_nameci", "idx_cohorts_instructors", "idx_cohorts_learners"},
		"enrollment_requests": {"uniq_enrollment_pending", "idx_enrollment_status_cohort_created"},
		"learner_progress":    {"uniq_progress_learner_course"},
		"audit_logs":          {"idx_audit_timestamp", "idx_audit_actiontype_timestamp"},
	}
	for coll, names := range want {
		cur, err := db.Collection(coll).Indexes().List(ctx)
		if err != nil {
			t.Fatalf("%s: list indexes: %v", coll, err)
		}
		have := map[string]bool{}
		for cur.Next(ctx) {
			var idx bson.M
			if err := cur.Decode(&idx); err != nil {
				continue
			}
			if name, ok := idx["name"].(string); ok {
				have[name] = true
			}
		}
		cur.Close(ctx)
		for _, n := range names {
			if !have[n] {
				t.Errorf("expected index %q on %s", n, coll)
			}
		}
	}
}

func TestEnsureAll_OnePendingApplicationPerTriple(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	c := db.Collection("enrollment_requests")
	learner, cohort, course := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	doc := func(status string) bson.M {
		return bson.M{"_id": primitive.NewObjectID(), "learner_id": learner, "cohort_id": cohort, "course_id": course, "status": status}
	}

	if _, err := c.InsertOne(ctx, doc("rejected")); err != nil {
		t.Fatalf("insert rejected: %v", err)
	}
	if _, err := c.InsertOne(ctx, doc("pending")); err != nil {
		t.Fatalf("pending after a rejected one should be allowed: %v", err)
	}
	_, err := c.InsertOne(ctx, doc("pending"))
	if !wafflemongo.IsDup(err) {
		t.Fatalf("second pending insert: err = %v, want duplicate key", err)
	}
}
