package enrollmentstore_test

import (
	"errors"
	"testing"

	enrollmentstore "github.com/dalemusser/dexterhub/internal/app/store/enrollments"
	"github.com/dalemusser/dexterhub/internal/app/store/reviews"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"github.com/dalemusser/dexterhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func application(learner, cohort, course primitive.ObjectID) models.EnrollmentRequest {
	return models.EnrollmentRequest{LearnerID: learner, CohortID: cohort, CourseID: course}
}

func TestStore_Create_IsPending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e, err := store.Create(ctx, application(primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if e.Status != models.StatusPending || e.ReviewedByID != nil {
		t.Errorf("new application = %+v", e.Review)
	}
}

func TestStore_Create_DuplicatePending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	l, c, co := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	first, err := store.Create(ctx, application(l, c, co))
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if _, err := store.Create(ctx, application(l, c, co)); !errors.Is(err, enrollmentstore.ErrDuplicatePending) {
		t.Fatalf("duplicate: err = %v", err)
	}

	// Once reviewed, the learner may apply again.
	if _, err := store.Decide(ctx, first.ID, reviews.Decision{ReviewerID: primitive.NewObjectID(), Decision: models.DecisionReject}); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if _, err := store.Create(ctx, application(l, c, co)); err != nil {
		t.Fatalf("re-apply after rejection: %v", err)
	}
}

func TestStore_ListPending_ScopedToCohorts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c1, c2 := primitive.NewObjectID(), primitive.NewObjectID()
	store.Create(ctx, application(primitive.NewObjectID(), c1, primitive.NewObjectID()))
	store.Create(ctx, application(primitive.NewObjectID(), c2, primitive.NewObjectID()))
	reviewed, _ := store.Create(ctx, application(primitive.NewObjectID(), c1, primitive.NewObjectID()))
	store.Decide(ctx, reviewed.ID, reviews.Decision{ReviewerID: primitive.NewObjectID(), Decision: models.DecisionApprove})

	tests := []struct {
		name    string
		cohorts []primitive.ObjectID
		want    int
	}{
		{"all cohorts", nil, 2},
		{"one cohort", []primitive.ObjectID{c1}, 1},
		{"no cohorts", []primitive.ObjectID{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListPending(ctx, tt.cohorts)
			if err != nil {
				t.Fatalf("ListPending: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d, want %d", len(got), tt.want)
			}
			for _, e := range got {
				if e.Status != models.StatusPending {
					t.Errorf("non-pending record %v listed", e.ID)
				}
			}
		})
	}
}

func TestStore_ListByLearner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	me := primitive.NewObjectID()
	store.Create(ctx, application(me, primitive.NewObjectID(), primitive.NewObjectID()))
	store.Create(ctx, application(me, primitive.NewObjectID(), primitive.NewObjectID()))
	store.Create(ctx, application(primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()))

	got, err := store.ListByLearner(ctx, me)
	if err != nil {
		t.Fatalf("ListByLearner: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d, want 2", len(got))
	}
}
