package droprecs_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/dexterhub/internal/app/features/droprecs"
	uierrors "github.com/dalemusser/dexterhub/internal/app/features/errors"
	"github.com/dalemusser/dexterhub/internal/app/store/audit"
	cohortstore "github.com/dalemusser/dexterhub/internal/app/store/cohorts"
	"github.com/dalemusser/dexterhub/internal/app/system/auditlog"
	"github.com/dalemusser/dexterhub/internal/app/workflow"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"github.com/dalemusser/dexterhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*droprecs.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	wf := workflow.NewMongo(db, auditlog.New(audit.New(db), logger, auditlog.Config{Mirror: auditlog.MirrorDB}), logger)
	return droprecs.NewHandler(wf, uierrors.NewErrorLogger(logger), logger), testutil.NewFixtures(t, db)
}

func instructor(h *droprecs.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	droprecs.InstructorRoutes(h).ServeHTTP(rec, req)
	return rec
}

func adminReq(h *droprecs.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	droprecs.AdminRoutes(h).ServeHTTP(rec, req)
	return rec
}

func TestRecommendAndReview(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	lee := fx.CreateUser(ctx, "Lee Learner", "lee@example.com", models.RoleLearner)
	ivy := fx.CreateUser(ctx, "Ivy Instructor", "ivy@example.com", models.RoleInstructor)
	ada := fx.CreateUser(ctx, "Ada Admin", "ada@example.com", models.RoleAdmin)
	c1 := fx.CreateCohort(ctx, "C1", models.CohortActive, nil, ivy.ID)
	addLearner(t, ctx, fx, c1.ID, lee.ID)

	rec := instructor(h, testutil.WithUser(testutil.JSONRequest(t, http.MethodPost, "/", map[string]string{
		"learnerId": lee.ID.Hex(),
		"cohortId":  c1.ID.Hex(),
		"reason":    "Missed every session",
	}), ivy))
	testutil.AssertStatus(t, rec, http.StatusCreated)
	var d models.DropRecommendation
	testutil.DecodeJSON(t, rec, &d)
	if d.Status != models.StatusPending || d.InstructorID != ivy.ID {
		t.Fatalf("recommendation = %+v", d)
	}

	rec = instructor(h, testutil.WithUser(httptest.NewRequest(http.MethodGet, "/", nil), ivy))
	testutil.AssertStatus(t, rec, http.StatusOK)
	var mine []models.DropRecommendation
	testutil.DecodeJSON(t, rec, &mine)
	if len(mine) != 1 {
		t.Errorf("instructor sees %d, want 1", len(mine))
	}

	rec = adminReq(h, testutil.WithUser(testutil.JSONRequest(t, http.MethodPut, "/"+d.ID.Hex(), map[string]string{"decision": "approve"}), ada))
	testutil.AssertStatus(t, rec, http.StatusOK)
	testutil.DecodeJSON(t, rec, &d)
	if d.Status != models.StatusApproved {
		t.Errorf("status = %q, want approved", d.Status)
	}

	// Approval records the decision only; membership is unchanged.
	cohort, err := cohortstore.New(fx.DB()).GetByID(ctx, c1.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !cohort.HasLearner(lee.ID) {
		t.Error("approving a drop recommendation must not remove the learner")
	}

	rec = adminReq(h, testutil.WithUser(httptest.NewRequest(http.MethodGet, "/?status=pending", nil), ada))
	testutil.AssertStatus(t, rec, http.StatusOK)
	var pending []models.DropRecommendation
	testutil.DecodeJSON(t, rec, &pending)
	if len(pending) != 0 {
		t.Errorf("pending = %d, want 0", len(pending))
	}
}

func TestRecommend_Rejects(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	lee := fx.CreateUser(ctx, "Lee Learner", "lee@example.com", models.RoleLearner)
	ivy := fx.CreateUser(ctx, "Ivy Instructor", "ivy@example.com", models.RoleInstructor)
	ian := fx.CreateUser(ctx, "Ian Instructor", "ian@example.com", models.RoleInstructor)
	c1 := fx.CreateCohort(ctx, "C1", models.CohortActive, nil, ivy.ID)
	addLearner(t, ctx, fx, c1.ID, lee.ID)

	tests := []struct {
		name  string
		actor models.User
		body  map[string]string
		want  int
	}{
		{"learner cannot recommend", lee, map[string]string{"learnerId": lee.ID.Hex(), "reason": "r"}, http.StatusForbidden},
		{"not their cohort", ian, map[string]string{"learnerId": lee.ID.Hex(), "cohortId": c1.ID.Hex(), "reason": "r"}, http.StatusForbidden},
		{"missing reason", ivy, map[string]string{"learnerId": lee.ID.Hex()}, http.StatusBadRequest},
		{"bad cohort id", ivy, map[string]string{"learnerId": lee.ID.Hex(), "cohortId": "x", "reason": "r"}, http.StatusBadRequest},
		{"target not a learner", ivy, map[string]string{"learnerId": ian.ID.Hex(), "reason": "r"}, http.StatusBadRequest},
		{"unknown learner", ivy, map[string]string{"learnerId": primitive.NewObjectID().Hex(), "reason": "r"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := instructor(h, testutil.WithUser(testutil.JSONRequest(t, http.MethodPost, "/", tt.body), tt.actor))
			testutil.AssertStatus(t, rec, tt.want)
		})
	}
}

func addLearner(t *testing.T, ctx context.Context, fx *testutil.Fixtures, cohortID, learnerID primitive.ObjectID) {
	t.Helper()
	if _, err := cohortstore.New(fx.DB()).AddLearner(ctx, cohortID, learnerID); err != nil {
		t.Fatalf("AddLearner: %v", err)
	}
}
