package progress_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	uierrors "github.com/dalemusser/dexterhub/internal/app/features/errors"
	"github.com/dalemusser/dexterhub/internal/app/features/progress"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"github.com/dalemusser/dexterhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*progress.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return progress.NewHandler(db, uierrors.NewErrorLogger(logger), logger), testutil.NewFixtures(t, db)
}

func complete(t *testing.T, h *progress.Handler, u models.User, courseID, lessonID primitive.ObjectID) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.JSONRequest(t, http.MethodPost, "/lessons/"+lessonID.Hex()+"/complete", map[string]string{"courseId": courseID.Hex()})
	rec := httptest.NewRecorder()
	progress.Routes(h).ServeHTTP(rec, testutil.WithUser(req, u))
	return rec
}

func TestHandleComplete_RecomputesStatus(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	lee := fx.CreateUser(ctx, "Lee Learner", "lee@example.com", models.RoleLearner)
	co := fx.CreateCourse(ctx, "Co1")
	c1 := fx.CreateCohort(ctx, "C1", models.CohortActive, []primitive.ObjectID{co.ID})
	if _, err := h.Courses.AddRegistrar(ctx, co.ID, lee.ID); err != nil {
		t.Fatalf("AddRegistrar: %v", err)
	}
	if _, err := h.Progress.EnsureForLearner(ctx, lee.ID, co.ID, c1.ID); err != nil {
		t.Fatalf("EnsureForLearner: %v", err)
	}
	lessons := co.Modules[0].Lessons

	want := []string{models.ProgressInProgress, models.ProgressInProgress, models.ProgressCompleted}
	for i, lessonID := range []primitive.ObjectID{lessons[0].ID, lessons[0].ID, lessons[1].ID} {
		rec := complete(t, h, lee, co.ID, lessonID)
		testutil.AssertStatus(t, rec, http.StatusOK)
		var p models.LearnerProgress
		testutil.DecodeJSON(t, rec, &p)
		if p.Status != want[i] {
			t.Errorf("step %d: status = %q, want %q", i, p.Status, want[i])
		}
	}

	rec := httptest.NewRecorder()
	progress.Routes(h).ServeHTTP(rec, testutil.WithUser(httptest.NewRequest(http.MethodGet, "/my", nil), lee))
	testutil.AssertStatus(t, rec, http.StatusOK)
	var mine []models.LearnerProgress
	testutil.DecodeJSON(t, rec, &mine)
	if len(mine) != 1 || len(mine[0].CompletedLessons) != 2 {
		t.Errorf("my progress = %+v", mine)
	}
}

func TestHandleComplete_Rejects(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	lee := fx.CreateUser(ctx, "Lee Learner", "lee@example.com", models.RoleLearner)
	ivy := fx.CreateUser(ctx, "Ivy Instructor", "ivy@example.com", models.RoleInstructor)
	co := fx.CreateCourse(ctx, "Co1")
	lesson := co.Modules[0].Lessons[0].ID

	testutil.AssertStatus(t, complete(t, h, lee, co.ID, lesson), http.StatusForbidden)
	testutil.AssertStatus(t, complete(t, h, ivy, co.ID, lesson), http.StatusForbidden)
	testutil.AssertStatus(t, complete(t, h, lee, primitive.NewObjectID(), lesson), http.StatusNotFound)

	if _, err := h.Courses.AddRegistrar(ctx, co.ID, lee.ID); err != nil {
		t.Fatalf("AddRegistrar: %v", err)
	}
	testutil.AssertStatus(t, complete(t, h, lee, co.ID, primitive.NewObjectID()), http.StatusNotFound)
}
