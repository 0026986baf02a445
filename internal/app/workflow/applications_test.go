package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dalemusser/dexterhub/internal/app/system/apperr"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/app/workflow"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	approve = workflow.ReviewInput{Decision: models.DecisionApprove}
	reject  = workflow.ReviewInput{Decision: models.DecisionReject}
)

func TestApproveApplication_EnrollsLearnerAndAudits(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	l1 := e.user("L1", models.RoleLearner)
	a1 := e.user("A1", models.RoleAdmin)
	co1 := e.course("Co1")
	c1 := e.cohort("C1", models.CohortActive, []primitive.ObjectID{co1.ID})

	app, err := e.engine.Apply(ctx, l1, workflow.ApplyInput{CohortID: c1.ID, CourseID: co1.ID})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if app.Status != models.StatusPending {
		t.Fatalf("new application status = %q, want pending", app.Status)
	}
	if len(e.audit.all()) != 0 {
		t.Fatal("creating an application must not write an audit entry")
	}

	got, err := e.engine.ReviewApplication(ctx, a1, app.ID, approve)
	if err != nil {
		t.Fatalf("ReviewApplication: %v", err)
	}
	if got.Status != models.StatusApproved {
		t.Errorf("status = %q, want approved", got.Status)
	}
	if got.ReviewedByID == nil || *got.ReviewedByID != a1.ID {
		t.Error("reviewer not recorded")
	}

	cohort := e.cohortNow(t, c1.ID)
	if !cohort.HasLearner(l1.ID) {
		t.Error("C1.learnerIds should include L1")
	}
	course, _ := e.courses.GetByID(ctx, co1.ID)
	if !course.HasRegistrar(l1.ID) {
		t.Error("Co1 registrars should include L1")
	}
	if _, ok := e.progress.get(l1.ID, co1.ID); !ok {
		t.Error("progress record should exist after approval")
	}

	entries := e.audit.all()
	if len(entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(entries))
	}
	a := entries[0]
	if a.ActorID != a1.ID || a.Action != models.ActionApproveApplication {
		t.Errorf("audit = actor %s action %q", a.ActorID.Hex(), a.Action)
	}
	if a.TargetUser == nil || *a.TargetUser != l1.ID {
		t.Error("audit target user should be L1")
	}
	if a.TargetCohort == nil || *a.TargetCohort != c1.ID {
		t.Error("audit target cohort should be C1")
	}
}

func TestRejectApplication_NoMembershipChange(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	learner := e.user("Lee", models.RoleLearner)
	admin := e.user("Ada", models.RoleAdmin)
	course := e.course("Go")
	cohort := e.cohort("Spring", models.CohortActive, []primitive.ObjectID{course.ID})

	app, err := e.engine.Apply(ctx, learner, workflow.ApplyInput{CohortID: cohort.ID, CourseID: course.ID})
	if err != nil {
		t.Fatal(err)
	}
	got, err := e.engine.ReviewApplication(ctx, admin, app.ID, reject)
	if err != nil {
		t.Fatalf("ReviewApplication: %v", err)
	}
	if got.Status != models.StatusRejected {
		t.Errorf("status = %q, want rejected", got.Status)
	}
	if e.cohortNow(t, cohort.ID).HasLearner(learner.ID) {
		t.Error("rejection must not add the learner")
	}
	if _, ok := e.progress.get(learner.ID, course.ID); ok {
		t.Error("rejection must not create progress")
	}
	entries := e.audit.all()
	if len(entries) != 1 || entries[0].Action != models.ActionRejectApplication {
		t.Fatalf("want one rejectApplication entry, got %+v", entries)
	}
}

func TestApproveApplication_LearnerKeptOnceInCohort(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	learner := e.user("Lee", models.RoleLearner)
	admin := e.user("Ada", models.RoleAdmin)
	goCourse := e.course("Go")
	sqlCourse := e.course("SQL")
	cohort := e.cohort("Spring", models.CohortActive, []primitive.ObjectID{goCourse.ID, sqlCourse.ID})

	for _, course := range []*models.Course{goCourse, sqlCourse} {
		app, err := e.engine.Apply(ctx, learner, workflow.ApplyInput{CohortID: cohort.ID, CourseID: course.ID})
		if err != nil {
			t.Fatalf("Apply %s: %v", course.Title, err)
		}
		if _, err := e.engine.ReviewApplication(ctx, admin, app.ID, approve); err != nil {
			t.Fatalf("approve %s: %v", course.Title, err)
		}
	}
	if n := countID(e.cohortNow(t, cohort.ID).LearnerIDs, learner.ID); n != 1 {
		t.Errorf("learner appears %d times, want 1", n)
	}
}

func TestReviewApplication_SecondReviewFails(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	learner := e.user("Lee", models.RoleLearner)
	admin := e.user("Ada", models.RoleAdmin)
	course := e.course("Go")
	cohort := e.cohort("Spring", models.CohortActive, []primitive.ObjectID{course.ID})
	app, _ := e.engine.Apply(ctx, learner, workflow.ApplyInput{CohortID: cohort.ID, CourseID: course.ID})

	if _, err := e.engine.ReviewApplication(ctx, admin, app.ID, approve); err != nil {
		t.Fatal(err)
	}
	for _, in := range []workflow.ReviewInput{approve, reject} {
		_, err := e.engine.ReviewApplication(ctx, admin, app.ID, in)
		if !errors.Is(err, apperr.ErrInvalidStateTransition) {
			t.Errorf("second review (%s): err = %v, want invalid state transition", in.Decision, err)
		}
	}
	stored, _ := e.apps.GetByID(ctx, app.ID)
	if stored.Status != models.StatusApproved {
		t.Errorf("status changed to %q", stored.Status)
	}
	if n := len(e.audit.all()); n != 1 {
		t.Errorf("audit entries = %d, want 1", n)
	}
}

func TestReviewApplication_ConcurrentReviewersOneWins(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	learner := e.user("Lee", models.RoleLearner)
	admin := e.user("Ada", models.RoleAdmin)
	course := e.course("Go")
	cohort := e.cohort("Spring", models.CohortActive, []primitive.ObjectID{course.ID})
	app, _ := e.engine.Apply(ctx, learner, workflow.ApplyInput{CohortID: cohort.ID, CourseID: course.ID})

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := approve
			if i%2 == 1 {
				in = reject
			}
			_, err := e.engine.ReviewApplication(ctx, admin, app.ID, in)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, apperr.ErrInvalidStateTransition):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("successful reviews = %d, want 1", wins)
	}
	if got := len(e.audit.all()); got != 1 {
		t.Errorf("audit entries = %d, want 1", got)
	}
}

func TestPendingApplications_InstructorScope(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	i1 := e.user("I1", models.RoleInstructor)
	admin := e.user("Ada", models.RoleAdmin)
	learner := e.user("Lee", models.RoleLearner)
	course := e.course("Go")
	mine := e.cohort("Mine", models.CohortActive, []primitive.ObjectID{course.ID}, i1.ID)
	other := e.cohort("Other", models.CohortActive, []primitive.ObjectID{course.ID})

	appMine, _ := e.engine.Apply(ctx, learner, workflow.ApplyInput{CohortID: mine.ID, CourseID: course.ID})
	appOther, _ := e.engine.Apply(ctx, learner, workflow.ApplyInput{CohortID: other.ID, CourseID: course.ID})

	got, err := e.engine.PendingApplications(ctx, i1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != appMine.ID {
		t.Errorf("instructor sees %d applications, want only their cohort's", len(got))
	}

	all, err := e.engine.PendingApplications(ctx, admin)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("admin sees %d applications, want 2", len(all))
	}

	if _, err := e.engine.ReviewApplication(ctx, i1, appOther.ID, approve); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("reviewing another cohort's application: err = %v, want unauthorized", err)
	}
	if _, err := e.engine.ReviewApplication(ctx, i1, appMine.ID, approve); err != nil {
		t.Errorf("reviewing own cohort's application: %v", err)
	}
}

func TestPendingApplications_InstructorWithoutCohorts(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	i1 := e.user("I1", models.RoleInstructor)
	learner := e.user("Lee", models.RoleLearner)
	course := e.course("Go")
	cohort := e.cohort("Spring", models.CohortActive, []primitive.ObjectID{course.ID})
	if _, err := e.engine.Apply(ctx, learner, workflow.ApplyInput{CohortID: cohort.ID, CourseID: course.ID}); err != nil {
		t.Fatal(err)
	}

	got, err := e.engine.PendingApplications(ctx, i1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("instructor without cohorts sees %d applications", len(got))
	}
}

func TestApply_Rules(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	learner := e.user("Lee", models.RoleLearner)
	admin := e.user("Ada", models.RoleAdmin)
	course := e.course("Go")
	unoffered := e.course("Rust")
	open := e.cohort("Open", models.CohortActive, []primitive.ObjectID{course.ID})
	closed := e.cohort("Closed", models.CohortClosed, []primitive.ObjectID{course.ID})

	tests := []struct {
		name string
		in   workflow.ApplyInput
		want error
	}{
		{"unknown cohort", workflow.ApplyInput{CohortID: primitive.NewObjectID(), CourseID: course.ID}, apperr.ErrNotFound},
		{"unknown course", workflow.ApplyInput{CohortID: open.ID, CourseID: primitive.NewObjectID()}, apperr.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.engine.Apply(ctx, learner, tt.in); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	invalid := []struct {
		name  string
		in    workflow.ApplyInput
		field string
	}{
		{"missing ids", workflow.ApplyInput{}, "cohortId"},
		{"closed cohort", workflow.ApplyInput{CohortID: closed.ID, CourseID: course.ID}, "cohortId"},
		{"course not offered", workflow.ApplyInput{CohortID: open.ID, CourseID: unoffered.ID}, "courseId"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.engine.Apply(ctx, learner, tt.in)
			var ve *apperr.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want validation error", err)
			}
			if _, ok := ve.FieldMap()[tt.field]; !ok {
				t.Errorf("fields = %v, want %s", ve.FieldMap(), tt.field)
			}
		})
	}

	t.Run("duplicate pending", func(t *testing.T) {
		in := workflow.ApplyInput{CohortID: open.ID, CourseID: course.ID}
		first, err := e.engine.Apply(ctx, learner, in)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := e.engine.Apply(ctx, learner, in); !errors.Is(err, apperr.ErrConflict) {
			t.Fatalf("second apply: err = %v, want conflict", err)
		}

		if _, err := e.engine.ReviewApplication(ctx, admin, first.ID, approve); err != nil {
			t.Fatal(err)
		}
		if _, err := e.engine.Apply(ctx, learner, in); !errors.Is(err, apperr.ErrConflict) {
			t.Errorf("apply when enrolled: err = %v, want conflict", err)
		}
	})
}

func TestApplications_RoleGates(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	learner := e.user("Lee", models.RoleLearner)
	instructor := e.user("Ivy", models.RoleInstructor)
	super := e.user("Sam", models.RoleSuperAdmin)
	course := e.course("Go")
	cohort := e.cohort("Spring", models.CohortActive, []primitive.ObjectID{course.ID}, instructor.ID)
	in := workflow.ApplyInput{CohortID: cohort.ID, CourseID: course.ID}

	if _, err := e.engine.Apply(ctx, instructor, in); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("instructor apply: err = %v", err)
	}
	if _, err := e.engine.Apply(ctx, auth.Actor{}, in); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("anonymous apply: err = %v", err)
	}

	app, err := e.engine.Apply(ctx, learner, in)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.engine.ReviewApplication(ctx, learner, app.ID, approve); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("learner review: err = %v", err)
	}
	if _, err := e.engine.PendingApplications(ctx, learner); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("learner pending list: err = %v", err)
	}
	if _, err := e.engine.ReviewApplication(ctx, super, app.ID, approve); err != nil {
		t.Errorf("super-admin review: %v", err)
	}

	mine, err := e.engine.MyApplications(ctx, learner)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].Status != models.StatusApproved {
		t.Errorf("my applications = %+v", mine)
	}
}

func TestReviewApplication_Errors(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	learner := e.user("Lee", models.RoleLearner)
	admin := e.user("Ada", models.RoleAdmin)
	course := e.course("Go")
	cohort := e.cohort("Spring", models.CohortActive, []primitive.ObjectID{course.ID})
	app, _ := e.engine.Apply(ctx, learner, workflow.ApplyInput{CohortID: cohort.ID, CourseID: course.ID})

	if _, err := e.engine.ReviewApplication(ctx, admin, primitive.NewObjectID(), approve); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown id: err = %v, want not found", err)
	}

	var ve *apperr.ValidationError
	_, err := e.engine.ReviewApplication(ctx, admin, app.ID, workflow.ReviewInput{Decision: "maybe"})
	if !errors.As(err, &ve) || ve.FieldMap()["decision"] == "" {
		t.Errorf("bad decision: err = %v, want decision validation error", err)
	}
	stored, _ := e.apps.GetByID(ctx, app.ID)
	if !stored.IsPending() {
		t.Error("failed review must leave the application pending")
	}
}

func TestReviewApplication_AuditFailureFailsReview(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	learner := e.user("Lee", models.RoleLearner)
	admin := e.user("Ada", models.RoleAdmin)
	course := e.course("Go")
	cohort := e.cohort("Spring", models.CohortActive, []primitive.ObjectID{course.ID})
	app, _ := e.engine.Apply(ctx, learner, workflow.ApplyInput{CohortID: cohort.ID, CourseID: course.ID})

	e.audit.err = errors.New("write concern timeout")
	_, err := e.engine.ReviewApplication(ctx, admin, app.ID, approve)
	var se *apperr.StoreError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want store error", err)
	}
	if e.tx.runs != 1 {
		t.Errorf("transaction runs = %d, want 1", e.tx.runs)
	}
}
