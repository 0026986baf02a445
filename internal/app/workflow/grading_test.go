package workflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/dexterhub/internal/app/system/apperr"
	"github.com/dalemusser/dexterhub/internal/app/workflow"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (e *env) submission(learnerID primitive.ObjectID, course *models.Course, lesson models.Lesson) *models.Submission {
	s := &models.Submission{
		ID:        primitive.NewObjectID(),
		LearnerID: learnerID,
		CourseID:  course.ID,
		LessonID:  lesson.ID,
		Content:   "answer",
		Status:    models.SubmissionSubmitted,
	}
	e.submissions.recs[s.ID] = s
	return s
}

func TestGradeSubmission(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	instructor := e.user("Ivy", models.RoleInstructor)
	learner := e.user("Lee", models.RoleLearner)
	course := e.course("Go", instructor.ID)
	task := course.Modules[0].Lessons[0]
	if _, err := e.progress.EnsureForLearner(ctx, learner.ID, course.ID, primitive.NewObjectID()); err != nil {
		t.Fatal(err)
	}
	sub := e.submission(learner.ID, course, task)

	var ve *apperr.ValidationError
	if _, err := e.engine.GradeSubmission(ctx, instructor, sub.ID, workflow.GradeInput{Score: 11}); !errors.As(err, &ve) {
		t.Fatalf("score above task maximum: err = %v", err)
	}

	got, err := e.engine.GradeSubmission(ctx, instructor, sub.ID, workflow.GradeInput{Score: 8, Feedback: "<i>good</i>"})
	if err != nil {
		t.Fatalf("GradeSubmission: %v", err)
	}
	if got.Status != models.SubmissionGraded || got.Score == nil || *got.Score != 8 {
		t.Errorf("graded = %+v", got)
	}
	if got.Feedback != "good" {
		t.Errorf("feedback = %q", got.Feedback)
	}
	p, _ := e.progress.get(learner.ID, course.ID)
	if p.Score != 8 {
		t.Errorf("progress score = %d, want 8", p.Score)
	}

	if _, err := e.engine.GradeSubmission(ctx, instructor, sub.ID, workflow.GradeInput{Score: 9}); !errors.Is(err, apperr.ErrInvalidStateTransition) {
		t.Errorf("regrade: err = %v", err)
	}
	entries := e.audit.all()
	if len(entries) != 1 || entries[0].Action != models.ActionGradeSubmission || entries[0].Details.Grading.Score != 8 {
		t.Errorf("audit = %+v", entries)
	}
}

func TestGradeSubmission_Access(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	courseOwner := e.user("Ivy", models.RoleInstructor)
	cohortInstructor := e.user("Cal", models.RoleInstructor)
	stranger := e.user("Sid", models.RoleInstructor)
	learner := e.user("Lee", models.RoleLearner)
	admin := e.user("Ada", models.RoleAdmin)
	course := e.course("Go", courseOwner.ID)
	cohort := e.cohort("Spring", models.CohortActive, []primitive.ObjectID{course.ID}, cohortInstructor.ID)
	cohort.LearnerIDs = append(cohort.LearnerIDs, learner.ID)
	lesson := course.Modules[0].Lessons[1]

	if _, err := e.engine.GradeSubmission(ctx, stranger, e.submission(learner.ID, course, lesson).ID, workflow.GradeInput{Score: 50}); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("unrelated instructor: err = %v", err)
	}
	if _, err := e.engine.GradeSubmission(ctx, learner, e.submission(learner.ID, course, lesson).ID, workflow.GradeInput{Score: 50}); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("learner: err = %v", err)
	}
	for _, grader := range []struct {
		name  string
		grade func() error
	}{
		{"cohort instructor", func() error {
			_, err := e.engine.GradeSubmission(ctx, cohortInstructor, e.submission(learner.ID, course, lesson).ID, workflow.GradeInput{Score: 100})
			return err
		}},
		{"admin", func() error {
			_, err := e.engine.GradeSubmission(ctx, admin, e.submission(learner.ID, course, lesson).ID, workflow.GradeInput{Score: 0})
			return err
		}},
	} {
		if err := grader.grade(); err != nil {
			t.Errorf("%s: %v", grader.name, err)
		}
	}
	if _, err := e.engine.GradeSubmission(ctx, admin, primitive.NewObjectID(), workflow.GradeInput{}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown submission: err = %v", err)
	}
}

func TestCourseSubmissions_Access(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	cohortInstructor := e.user("Cal", models.RoleInstructor)
	stranger := e.user("Sid", models.RoleInstructor)
	learner := e.user("Lee", models.RoleLearner)
	course := e.course("Go")
	e.cohort("Spring", models.CohortActive, []primitive.ObjectID{course.ID}, cohortInstructor.ID)
	e.submission(learner.ID, course, course.Modules[0].Lessons[0])

	subs, err := e.engine.CourseSubmissions(ctx, cohortInstructor, course.ID, models.SubmissionSubmitted)
	if err != nil || len(subs) != 1 {
		t.Errorf("cohort instructor: %d submissions, err %v", len(subs), err)
	}
	if _, err := e.engine.CourseSubmissions(ctx, stranger, course.ID, ""); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("unrelated instructor: err = %v", err)
	}
}
