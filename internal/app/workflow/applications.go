package workflow

import (
	"context"
	"errors"

	enrollmentstore "github.com/dalemusser/dexterhub/internal/app/store/enrollments"
	"github.com/dalemusser/dexterhub/internal/app/system/apperr"
	"github.com/dalemusser/dexterhub/internal/app/system/auditlog"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ApplyInput is a learner's enrollment application.
type ApplyInput struct {
	CohortID primitive.ObjectID
	CourseID primitive.ObjectID
	Note     string
}

// Apply files a pending enrollment request for the actor. The cohort must
// offer the course and must not be closed; a learner already enrolled in both
// or with a pending request for the same pair gets a Conflict.
func (e *Engine) Apply(ctx context.Context, actor auth.Actor, in ApplyInput) (models.EnrollmentRequest, error) {
	if err := requireRole(actor, "apply to a cohort", models.RoleLearner); err != nil {
		return models.EnrollmentRequest{}, err
	}
	in.Note = cleanText(in.Note)
	var c apperr.Collector
	c.Check(!in.CohortID.IsZero(), "cohortId", requiredText)
	c.Check(!in.CourseID.IsZero(), "courseId", requiredText)
	c.Check(within(in.Note, maxNoteLen), "note", tooLong(maxNoteLen))
	if err := c.Err(); err != nil {
		return models.EnrollmentRequest{}, err
	}

	cohort, err := e.Cohorts.GetByID(ctx, in.CohortID)
	if err != nil {
		return models.EnrollmentRequest{}, classify("cohort", "load cohort", err)
	}
	course, err := e.Courses.GetByID(ctx, in.CourseID)
	if err != nil {
		return models.EnrollmentRequest{}, classify("course", "load course", err)
	}
	if cohort.Status == models.CohortClosed {
		return models.EnrollmentRequest{}, apperr.Invalid("cohortId", "cohort is closed")
	}
	if !cohort.HasCourse(course.ID) {
		return models.EnrollmentRequest{}, apperr.Invalid("courseId", "course is not offered in this cohort")
	}
	if cohort.HasLearner(actor.ID) && course.HasRegistrar(actor.ID) {
		return models.EnrollmentRequest{}, apperr.Conflict("already enrolled in this cohort and course")
	}

	app, err := e.Applications.Create(ctx, models.EnrollmentRequest{
		LearnerID: actor.ID,
		CohortID:  cohort.ID,
		CourseID:  course.ID,
		Note:      in.Note,
	})
	if errors.Is(err, enrollmentstore.ErrDuplicatePending) {
		return models.EnrollmentRequest{}, apperr.Conflict(err.Error())
	}
	if err != nil {
		return models.EnrollmentRequest{}, apperr.Store("create application", err)
	}
	return app, nil
}

// MyApplications lists the actor's own applications, newest first.
func (e *Engine) MyApplications(ctx context.Context, actor auth.Actor) ([]models.EnrollmentRequest, error) {
	if err := requireRole(actor, "list applications", models.RoleLearner); err != nil {
		return nil, err
	}
	apps, err := e.Applications.ListByLearner(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Store("list my applications", err)
	}
	return apps, nil
}

// PendingApplications lists pending applications the actor may review.
// Admins see every cohort; instructors only the cohorts they teach.
func (e *Engine) PendingApplications(ctx context.Context, actor auth.Actor) ([]models.EnrollmentRequest, error) {
	if err := requireRole(actor, "review applications", models.RoleInstructor, models.RoleAdmin); err != nil {
		return nil, err
	}
	var scope []primitive.ObjectID
	if !actor.IsAdmin() {
		ids, err := e.Cohorts.IDsForInstructor(ctx, actor.ID)
		if err != nil {
			return nil, apperr.Store("load instructor cohorts", err)
		}
		scope = append([]primitive.ObjectID{}, ids...)
	}
	apps, err := e.Applications.ListPending(ctx, scope)
	if err != nil {
		return nil, apperr.Store("list pending applications", err)
	}
	return apps, nil
}

// ReviewApplication approves or rejects a pending application. Approval adds
// the learner to the cohort and the course registrars and creates their
// progress record. The status change, the side effects and the audit entry
// share one transaction.
func (e *Engine) ReviewApplication(ctx context.Context, actor auth.Actor, id primitive.ObjectID, in ReviewInput) (*models.EnrollmentRequest, error) {
	if err := requireRole(actor, "review applications", models.RoleInstructor, models.RoleAdmin); err != nil {
		return nil, err
	}
	in, err := in.clean()
	if err != nil {
		return nil, err
	}

	app, err := e.Applications.GetByID(ctx, id)
	if err != nil {
		return nil, classify("application", "load application", err)
	}
	if !actor.IsAdmin() {
		cohort, err := e.Cohorts.GetByID(ctx, app.CohortID)
		if err != nil {
			return nil, classify("cohort", "load cohort", err)
		}
		if !cohort.HasInstructor(actor.ID) {
			return nil, apperr.Unauthorized("instructors may only review applications for their own cohorts")
		}
	}
	if !app.IsPending() {
		return nil, apperr.InvalidTransition("application", app.Status)
	}

	var out *models.EnrollmentRequest
	err = e.Tx.Run(ctx, func(ctx context.Context) error {
		decided, err := e.Applications.Decide(ctx, id, in.decision(actor.ID))
		if err != nil {
			return classify("application", "decide application", err)
		}
		if in.Decision == models.DecisionApprove {
			if err := e.enroll(ctx, decided); err != nil {
				return err
			}
		}
		if _, err := e.Audit.Record(ctx, auditlog.Entry{
			ActorID:      actor.ID,
			ActorName:    actor.Name,
			Action:       reviewAction(in.Decision, models.ActionApproveApplication, models.ActionRejectApplication),
			TargetUser:   idPtr(decided.LearnerID),
			TargetCohort: idPtr(decided.CohortID),
			Details: models.AuditDetails{Application: &models.ApplicationReviewDetails{
				ApplicationID: decided.ID,
				CourseID:      decided.CourseID,
				Decision:      in.Decision,
				Note:          in.Note,
			}},
		}); err != nil {
			return apperr.Store("record application review", err)
		}
		out = decided
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.Log.Info("application reviewed",
		zap.String("application_id", id.Hex()),
		zap.String("decision", string(in.Decision)),
		zap.String("reviewer_id", actor.ID.Hex()))
	return out, nil
}

// enroll applies the membership side effects of an approved application.
// Each step is idempotent.
func (e *Engine) enroll(ctx context.Context, app *models.EnrollmentRequest) error {
	if _, err := e.Cohorts.AddLearner(ctx, app.CohortID, app.LearnerID); err != nil {
		return classify("cohort", "add learner to cohort", err)
	}
	if _, err := e.Courses.AddRegistrar(ctx, app.CourseID, app.LearnerID); err != nil {
		return classify("course", "register learner in course", err)
	}
	if _, err := e.Progress.EnsureForLearner(ctx, app.LearnerID, app.CourseID, app.CohortID); err != nil {
		return apperr.Store("create learner progress", err)
	}
	return nil
}
