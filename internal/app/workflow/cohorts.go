package workflow

import (
	"context"
	"errors"
	"time"

	cohortstore "github.com/dalemusser/dexterhub/internal/app/store/cohorts"
	"github.com/dalemusser/dexterhub/internal/app/system/apperr"
	"github.com/dalemusser/dexterhub/internal/app/system/auditlog"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/app/system/normalize"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CohortInput carries the editable fields of a cohort.
type CohortInput struct {
	Name        string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Status      string
}

func (in CohortInput) clean() (CohortInput, error) {
	in.Name = normalize.Name(in.Name)
	in.Description = cleanText(in.Description)
	in.Status = normalize.Status(in.Status)
	if in.Status == "" {
		in.Status = models.CohortUpcoming
	}
	var c apperr.Collector
	c.Check(in.Name != "", "name", requiredText)
	c.Check(within(in.Name, maxNameLen), "name", tooLong(maxNameLen))
	c.Check(within(in.Description, maxDetailsLen), "description", tooLong(maxDetailsLen))
	c.Check(models.ValidCohortStatus(in.Status), "status", "must be upcoming, active or closed")
	if !in.StartDate.IsZero() && !in.EndDate.IsZero() {
		c.Check(!in.EndDate.Before(in.StartDate), "endDate", "must not be before the start date")
	}
	return in, c.Err()
}

// CreateCohort creates a cohort with empty member sets.
func (e *Engine) CreateCohort(ctx context.Context, actor auth.Actor, in CohortInput) (models.Cohort, error) {
	if err := requireRole(actor, "create cohorts", models.RoleAdmin); err != nil {
		return models.Cohort{}, err
	}
	in, err := in.clean()
	if err != nil {
		return models.Cohort{}, err
	}

	var out models.Cohort
	err = e.Tx.Run(ctx, func(ctx context.Context) error {
		c, err := e.Cohorts.Create(ctx, models.Cohort{
			Name:        in.Name,
			Description: in.Description,
			StartDate:   in.StartDate,
			EndDate:     in.EndDate,
			Status:      in.Status,
		})
		if errors.Is(err, cohortstore.ErrDuplicateName) {
			return apperr.Conflict(err.Error())
		}
		if err != nil {
			return apperr.Store("create cohort", err)
		}
		if err := e.recordCohort(ctx, actor, models.ActionCreateCohort, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	return out, err
}

// UpdateCohort replaces a cohort's editable fields.
func (e *Engine) UpdateCohort(ctx context.Context, actor auth.Actor, id primitive.ObjectID, in CohortInput) (*models.Cohort, error) {
	if err := requireRole(actor, "edit cohorts", models.RoleAdmin); err != nil {
		return nil, err
	}
	in, err := in.clean()
	if err != nil {
		return nil, err
	}

	var out *models.Cohort
	err = e.Tx.Run(ctx, func(ctx context.Context) error {
		c, err := e.Cohorts.Update(ctx, id, cohortstore.Update{
			Name:        in.Name,
			Description: in.Description,
			StartDate:   in.StartDate,
			EndDate:     in.EndDate,
			Status:      in.Status,
		})
		if errors.Is(err, cohortstore.ErrDuplicateName) {
			return apperr.Conflict(err.Error())
		}
		if err != nil {
			return classify("cohort", "update cohort", err)
		}
		if err := e.recordCohort(ctx, actor, models.ActionUpdateCohort, *c); err != nil {
			return err
		}
		out = c
		return nil
	})
	return out, err
}

func (e *Engine) recordCohort(ctx context.Context, actor auth.Actor, action string, c models.Cohort) error {
	_, err := e.Audit.Record(ctx, auditlog.Entry{
		ActorID:      actor.ID,
		ActorName:    actor.Name,
		Action:       action,
		TargetCohort: idPtr(c.ID),
		Details: models.AuditDetails{Cohort: &models.CohortChangeDetails{
			Name:   c.Name,
			Status: c.Status,
		}},
	})
	if err != nil {
		return apperr.Store("record "+action, err)
	}
	return nil
}

// AddCourseToCohort offers a course in a cohort. Adding a course that is
// already offered changes nothing and reports changed=false.
func (e *Engine) AddCourseToCohort(ctx context.Context, actor auth.Actor, cohortID, courseID primitive.ObjectID) (bool, error) {
	if err := requireRole(actor, "change cohort courses", models.RoleAdmin); err != nil {
		return false, err
	}
	if _, err := e.Courses.GetByID(ctx, courseID); err != nil {
		return false, classify("course", "load course", err)
	}
	return e.mutateMembership(ctx, actor, models.ActionAddCourseToCohort, cohortID,
		models.MembershipChangeDetails{CourseID: idPtr(courseID)},
		func(ctx context.Context) (bool, error) { return e.Cohorts.AddCourse(ctx, cohortID, courseID) })
}

// RemoveCourseFromCohort stops offering a course in a cohort. Removing a
// course that is not offered reports changed=false.
func (e *Engine) RemoveCourseFromCohort(ctx context.Context, actor auth.Actor, cohortID, courseID primitive.ObjectID) (bool, error) {
	if err := requireRole(actor, "change cohort courses", models.RoleAdmin); err != nil {
		return false, err
	}
	return e.mutateMembership(ctx, actor, models.ActionRemoveCourseFromCohort, cohortID,
		models.MembershipChangeDetails{CourseID: idPtr(courseID)},
		func(ctx context.Context) (bool, error) { return e.Cohorts.RemoveCourse(ctx, cohortID, courseID) })
}

// AddInstructorToCohort assigns an instructor to a cohort.
func (e *Engine) AddInstructorToCohort(ctx context.Context, actor auth.Actor, cohortID, userID primitive.ObjectID) (bool, error) {
	if err := requireRole(actor, "change cohort instructors", models.RoleAdmin); err != nil {
		return false, err
	}
	u, err := e.Users.GetByID(ctx, userID)
	if err != nil {
		return false, classify("user", "load user", err)
	}
	if u.Role != models.RoleInstructor {
		return false, apperr.Invalid("userId", "user is not an instructor")
	}
	return e.mutateMembership(ctx, actor, models.ActionAddInstructorToCohort, cohortID,
		models.MembershipChangeDetails{UserID: idPtr(userID)},
		func(ctx context.Context) (bool, error) { return e.Cohorts.AddInstructor(ctx, cohortID, userID) })
}

// RemoveInstructorFromCohort unassigns an instructor from a cohort.
func (e *Engine) RemoveInstructorFromCohort(ctx context.Context, actor auth.Actor, cohortID, userID primitive.ObjectID) (bool, error) {
	if err := requireRole(actor, "change cohort instructors", models.RoleAdmin); err != nil {
		return false, err
	}
	return e.mutateMembership(ctx, actor, models.ActionRemoveInstructorFromCohort, cohortID,
		models.MembershipChangeDetails{UserID: idPtr(userID)},
		func(ctx context.Context) (bool, error) { return e.Cohorts.RemoveInstructor(ctx, cohortID, userID) })
}

// mutateMembership runs op and its audit entry in one transaction. No-ops
// are audited too so the log shows every admin request.
func (e *Engine) mutateMembership(ctx context.Context, actor auth.Actor, action string, cohortID primitive.ObjectID,
	details models.MembershipChangeDetails, op func(context.Context) (bool, error)) (bool, error) {
	var changed bool
	err := e.Tx.Run(ctx, func(ctx context.Context) error {
		ok, err := op(ctx)
		if err != nil {
			return classify("cohort", action, err)
		}
		details.Changed = ok
		if _, err := e.Audit.Record(ctx, auditlog.Entry{
			ActorID:      actor.ID,
			ActorName:    actor.Name,
			Action:       action,
			TargetUser:   details.UserID,
			TargetCohort: idPtr(cohortID),
			Details:      models.AuditDetails{Membership: &details},
		}); err != nil {
			return apperr.Store("record "+action, err)
		}
		changed = ok
		return nil
	})
	return changed, err
}
