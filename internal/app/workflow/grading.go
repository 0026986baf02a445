package workflow

import (
	"context"
	"errors"
	"fmt"

	submissionstore "github.com/dalemusser/dexterhub/internal/app/store/submissions"
	"github.com/dalemusser/dexterhub/internal/app/system/apperr"
	"github.com/dalemusser/dexterhub/internal/app/system/auditlog"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DefaultMaxScore bounds scores on lessons whose task sets no maximum.
const DefaultMaxScore = 100

// GradeInput is a grader's score and feedback.
type GradeInput struct {
	Score    int
	Feedback string
}

// GradeSubmission grades a submitted task once and adds the score to the
// learner's course progress.
func (e *Engine) GradeSubmission(ctx context.Context, actor auth.Actor, id primitive.ObjectID, in GradeInput) (*models.Submission, error) {
	if err := requireRole(actor, "grade submissions", models.RoleInstructor, models.RoleAdmin); err != nil {
		return nil, err
	}
	sub, err := e.Submissions.GetByID(ctx, id)
	if err != nil {
		return nil, classify("submission", "load submission", err)
	}
	course, err := e.Courses.GetByID(ctx, sub.CourseID)
	if err != nil {
		return nil, classify("course", "load course", err)
	}
	if !actor.IsAdmin() {
		ok, err := e.teaches(ctx, actor.ID, course, sub.LearnerID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.Unauthorized("instructors may only grade submissions for their own learners")
		}
	}
	if sub.Status == models.SubmissionGraded {
		return nil, apperr.InvalidTransition("submission", sub.Status)
	}

	maxScore := DefaultMaxScore
	if lesson, ok := course.FindLesson(sub.LessonID); ok && lesson.Task != nil && lesson.Task.MaxScore > 0 {
		maxScore = lesson.Task.MaxScore
	}
	in.Feedback = cleanText(in.Feedback)
	var c apperr.Collector
	c.Check(in.Score >= 0 && in.Score <= maxScore, "score", fmt.Sprintf("must be between 0 and %d", maxScore))
	c.Check(within(in.Feedback, maxDetailsLen), "feedback", tooLong(maxDetailsLen))
	if err := c.Err(); err != nil {
		return nil, err
	}

	var out *models.Submission
	err = e.Tx.Run(ctx, func(ctx context.Context) error {
		graded, err := e.Submissions.Grade(ctx, id, in.Score, in.Feedback, actor.ID)
		if errors.Is(err, submissionstore.ErrAlreadyGraded) {
			return apperr.InvalidTransition("submission", models.SubmissionGraded)
		}
		if err != nil {
			return classify("submission", "grade submission", err)
		}
		// A learner removed from the course keeps the grade without progress.
		if err := e.Progress.AddScore(ctx, graded.LearnerID, graded.CourseID, in.Score); err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.Store("add score to progress", err)
		}
		if _, err := e.Audit.Record(ctx, auditlog.Entry{
			ActorID:    actor.ID,
			ActorName:  actor.Name,
			Action:     models.ActionGradeSubmission,
			TargetUser: idPtr(graded.LearnerID),
			Details: models.AuditDetails{Grading: &models.GradingDetails{
				SubmissionID: graded.ID,
				CourseID:     graded.CourseID,
				LessonID:     graded.LessonID,
				Score:        in.Score,
			}},
		}); err != nil {
			return apperr.Store("record grading", err)
		}
		out = graded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// teaches reports whether instructorID teaches the course directly or
// teaches a cohort that offers the course and contains the learner.
func (e *Engine) teaches(ctx context.Context, instructorID primitive.ObjectID, course *models.Course, learnerID primitive.ObjectID) (bool, error) {
	if course.HasInstructor(instructorID) {
		return true, nil
	}
	ids, err := e.Cohorts.IDsForInstructor(ctx, instructorID)
	if err != nil {
		return false, apperr.Store("load instructor cohorts", err)
	}
	for _, id := range ids {
		cohort, err := e.Cohorts.GetByID(ctx, id)
		if errors.Is(err, mongo.ErrNoDocuments) {
			continue
		}
		if err != nil {
			return false, apperr.Store("load cohort", err)
		}
		if cohort.HasCourse(course.ID) && cohort.HasLearner(learnerID) {
			return true, nil
		}
	}
	return false, nil
}

// CourseSubmissions lists a course's submissions with the given status (all
// when empty). Instructors see courses they teach directly or through a
// cohort that offers the course.
func (e *Engine) CourseSubmissions(ctx context.Context, actor auth.Actor, courseID primitive.ObjectID, status string) ([]models.Submission, error) {
	if err := requireRole(actor, "view course submissions", models.RoleInstructor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if status != "" && status != models.SubmissionSubmitted && status != models.SubmissionGraded {
		return nil, apperr.Invalid("status", "must be submitted or graded")
	}
	course, err := e.Courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, classify("course", "load course", err)
	}
	if !actor.IsAdmin() && !course.HasInstructor(actor.ID) {
		ok, err := e.teachesCohortOffering(ctx, actor.ID, course.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.Unauthorized("instructors may only view submissions for courses they teach")
		}
	}
	subs, err := e.Submissions.ListByCourse(ctx, courseID, status)
	if err != nil {
		return nil, apperr.Store("list course submissions", err)
	}
	return subs, nil
}

func (e *Engine) teachesCohortOffering(ctx context.Context, instructorID, courseID primitive.ObjectID) (bool, error) {
	ids, err := e.Cohorts.IDsForInstructor(ctx, instructorID)
	if err != nil {
		return false, apperr.Store("load instructor cohorts", err)
	}
	for _, id := range ids {
		cohort, err := e.Cohorts.GetByID(ctx, id)
		if errors.Is(err, mongo.ErrNoDocuments) {
			continue
		}
		if err != nil {
			return false, apperr.Store("load cohort", err)
		}
		if cohort.HasCourse(courseID) {
			return true, nil
		}
	}
	return false, nil
}
