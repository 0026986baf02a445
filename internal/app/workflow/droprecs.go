package workflow

import (
	"context"

	"github.com/dalemusser/dexterhub/internal/app/system/apperr"
	"github.com/dalemusser/dexterhub/internal/app/system/auditlog"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DropInput is an instructor's recommendation to drop a learner.
type DropInput struct {
	LearnerID primitive.ObjectID
	CohortID  *primitive.ObjectID
	Reason    string
}

// RecommendDrop files a pending drop recommendation by the actor. When a
// cohort is named the actor must teach it and the learner must belong to it.
func (e *Engine) RecommendDrop(ctx context.Context, actor auth.Actor, in DropInput) (models.DropRecommendation, error) {
	if err := requireRole(actor, "recommend drops", models.RoleInstructor); err != nil {
		return models.DropRecommendation{}, err
	}
	in.Reason = cleanText(in.Reason)
	var c apperr.Collector
	c.Check(!in.LearnerID.IsZero(), "learnerId", requiredText)
	c.Check(in.Reason != "", "reason", requiredText)
	c.Check(within(in.Reason, maxReasonLen), "reason", tooLong(maxReasonLen))
	if err := c.Err(); err != nil {
		return models.DropRecommendation{}, err
	}

	learner, err := e.Users.GetByID(ctx, in.LearnerID)
	if err != nil {
		return models.DropRecommendation{}, classify("learner", "load learner", err)
	}
	if learner.Role != models.RoleLearner {
		return models.DropRecommendation{}, apperr.Invalid("learnerId", "user is not a learner")
	}
	if in.CohortID != nil {
		cohort, err := e.Cohorts.GetByID(ctx, *in.CohortID)
		if err != nil {
			return models.DropRecommendation{}, classify("cohort", "load cohort", err)
		}
		if !cohort.HasInstructor(actor.ID) {
			return models.DropRecommendation{}, apperr.Unauthorized("instructors may only recommend drops in their own cohorts")
		}
		if !cohort.HasLearner(learner.ID) {
			return models.DropRecommendation{}, apperr.Invalid("learnerId", "learner is not in this cohort")
		}
	}

	rec, err := e.DropRecommendations.Create(ctx, models.DropRecommendation{
		LearnerID:    learner.ID,
		InstructorID: actor.ID,
		CohortID:     in.CohortID,
		Reason:       in.Reason,
	})
	if err != nil {
		return models.DropRecommendation{}, apperr.Store("create drop recommendation", err)
	}
	return rec, nil
}

// ListDropRecommendations lists recommendations with the given status (all when
// empty) for admins.
func (e *Engine) ListDropRecommendations(ctx context.Context, actor auth.Actor, status string) ([]models.DropRecommendation, error) {
	if err := requireRole(actor, "list drop recommendations", models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validStatusFilter(status); err != nil {
		return nil, err
	}
	recs, err := e.DropRecommendations.List(ctx, status)
	if err != nil {
		return nil, apperr.Store("list drop recommendations", err)
	}
	return recs, nil
}

// MyDropRecommendations lists the recommendations the actor created.
func (e *Engine) MyDropRecommendations(ctx context.Context, actor auth.Actor) ([]models.DropRecommendation, error) {
	if err := requireRole(actor, "list drop recommendations", models.RoleInstructor); err != nil {
		return nil, err
	}
	recs, err := e.DropRecommendations.ListByInstructor(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Store("list my drop recommendations", err)
	}
	return recs, nil
}

// ReviewDropRecommendation approves or rejects a pending recommendation.
// Only the status changes; removing the learner is a separate admin action.
func (e *Engine) ReviewDropRecommendation(ctx context.Context, actor auth.Actor, id primitive.ObjectID, in ReviewInput) (*models.DropRecommendation, error) {
	if err := requireRole(actor, "review drop recommendations", models.RoleAdmin); err != nil {
		return nil, err
	}
	in, err := in.clean()
	if err != nil {
		return nil, err
	}

	var out *models.DropRecommendation
	err = e.Tx.Run(ctx, func(ctx context.Context) error {
		rec, err := e.DropRecommendations.Decide(ctx, id, in.decision(actor.ID))
		if err != nil {
			return classify("drop recommendation", "decide drop recommendation", err)
		}
		if _, err := e.Audit.Record(ctx, auditlog.Entry{
			ActorID:      actor.ID,
			ActorName:    actor.Name,
			Action:       reviewAction(in.Decision, models.ActionApproveDropRecommendation, models.ActionRejectDropRecommendation),
			TargetUser:   idPtr(rec.LearnerID),
			TargetCohort: rec.CohortID,
			Details: models.AuditDetails{DropRecommendation: &models.DropReviewDetails{
				RecommendationID: rec.ID,
				InstructorID:     rec.InstructorID,
				Reason:           rec.Reason,
				Decision:         in.Decision,
				Note:             in.Note,
			}},
		}); err != nil {
			return apperr.Store("record drop recommendation review", err)
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.Log.Info("drop recommendation reviewed",
		zap.String("recommendation_id", id.Hex()),
		zap.String("decision", string(in.Decision)),
		zap.String("reviewer_id", actor.ID.Hex()))
	return out, nil
}
