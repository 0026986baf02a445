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

// AppealInput is a learner's appeal.
type AppealInput struct {
	Subject string
	Details string
}

// FileAppeal records a pending appeal by the actor.
func (e *Engine) FileAppeal(ctx context.Context, actor auth.Actor, in AppealInput) (models.Appeal, error) {
	if err := requireRole(actor, "file appeals", models.RoleLearner); err != nil {
		return models.Appeal{}, err
	}
	in.Subject = cleanText(in.Subject)
	in.Details = cleanText(in.Details)
	var c apperr.Collector
	c.Check(in.Subject != "", "subject", requiredText)
	c.Check(within(in.Subject, maxSubjectLen), "subject", tooLong(maxSubjectLen))
	c.Check(in.Details != "", "details", requiredText)
	c.Check(within(in.Details, maxDetailsLen), "details", tooLong(maxDetailsLen))
	if err := c.Err(); err != nil {
		return models.Appeal{}, err
	}

	a, err := e.Appeals.Create(ctx, models.Appeal{
		LearnerID: actor.ID,
		Subject:   in.Subject,
		Details:   in.Details,
	})
	if err != nil {
		return models.Appeal{}, apperr.Store("create appeal", err)
	}
	return a, nil
}

// ListAppeals lists appeals with the given status (all when empty).
func (e *Engine) ListAppeals(ctx context.Context, actor auth.Actor, status string) ([]models.Appeal, error) {
	if err := requireRole(actor, "list appeals", models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validStatusFilter(status); err != nil {
		return nil, err
	}
	out, err := e.Appeals.List(ctx, status)
	if err != nil {
		return nil, apperr.Store("list appeals", err)
	}
	return out, nil
}

// MyAppeals lists the actor's own appeals.
func (e *Engine) MyAppeals(ctx context.Context, actor auth.Actor) ([]models.Appeal, error) {
	if err := requireRole(actor, "list appeals", models.RoleLearner); err != nil {
		return nil, err
	}
	out, err := e.Appeals.ListByLearner(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Store("list my appeals", err)
	}
	return out, nil
}

// ReviewAppeal approves or rejects a pending appeal.
func (e *Engine) ReviewAppeal(ctx context.Context, actor auth.Actor, id primitive.ObjectID, in ReviewInput) (*models.Appeal, error) {
	if err := requireRole(actor, "review appeals", models.RoleAdmin); err != nil {
		return nil, err
	}
	in, err := in.clean()
	if err != nil {
		return nil, err
	}

	var out *models.Appeal
	err = e.Tx.Run(ctx, func(ctx context.Context) error {
		a, err := e.Appeals.Decide(ctx, id, in.decision(actor.ID))
		if err != nil {
			return classify("appeal", "decide appeal", err)
		}
		if _, err := e.Audit.Record(ctx, auditlog.Entry{
			ActorID:    actor.ID,
			ActorName:  actor.Name,
			Action:     reviewAction(in.Decision, models.ActionApproveAppeal, models.ActionRejectAppeal),
			TargetUser: idPtr(a.LearnerID),
			Details: models.AuditDetails{Appeal: &models.AppealReviewDetails{
				AppealID: a.ID,
				Subject:  a.Subject,
				Decision: in.Decision,
				Note:     in.Note,
			}},
		}); err != nil {
			return apperr.Store("record appeal review", err)
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.Log.Info("appeal reviewed",
		zap.String("appeal_id", id.Hex()),
		zap.String("decision", string(in.Decision)),
		zap.String("reviewer_id", actor.ID.Hex()))
	return out, nil
}
