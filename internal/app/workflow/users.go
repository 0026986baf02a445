package workflow

import (
	"context"

	"github.com/dalemusser/dexterhub/internal/app/system/apperr"
	"github.com/dalemusser/dexterhub/internal/app/system/auditlog"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/app/system/normalize"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChangeRole sets a user's role. Admins manage learners and instructors;
// only super-admins grant or revoke the admin roles. Nobody changes their
// own role.
func (e *Engine) ChangeRole(ctx context.Context, actor auth.Actor, userID primitive.ObjectID, role string) (*models.User, error) {
	if err := requireRole(actor, "change roles", models.RoleAdmin); err != nil {
		return nil, err
	}
	role = normalize.Role(role)
	if !models.ValidRole(role) {
		return nil, apperr.Invalid("role", "must be learner, instructor, admin or super-admin")
	}
	target, err := e.manageable(ctx, actor, userID, "role")
	if err != nil {
		return nil, err
	}
	if models.IsAdminRole(role) && !actor.IsSuperAdmin() {
		return nil, apperr.Unauthorized("only super-admins may grant %s", role)
	}
	if target.Role == role {
		return target, nil
	}
	return e.setUserField(ctx, actor, target, "role", role, e.Users.SetRole)
}

// ChangeStatus enables or disables a user.
func (e *Engine) ChangeStatus(ctx context.Context, actor auth.Actor, userID primitive.ObjectID, status string) (*models.User, error) {
	if err := requireRole(actor, "change user status", models.RoleAdmin); err != nil {
		return nil, err
	}
	status = normalize.Status(status)
	if status != models.UserActive && status != models.UserDisabled {
		return nil, apperr.Invalid("status", "must be active or disabled")
	}
	target, err := e.manageable(ctx, actor, userID, "status")
	if err != nil {
		return nil, err
	}
	if target.Status == status {
		return target, nil
	}
	return e.setUserField(ctx, actor, target, "status", status, e.Users.SetStatus)
}

// manageable loads the target user and checks the actor may change it.
func (e *Engine) manageable(ctx context.Context, actor auth.Actor, userID primitive.ObjectID, field string) (*models.User, error) {
	if userID == actor.ID {
		return nil, apperr.Unauthorized("you may not change your own %s", field)
	}
	target, err := e.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, classify("user", "load user", err)
	}
	if models.IsAdminRole(target.Role) && !actor.IsSuperAdmin() {
		return nil, apperr.Unauthorized("only super-admins may change an administrator's %s", field)
	}
	return target, nil
}

type userSetter func(ctx context.Context, id primitive.ObjectID, value string) (*models.User, error)

func (e *Engine) setUserField(ctx context.Context, actor auth.Actor, target *models.User, field, value string, set userSetter) (*models.User, error) {
	action := models.ActionChangeRole
	if field == "status" {
		action = models.ActionChangeUserStatus
	}

	var out *models.User
	err := e.Tx.Run(ctx, func(ctx context.Context) error {
		before, err := set(ctx, target.ID, value)
		if err != nil {
			return classify("user", action, err)
		}
		from := before.Role
		after := *before
		if field == "status" {
			from = before.Status
			after.Status = value
		} else {
			after.Role = value
		}
		if _, err := e.Audit.Record(ctx, auditlog.Entry{
			ActorID:    actor.ID,
			ActorName:  actor.Name,
			Action:     action,
			TargetUser: idPtr(target.ID),
			Details: models.AuditDetails{User: &models.UserChangeDetails{
				Field: field,
				From:  from,
				To:    value,
			}},
		}); err != nil {
			return apperr.Store("record "+action, err)
		}
		out = &after
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
