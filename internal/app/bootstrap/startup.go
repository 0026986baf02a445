// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	userstore "github.com/dalemusser/dexterhub/internal/app/store/users"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/app/system/normalize"
	"github.com/dalemusser/dexterhub/internal/app/system/timeouts"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs once after schema setup and before the handler is built.
// It applies timeout overrides and makes sure the configured super-admin
// exists.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Ping:   appCfg.TimeoutPing,
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})

	if appCfg.SuperAdminEmail == "" {
		return nil
	}
	return ensureSuperAdmin(ctx, deps.MongoDatabase, appCfg.SuperAdminEmail, appCfg.SuperAdminPassword, logger)
}

// ensureSuperAdmin promotes the account with email to super-admin, or
// creates it when password is set. An existing account keeps its password.
func ensureSuperAdmin(ctx context.Context, db *mongo.Database, email, password string, logger *zap.Logger) error {
	users := userstore.New(db)
	email = normalize.Email(email)

	u, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.Role == models.RoleSuperAdmin {
			return nil
		}
		if _, err := users.SetRole(ctx, u.ID, models.RoleSuperAdmin); err != nil {
			return fmt.Errorf("promote super-admin: %w", err)
		}
		logger.Info("promoted user to super-admin", zap.String("email", email), zap.String("previous_role", u.Role))
		return nil
	case !errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("look up super-admin: %w", err)
	}

	if password == "" {
		logger.Warn("superadmin_email has no account and superadmin_password is blank; not creating it",
			zap.String("email", email))
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash super-admin password: %w", err)
	}
	created, err := users.Create(ctx, models.User{
		FullName:     "Super Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleSuperAdmin,
	})
	if err != nil {
		return fmt.Errorf("create super-admin: %w", err)
	}
	logger.Info("created super-admin", zap.String("email", email), zap.String("id", created.ID.Hex()))
	return nil
}
