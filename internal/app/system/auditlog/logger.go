// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/dexterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Mirror modes.
const (
	MirrorAll = "all" // MongoDB + zap
	MirrorDB  = "db"  // MongoDB only
)

// Appender persists audit entries. The audit store implements it.
type Appender interface {
	Append(ctx context.Context, entry models.AuditLog) (models.AuditLog, error)
}

// Config holds audit logging configuration.
type Config struct {
	// Mirror is "all" or "db". Entries are always written to MongoDB; "all"
	// also emits them as structured log lines.
	Mirror string
}

// Entry is what callers record.
type Entry struct {
	ActorID      primitive.ObjectID
	ActorName    string
	Action       string
	TargetUser   *primitive.ObjectID
	TargetCohort *primitive.ObjectID
	Details      models.AuditDetails
}

// Logger validates and records audit entries.
type Logger struct {
	store  Appender
	zapLog *zap.Logger
	config Config
	now    func() time.Time
}

// New creates a Logger.
func New(store Appender, zapLog *zap.Logger, config Config) *Logger {
	if config.Mirror == "" {
		config.Mirror = MirrorAll
	}
	return &Logger{store: store, zapLog: zapLog, config: config, now: time.Now}
}

var errNoActor = errors.New("audit entry needs an actor")

// Record validates e and appends it. Unlike request logging, a failed append
// is returned to the caller: privileged actions must not succeed silently
// without their audit entry.
func (l *Logger) Record(ctx context.Context, e Entry) (models.AuditLog, error) {
	if e.ActorID.IsZero() {
		return models.AuditLog{}, errNoActor
	}
	if e.Action == "" {
		return models.AuditLog{}, errors.New("audit entry needs an action")
	}
	actionType, ok := models.ActionTypeOf(e.Action)
	if !ok {
		return models.AuditLog{}, fmt.Errorf("unknown audit action %q", e.Action)
	}
	if err := e.Details.Validate(e.Action); err != nil {
		return models.AuditLog{}, err
	}

	saved, err := l.store.Append(ctx, models.AuditLog{
		ID:           primitive.NewObjectID(),
		ActorID:      e.ActorID,
		ActorName:    e.ActorName,
		Action:       e.Action,
		ActionType:   actionType,
		TargetUser:   e.TargetUser,
		TargetCohort: e.TargetCohort,
		Details:      e.Details,
		Timestamp:    l.now().UTC(),
	})
	if err != nil {
		l.zapLog.Error("failed to store audit entry", zap.Error(err), zap.String("action", e.Action))
		return models.AuditLog{}, err
	}
	if l.config.Mirror == MirrorAll {
		l.logToZap(saved)
	}
	return saved, nil
}

func (l *Logger) logToZap(e models.AuditLog) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("audit_id", e.ID.Hex()),
		zap.String("action", e.Action),
		zap.String("action_type", e.ActionType),
		zap.String("actor_id", e.ActorID.Hex()),
		zap.String("actor_name", e.ActorName),
	}
	if e.TargetUser != nil {
		fields = append(fields, zap.String("target_user", e.TargetUser.Hex()))
	}
	if e.TargetCohort != nil {
		fields = append(fields, zap.String("target_cohort", e.TargetCohort.Hex()))
	}
	fields = append(fields, zap.Any("details", e.Details))
	l.zapLog.Info("audit event", fields...)
}

// SetClock replaces the time source. Tests only.
func (l *Logger) SetClock(now func() time.Time) { l.now = now }
