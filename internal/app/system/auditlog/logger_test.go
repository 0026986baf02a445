package auditlog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/dexterhub/internal/app/system/auditlog"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type memAppender struct {
	entries []models.AuditLog
	err     error
}

func (m *memAppender) Append(_ context.Context, e models.AuditLog) (models.AuditLog, error) {
	if m.err != nil {
		return models.AuditLog{}, m.err
	}
	m.entries = append(m.entries, e)
	return e, nil
}

func validEntry() auditlog.Entry {
	learner := primitive.NewObjectID()
	return auditlog.Entry{
		ActorID:    primitive.NewObjectID(),
		ActorName:  "A1",
		Action:     models.ActionApproveApplication,
		TargetUser: &learner,
		Details: models.AuditDetails{Application: &models.ApplicationReviewDetails{
			ApplicationID: primitive.NewObjectID(),
			CourseID:      primitive.NewObjectID(),
			Decision:      models.DecisionApprove,
		}},
	}
}

func TestRecord_Valid(t *testing.T) {
	store := &memAppender{}
	l := auditlog.New(store, zap.NewNop(), auditlog.Config{Mirror: auditlog.MirrorDB})

	e := validEntry()
	saved, err := l.Record(context.Background(), e)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(store.entries) != 1 {
		t.Fatalf("stored %d entries, want 1", len(store.entries))
	}
	if saved.ActionType != models.ActionTypeApplication {
		t.Errorf("action type = %q", saved.ActionType)
	}
	if saved.Timestamp.IsZero() || saved.ID.IsZero() {
		t.Error("expected id and timestamp")
	}
	if *saved.TargetUser != *e.TargetUser {
		t.Error("target user not carried")
	}
}

func TestRecord_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*auditlog.Entry)
	}{
		{"missing actor", func(e *auditlog.Entry) { e.ActorID = primitive.NilObjectID }},
		{"empty action", func(e *auditlog.Entry) { e.Action = "" }},
		{"unknown action", func(e *auditlog.Entry) { e.Action = "launchRockets" }},
		{"details of wrong kind", func(e *auditlog.Entry) { e.Action = models.ActionRejectAppeal }},
		{"no details", func(e *auditlog.Entry) { e.Details = models.AuditDetails{} }},
		{"two variants", func(e *auditlog.Entry) {
			e.Details.Appeal = &models.AppealReviewDetails{AppealID: primitive.NewObjectID()}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memAppender{}
			l := auditlog.New(store, zap.NewNop(), auditlog.Config{})
			e := validEntry()
			tt.mutate(&e)
			if _, err := l.Record(context.Background(), e); err == nil {
				t.Fatal("expected error")
			}
			if len(store.entries) != 0 {
				t.Error("invalid entry must not be stored")
			}
		})
	}
}

func TestRecord_StoreFailurePropagates(t *testing.T) {
	boom := errors.New("disk full")
	l := auditlog.New(&memAppender{err: boom}, zap.NewNop(), auditlog.Config{})
	if _, err := l.Record(context.Background(), validEntry()); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestRecord_MirrorModes(t *testing.T) {
	tests := []struct {
		mirror string
		want   int
	}{
		{auditlog.MirrorAll, 1},
		{auditlog.MirrorDB, 0},
	}
	for _, tt := range tests {
		t.Run(tt.mirror, func(t *testing.T) {
			core, logs := observer.New(zap.InfoLevel)
			l := auditlog.New(&memAppender{}, zap.New(core), auditlog.Config{Mirror: tt.mirror})
			if _, err := l.Record(context.Background(), validEntry()); err != nil {
				t.Fatal(err)
			}
			got := logs.FilterMessage("audit event").Len()
			if got != tt.want {
				t.Errorf("zap audit lines = %d, want %d", got, tt.want)
			}
		})
	}
}
