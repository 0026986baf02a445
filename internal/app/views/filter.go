// internal/app/views/filter.go
//
// Package views holds the pure functions behind list filters and dashboard
// view models. Nothing here touches the database; handlers fetch, then
// narrow and summarize with these helpers.
package views

import (
	"strings"

	"github.com/dalemusser/dexterhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

// Filter returns the items for which keep reports true, preserving order.
// The result is never nil so it encodes as a JSON array.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// Matches reports whether q occurs in any of fields after folding both
// with text.Fold. An empty q matches everything.
func Matches(q string, fields ...string) bool {
	q = text.Fold(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(text.Fold(f), q) {
			return true
		}
	}
	return false
}

// ReviewFilter narrows review records by free text and exact status.
type ReviewFilter struct {
	Query  string
	Status string
}

func (f ReviewFilter) keep(r models.Review, fields ...string) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return Matches(f.Query, fields...)
}

// FilterApplications narrows applications by status and note text.
func FilterApplications(apps []models.EnrollmentRequest, f ReviewFilter) []models.EnrollmentRequest {
	return Filter(apps, func(a models.EnrollmentRequest) bool {
		return f.keep(a.Review, a.Note, a.ReviewNote)
	})
}

// FilterDropRecommendations narrows recommendations by status and reason.
func FilterDropRecommendations(recs []models.DropRecommendation, f ReviewFilter) []models.DropRecommendation {
	return Filter(recs, func(d models.DropRecommendation) bool {
		return f.keep(d.Review, d.Reason, d.ReviewNote)
	})
}

// FilterAppeals narrows appeals by status, subject and details.
func FilterAppeals(appeals []models.Appeal, f ReviewFilter) []models.Appeal {
	return Filter(appeals, func(a models.Appeal) bool {
		return f.keep(a.Review, a.Subject, a.Details, a.ReviewNote)
	})
}

// AuditFilter mirrors the audit log read path: actor and action are
// substring matches, action type is exact.
type AuditFilter struct {
	Actor      string
	Action     string
	ActionType string
}

// FilterAuditLogs narrows already-fetched audit entries.
func FilterAuditLogs(entries []models.AuditLog, f AuditFilter) []models.AuditLog {
	return Filter(entries, func(e models.AuditLog) bool {
		if f.ActionType != "" && e.ActionType != f.ActionType {
			return false
		}
		return Matches(f.Actor, e.ActorName) && Matches(f.Action, e.Action)
	})
}

// FilterSubmissions narrows submissions by status.
func FilterSubmissions(subs []models.Submission, status string) []models.Submission {
	return Filter(subs, func(s models.Submission) bool {
		return status == "" || s.Status == status
	})
}
