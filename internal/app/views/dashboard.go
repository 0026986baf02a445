package views

import (
	"sort"
	"time"

	"github.com/dalemusser/dexterhub/internal/domain/models"
)

// ReviewCounts tallies review records by status.
type ReviewCounts struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

func (c *ReviewCounts) add(status string) {
	switch status {
	case models.StatusPending:
		c.Pending++
	case models.StatusApproved:
		c.Approved++
	case models.StatusRejected:
		c.Rejected++
	}
}

// CountApplications tallies applications by status.
func CountApplications(apps []models.EnrollmentRequest) ReviewCounts {
	var c ReviewCounts
	for _, a := range apps {
		c.add(a.Status)
	}
	return c
}

// CountDropRecommendations tallies recommendations by status.
func CountDropRecommendations(recs []models.DropRecommendation) ReviewCounts {
	var c ReviewCounts
	for _, r := range recs {
		c.add(r.Status)
	}
	return c
}

// CountAppeals tallies appeals by status.
func CountAppeals(appeals []models.Appeal) ReviewCounts {
	var c ReviewCounts
	for _, a := range appeals {
		c.add(a.Status)
	}
	return c
}

// ProgressSummary tallies a learner's course progress.
type ProgressSummary struct {
	NotStarted int `json:"notStarted"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	TotalScore int `json:"totalScore"`
}

// SummarizeProgress tallies progress records by status and sums scores.
func SummarizeProgress(ps []models.LearnerProgress) ProgressSummary {
	var s ProgressSummary
	for _, p := range ps {
		switch p.Status {
		case models.ProgressCompleted:
			s.Completed++
		case models.ProgressInProgress:
			s.InProgress++
		default:
			s.NotStarted++
		}
		s.TotalScore += p.Score
	}
	return s
}

// UpcomingEvents returns events that have not ended by now, soonest first,
// capped at limit (no cap when limit <= 0).
func UpcomingEvents(events []models.Event, now time.Time, limit int) []models.Event {
	out := Filter(events, func(e models.Event) bool { return !e.EndsAt.Before(now) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// LearnerDashboard is the learner's home view.
type LearnerDashboard struct {
	Cohorts      []models.Cohort          `json:"cohorts"`
	Progress     []models.LearnerProgress `json:"progress"`
	Summary      ProgressSummary          `json:"summary"`
	Applications ReviewCounts             `json:"applications"`
	Appeals      ReviewCounts             `json:"appeals"`
	Events       []models.Event           `json:"events"`
}

// LearnerData is what a handler fetches for a learner dashboard.
type LearnerData struct {
	Cohorts      []models.Cohort
	Progress     []models.LearnerProgress
	Applications []models.EnrollmentRequest
	Appeals      []models.Appeal
	Events       []models.Event
}

// EventLimit caps the events shown on a dashboard.
const EventLimit = 5

// NewLearnerDashboard assembles the learner view.
func NewLearnerDashboard(d LearnerData, now time.Time) LearnerDashboard {
	return LearnerDashboard{
		Cohorts:      nonNil(d.Cohorts),
		Progress:     nonNil(d.Progress),
		Summary:      SummarizeProgress(d.Progress),
		Applications: CountApplications(d.Applications),
		Appeals:      CountAppeals(d.Appeals),
		Events:       UpcomingEvents(d.Events, now, EventLimit),
	}
}

// CohortRow is one cohort on the instructor dashboard.
type CohortRow struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Learners int    `json:"learners"`
	Courses  int    `json:"courses"`
}

// InstructorDashboard is the instructor's home view.
type InstructorDashboard struct {
	Cohorts             []CohortRow    `json:"cohorts"`
	PendingApplications int            `json:"pendingApplications"`
	DropRecommendations ReviewCounts   `json:"dropRecommendations"`
	Events              []models.Event `json:"events"`
}

// InstructorData is what a handler fetches for an instructor dashboard.
type InstructorData struct {
	Cohorts             []models.Cohort
	PendingApplications []models.EnrollmentRequest
	DropRecommendations []models.DropRecommendation
	Events              []models.Event
}

// NewInstructorDashboard assembles the instructor view.
func NewInstructorDashboard(d InstructorData, now time.Time) InstructorDashboard {
	rows := make([]CohortRow, 0, len(d.Cohorts))
	for _, c := range d.Cohorts {
		rows = append(rows, CohortRow{
			ID:       c.ID.Hex(),
			Name:     c.Name,
			Status:   c.Status,
			Learners: len(c.LearnerIDs),
			Courses:  len(c.CourseIDs),
		})
	}
	return InstructorDashboard{
		Cohorts:             rows,
		PendingApplications: CountApplications(d.PendingApplications).Pending,
		DropRecommendations: CountDropRecommendations(d.DropRecommendations),
		Events:              UpcomingEvents(d.Events, now, EventLimit),
	}
}

// AdminDashboard is the admin's home view.
type AdminDashboard struct {
	UsersByRole         map[string]int64  `json:"usersByRole"`
	PendingApplications int               `json:"pendingApplications"`
	DropRecommendations ReviewCounts      `json:"dropRecommendations"`
	Appeals             ReviewCounts      `json:"appeals"`
	RecentAudit         []models.AuditLog `json:"recentAudit"`
}

// AdminData is what a handler fetches for an admin dashboard.
type AdminData struct {
	UsersByRole         map[string]int64
	PendingApplications []models.EnrollmentRequest
	DropRecommendations []models.DropRecommendation
	Appeals             []models.Appeal
	RecentAudit         []models.AuditLog
}

// NewAdminDashboard assembles the admin view. Every role appears in
// UsersByRole, with zero for roles nobody holds.
func NewAdminDashboard(d AdminData) AdminDashboard {
	byRole := map[string]int64{
		models.RoleLearner:    0,
		models.RoleInstructor: 0,
		models.RoleAdmin:      0,
		models.RoleSuperAdmin: 0,
	}
	for role, n := range d.UsersByRole {
		byRole[role] = n
	}
	return AdminDashboard{
		UsersByRole:         byRole,
		PendingApplications: CountApplications(d.PendingApplications).Pending,
		DropRecommendations: CountDropRecommendations(d.DropRecommendations),
		Appeals:             CountAppeals(d.Appeals),
		RecentAudit:         nonNil(d.RecentAudit),
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
