// internal/domain/models/auditlog.go
package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audit actions. Each action maps to exactly one ActionType and one details
// shape (see ActionTypeOf and AuditDetails.Validate).
const (
	ActionApproveApplication        = "approveApplication"
	ActionRejectApplication         = "rejectApplication"
	ActionApproveDropRecommendation = "approveDropRecommendation"
	ActionRejectDropRecommendation  = "rejectDropRecommendation"
	ActionApproveAppeal             = "approveAppeal"
	ActionRejectAppeal              = "rejectAppeal"

	ActionChangeRole       = "changeRole"
	ActionChangeUserStatus = "changeUserStatus"

	ActionCreateCohort               = "createCohort"
	ActionUpdateCohort               = "updateCohort"
	ActionAddCourseToCohort          = "addCourseToCohort"
	ActionRemoveCourseFromCohort     = "removeCourseFromCohort"
	ActionAddInstructorToCohort      = "addInstructorToCohort"
	ActionRemoveInstructorFromCohort = "removeInstructorFromCohort"

	ActionGradeSubmission = "gradeSubmission"
)

// Action types group actions for exact-match filtering.
const (
	ActionTypeApplication        = "application"
	ActionTypeDropRecommendation = "dropRecommendation"
	ActionTypeAppeal             = "appeal"
	ActionTypeUser               = "user"
	ActionTypeCohort             = "cohort"
	ActionTypeMembership         = "membership"
	ActionTypeGrading            = "grading"
)

var actionTypes = map[string]string{
	ActionApproveApplication:         ActionTypeApplication,
	ActionRejectApplication:          ActionTypeApplication,
	ActionApproveDropRecommendation:  ActionTypeDropRecommendation,
	ActionRejectDropRecommendation:   ActionTypeDropRecommendation,
	ActionApproveAppeal:              ActionTypeAppeal,
	ActionRejectAppeal:               ActionTypeAppeal,
	ActionChangeRole:                 ActionTypeUser,
	ActionChangeUserStatus:           ActionTypeUser,
	ActionCreateCohort:               ActionTypeCohort,
	ActionUpdateCohort:               ActionTypeCohort,
	ActionAddCourseToCohort:          ActionTypeMembership,
	ActionRemoveCourseFromCohort:     ActionTypeMembership,
	ActionAddInstructorToCohort:      ActionTypeMembership,
	ActionRemoveInstructorFromCohort: ActionTypeMembership,
	ActionGradeSubmission:            ActionTypeGrading,
}

// ActionTypeOf returns the action type for a known action.
func ActionTypeOf(action string) (string, bool) {
	t, ok := actionTypes[action]
	return t, ok
}

// ActionTypes lists every action type, for filter pickers.
func ActionTypes() []string {
	return []string{
		ActionTypeApplication,
		ActionTypeDropRecommendation,
		ActionTypeAppeal,
		ActionTypeUser,
		ActionTypeCohort,
		ActionTypeMembership,
		ActionTypeGrading,
	}
}

// AuditLog is an append-only record of a privileged action.
type AuditLog struct {
	ID           primitive.ObjectID  `bson:"_id" json:"id"`
	ActorID      primitive.ObjectID  `bson:"actor_id" json:"actorId"`
	ActorName    string              `bson:"actor_name" json:"actorName"`
	ActorNameCI  string              `bson:"actor_name_ci" json:"-"` // text.Fold(ActorName)
	Action       string              `bson:"action" json:"action"`
	ActionType   string              `bson:"action_type" json:"actionType"`
	TargetUser   *primitive.ObjectID `bson:"target_user,omitempty" json:"targetUser,omitempty"`
	TargetCohort *primitive.ObjectID `bson:"target_cohort,omitempty" json:"targetCohort,omitempty"`
	Details      AuditDetails        `bson:"details" json:"details"`
	Timestamp    time.Time           `bson:"timestamp" json:"timestamp"`
}

// AuditDetails is a tagged variant: exactly one field is set, and which one
// is determined by the entry's ActionType.
type AuditDetails struct {
	Application        *ApplicationReviewDetails `bson:"application,omitempty" json:"application,omitempty"`
	DropRecommendation *DropReviewDetails        `bson:"drop_recommendation,omitempty" json:"dropRecommendation,omitempty"`
	Appeal             *AppealReviewDetails      `bson:"appeal,omitempty" json:"appeal,omitempty"`
	User               *UserChangeDetails        `bson:"user,omitempty" json:"user,omitempty"`
	Cohort             *CohortChangeDetails      `bson:"cohort,omitempty" json:"cohort,omitempty"`
	Membership         *MembershipChangeDetails  `bson:"membership,omitempty" json:"membership,omitempty"`
	Grading            *GradingDetails           `bson:"grading,omitempty" json:"grading,omitempty"`
}

// ApplicationReviewDetails snapshots a reviewed enrollment request.
type ApplicationReviewDetails struct {
	ApplicationID primitive.ObjectID `bson:"application_id" json:"applicationId"`
	CourseID      primitive.ObjectID `bson:"course_id" json:"courseId"`
	Decision      Decision           `bson:"decision" json:"decision"`
	Note          string             `bson:"note,omitempty" json:"note,omitempty"`
}

// DropReviewDetails snapshots a reviewed drop recommendation.
type DropReviewDetails struct {
	RecommendationID primitive.ObjectID `bson:"recommendation_id" json:"recommendationId"`
	InstructorID     primitive.ObjectID `bson:"instructor_id" json:"instructorId"`
	Reason           string             `bson:"reason" json:"reason"`
	Decision         Decision           `bson:"decision" json:"decision"`
	Note             string             `bson:"note,omitempty" json:"note,omitempty"`
}

// AppealReviewDetails snapshots a reviewed appeal.
type AppealReviewDetails struct {
	AppealID primitive.ObjectID `bson:"appeal_id" json:"appealId"`
	Subject  string             `bson:"subject" json:"subject"`
	Decision Decision           `bson:"decision" json:"decision"`
	Note     string             `bson:"note,omitempty" json:"note,omitempty"`
}

// UserChangeDetails records a role or status change.
type UserChangeDetails struct {
	Field string `bson:"field" json:"field"` // role | status
	From  string `bson:"from" json:"from"`
	To    string `bson:"to" json:"to"`
}

// CohortChangeDetails records cohort creation or edits.
type CohortChangeDetails struct {
	Name   string `bson:"name" json:"name"`
	Status string `bson:"status" json:"status"`
}

// MembershipChangeDetails records a cohort set mutation. Changed is false
// when the operation was an idempotent no-op.
type MembershipChangeDetails struct {
	CourseID *primitive.ObjectID `bson:"course_id,omitempty" json:"courseId,omitempty"`
	UserID   *primitive.ObjectID `bson:"user_id,omitempty" json:"userId,omitempty"`
	Changed  bool                `bson:"changed" json:"changed"`
}

// GradingDetails records a graded submission.
type GradingDetails struct {
	SubmissionID primitive.ObjectID `bson:"submission_id" json:"submissionId"`
	CourseID     primitive.ObjectID `bson:"course_id" json:"courseId"`
	LessonID     primitive.ObjectID `bson:"lesson_id" json:"lessonId"`
	Score        int                `bson:"score" json:"score"`
}

// kind returns which variant is populated and how many are.
func (d AuditDetails) kind() (string, int) {
	kind, n := "", 0
	set := func(ok bool, k string) {
		if ok {
			kind = k
			n++
		}
	}
	set(d.Application != nil, ActionTypeApplication)
	set(d.DropRecommendation != nil, ActionTypeDropRecommendation)
	set(d.Appeal != nil, ActionTypeAppeal)
	set(d.User != nil, ActionTypeUser)
	set(d.Cohort != nil, ActionTypeCohort)
	set(d.Membership != nil, ActionTypeMembership)
	set(d.Grading != nil, ActionTypeGrading)
	return kind, n
}

// Validate checks that exactly one variant is set and that it matches action.
func (d AuditDetails) Validate(action string) error {
	want, ok := ActionTypeOf(action)
	if !ok {
		return fmt.Errorf("unknown audit action %q", action)
	}
	got, n := d.kind()
	if n != 1 {
		return fmt.Errorf("audit details for %q must set exactly one variant, got %d", action, n)
	}
	if got != want {
		return fmt.Errorf("audit details for %q must be %q, got %q", action, want, got)
	}
	return nil
}
