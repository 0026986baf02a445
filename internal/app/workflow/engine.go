// internal/app/workflow/engine.go
//
// Package workflow runs the role-gated review workflow (enrollment
// applications, drop recommendations, appeals) and the other privileged
// mutations that must leave an audit trail. Every operation takes the
// authenticated actor explicitly; handlers never pass a creator or reviewer
// id from the request body.
package workflow

import (
	"context"
	"errors"

	appealstore "github.com/dalemusser/dexterhub/internal/app/store/appeals"
	cohortstore "github.com/dalemusser/dexterhub/internal/app/store/cohorts"
	coursestore "github.com/dalemusser/dexterhub/internal/app/store/courses"
	droprecstore "github.com/dalemusser/dexterhub/internal/app/store/droprecs"
	enrollmentstore "github.com/dalemusser/dexterhub/internal/app/store/enrollments"
	progressstore "github.com/dalemusser/dexterhub/internal/app/store/progress"
	"github.com/dalemusser/dexterhub/internal/app/store/reviews"
	submissionstore "github.com/dalemusser/dexterhub/internal/app/store/submissions"
	userstore "github.com/dalemusser/dexterhub/internal/app/store/users"
	"github.com/dalemusser/dexterhub/internal/app/system/apperr"
	"github.com/dalemusser/dexterhub/internal/app/system/auditlog"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/app/system/txn"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Applications persists enrollment requests.
type Applications interface {
	Create(ctx context.Context, e models.EnrollmentRequest) (models.EnrollmentRequest, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.EnrollmentRequest, error)
	ListByLearner(ctx context.Context, learnerID primitive.ObjectID) ([]models.EnrollmentRequest, error)
	ListPending(ctx context.Context, cohortIDs []primitive.ObjectID) ([]models.EnrollmentRequest, error)
	Decide(ctx context.Context, id primitive.ObjectID, d reviews.Decision) (*models.EnrollmentRequest, error)
}

// DropRecommendations persists drop recommendations.
type DropRecommendations interface {
	Create(ctx context.Context, d models.DropRecommendation) (models.DropRecommendation, error)
	List(ctx context.Context, status string) ([]models.DropRecommendation, error)
	ListByInstructor(ctx context.Context, instructorID primitive.ObjectID) ([]models.DropRecommendation, error)
	Decide(ctx context.Context, id primitive.ObjectID, d reviews.Decision) (*models.DropRecommendation, error)
}

// Appeals persists appeals.
type Appeals interface {
	Create(ctx context.Context, a models.Appeal) (models.Appeal, error)
	List(ctx context.Context, status string) ([]models.Appeal, error)
	ListByLearner(ctx context.Context, learnerID primitive.ObjectID) ([]models.Appeal, error)
	Decide(ctx context.Context, id primitive.ObjectID, d reviews.Decision) (*models.Appeal, error)
}

// Cohorts persists cohorts and their member sets.
type Cohorts interface {
	Create(ctx context.Context, c models.Cohort) (models.Cohort, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Cohort, error)
	Update(ctx context.Context, id primitive.ObjectID, upd cohortstore.Update) (*models.Cohort, error)
	IDsForInstructor(ctx context.Context, instructorID primitive.ObjectID) ([]primitive.ObjectID, error)
	AddLearner(ctx context.Context, id, learnerID primitive.ObjectID) (bool, error)
	AddCourse(ctx context.Context, id, courseID primitive.ObjectID) (bool, error)
	RemoveCourse(ctx context.Context, id, courseID primitive.ObjectID) (bool, error)
	AddInstructor(ctx context.Context, id, instructorID primitive.ObjectID) (bool, error)
	RemoveInstructor(ctx context.Context, id, instructorID primitive.ObjectID) (bool, error)
}

// Courses reads courses and maintains registrars.
type Courses interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error)
	AddRegistrar(ctx context.Context, courseID, learnerID primitive.ObjectID) (bool, error)
}

// Progress maintains learner progress records.
type Progress interface {
	EnsureForLearner(ctx context.Context, learnerID, courseID, cohortID primitive.ObjectID) (bool, error)
	AddScore(ctx context.Context, learnerID, courseID primitive.ObjectID, delta int) error
}

// Users reads users and changes their role or status. Setters return the
// user as it was before the change.
type Users interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	SetRole(ctx context.Context, id primitive.ObjectID, role string) (*models.User, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.User, error)
}

// Submissions reads and grades submissions.
type Submissions interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Submission, error)
	ListByCourse(ctx context.Context, courseID primitive.ObjectID, status string) ([]models.Submission, error)
	Grade(ctx context.Context, id primitive.ObjectID, score int, feedback string, graderID primitive.ObjectID) (*models.Submission, error)
}

// Auditor records audit entries.
type Auditor interface {
	Record(ctx context.Context, e auditlog.Entry) (models.AuditLog, error)
}

// Transactor runs fn so that its writes commit or roll back together.
type Transactor interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// Engine holds the collaborators of every workflow operation.
type Engine struct {
	Applications        Applications
	DropRecommendations DropRecommendations
	Appeals             Appeals
	Cohorts             Cohorts
	Courses             Courses
	Progress            Progress
	Users               Users
	Submissions         Submissions
	Audit               Auditor
	Tx                  Transactor
	Log                 *zap.Logger
}

// NewMongo wires an Engine to the MongoDB stores in db.
func NewMongo(db *mongo.Database, audit Auditor, logger *zap.Logger) *Engine {
	return &Engine{
		Applications:        enrollmentstore.New(db),
		DropRecommendations: droprecstore.New(db),
		Appeals:             appealstore.New(db),
		Cohorts:             cohortstore.New(db),
		Courses:             coursestore.New(db),
		Progress:            progressstore.New(db),
		Users:               userstore.New(db),
		Submissions:         submissionstore.New(db),
		Audit:               audit,
		Tx:                  txn.New(db, logger),
		Log:                 logger,
	}
}

const (
	requiredText = "this field is required"

	maxNoteLen    = 1000
	maxReasonLen  = 2000
	maxSubjectLen = 200
	maxDetailsLen = 5000
	maxNameLen    = 200
)

// requireRole fails with ErrUnauthenticated for an anonymous actor and with
// an Unauthorized error when the actor holds none of roles.
func requireRole(actor auth.Actor, what string, roles ...string) error {
	if actor.ID.IsZero() {
		return apperr.ErrUnauthenticated
	}
	if !actor.HasRole(roles...) {
		return apperr.Unauthorized("%s may not %s", actor.Role, what)
	}
	return nil
}

// classify maps store errors onto the workflow taxonomy. kind names the
// record for NotFound and InvalidTransition; op labels store failures.
func classify(kind, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(kind)
	}
	var np *reviews.NotPendingError
	if errors.As(err, &np) {
		return apperr.InvalidTransition(kind, np.Status)
	}
	return apperr.Store(op, err)
}

// ReviewInput is a reviewer's decision on a pending record.
type ReviewInput struct {
	Decision models.Decision
	Note     string
}

func (in ReviewInput) clean() (ReviewInput, error) {
	var c apperr.Collector
	c.Check(in.Decision.Valid(), "decision", "must be approve or reject")
	in.Note = cleanText(in.Note)
	c.Check(within(in.Note, maxNoteLen), "note", tooLong(maxNoteLen))
	return in, c.Err()
}

func (in ReviewInput) decision(reviewer primitive.ObjectID) reviews.Decision {
	return reviews.Decision{ReviewerID: reviewer, Decision: in.Decision, Note: in.Note}
}

// validStatusFilter accepts an empty filter or a review status.
func validStatusFilter(status string) error {
	switch status {
	case "", models.StatusPending, models.StatusApproved, models.StatusRejected:
		return nil
	}
	return apperr.Invalid("status", "must be pending, approved or rejected")
}

func reviewAction(d models.Decision, approve, reject string) string {
	if d == models.DecisionApprove {
		return approve
	}
	return reject
}

func idPtr(id primitive.ObjectID) *primitive.ObjectID { return &id }
