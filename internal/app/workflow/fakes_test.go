package workflow_test

import (
	"context"
	"sync"
	"testing"
	"time"

	cohortstore "github.com/dalemusser/dexterhub/internal/app/store/cohorts"
	enrollmentstore "github.com/dalemusser/dexterhub/internal/app/store/enrollments"
	"github.com/dalemusser/dexterhub/internal/app/store/reviews"
	submissionstore "github.com/dalemusser/dexterhub/internal/app/store/submissions"
	"github.com/dalemusser/dexterhub/internal/app/system/auditlog"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/app/workflow"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// decide applies d to r the way reviews.Decide does in MongoDB.
func decide(r *models.Review, d reviews.Decision) error {
	if !r.IsPending() {
		return &reviews.NotPendingError{Status: r.Status}
	}
	at := time.Now().UTC()
	reviewer := d.ReviewerID
	r.Status = d.Decision.Status()
	r.ReviewedByID = &reviewer
	r.ReviewedAt = &at
	r.ReviewNote = d.Note
	return nil
}

type memApplications struct {
	mu   sync.Mutex
	recs map[primitive.ObjectID]*models.EnrollmentRequest
}

func (m *memApplications) Create(_ context.Context, e models.EnrollmentRequest) (models.EnrollmentRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.recs {
		if r.IsPending() && r.LearnerID == e.LearnerID && r.CohortID == e.CohortID && r.CourseID == e.CourseID {
			return models.EnrollmentRequest{}, enrollmentstore.ErrDuplicatePending
		}
	}
	e.ID = primitive.NewObjectID()
	e.Review = models.Review{Status: models.StatusPending}
	e.CreatedAt = time.Now().UTC()
	cp := e
	m.recs[e.ID] = &cp
	return e, nil
}

func (m *memApplications) GetByID(_ context.Context, id primitive.ObjectID) (*models.EnrollmentRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *r
	return &cp, nil
}

func (m *memApplications) ListByLearner(_ context.Context, learnerID primitive.ObjectID) ([]models.EnrollmentRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.EnrollmentRequest{}
	for _, r := range m.recs {
		if r.LearnerID == learnerID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memApplications) ListPending(_ context.Context, cohortIDs []primitive.ObjectID) ([]models.EnrollmentRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in := func(id primitive.ObjectID) bool {
		if cohortIDs == nil {
			return true
		}
		for _, c := range cohortIDs {
			if c == id {
				return true
			}
		}
		return false
	}
	out := []models.EnrollmentRequest{}
	for _, r := range m.recs {
		if r.IsPending() && in(r.CohortID) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memApplications) Decide(_ context.Context, id primitive.ObjectID, d reviews.Decision) (*models.EnrollmentRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if err := decide(&r.Review, d); err != nil {
		return nil, err
	}
	cp := *r
	return &cp, nil
}

type memDrops struct {
	mu   sync.Mutex
	recs map[primitive.ObjectID]*models.DropRecommendation
}

func (m *memDrops) Create(_ context.Context, d models.DropRecommendation) (models.DropRecommendation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = primitive.NewObjectID()
	d.Review = models.Review{Status: models.StatusPending}
	cp := d
	m.recs[d.ID] = &cp
	return d, nil
}

func (m *memDrops) List(_ context.Context, status string) ([]models.DropRecommendation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.DropRecommendation{}
	for _, r := range m.recs {
		if status == "" || r.Status == status {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memDrops) ListByInstructor(_ context.Context, instructorID primitive.ObjectID) ([]models.DropRecommendation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.DropRecommendation{}
	for _, r := range m.recs {
		if r.InstructorID == instructorID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memDrops) Decide(_ context.Context, id primitive.ObjectID, d reviews.Decision) (*models.DropRecommendation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if err := decide(&r.Review, d); err != nil {
		return nil, err
	}
	cp := *r
	return &cp, nil
}

type memAppeals struct {
	mu   sync.Mutex
	recs map[primitive.ObjectID]*models.Appeal
}

func (m *memAppeals) Create(_ context.Context, a models.Appeal) (models.Appeal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = primitive.NewObjectID()
	a.Review = models.Review{Status: models.StatusPending}
	cp := a
	m.recs[a.ID] = &cp
	return a, nil
}

func (m *memAppeals) List(_ context.Context, status string) ([]models.Appeal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Appeal{}
	for _, r := range m.recs {
		if status == "" || r.Status == status {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memAppeals) ListByLearner(_ context.Context, learnerID primitive.ObjectID) ([]models.Appeal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Appeal{}
	for _, r := range m.recs {
		if r.LearnerID == learnerID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memAppeals) Decide(_ context.Context, id primitive.ObjectID, d reviews.Decision) (*models.Appeal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if err := decide(&r.Review, d); err != nil {
		return nil, err
	}
	cp := *r
	return &cp, nil
}

type memCohorts struct {
	mu   sync.Mutex
	recs map[primitive.ObjectID]*models.Cohort
	// writes counts successful set mutations.
	writes int
}

func (m *memCohorts) Create(_ context.Context, c models.Cohort) (models.Cohort, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.recs {
		if x.Name == c.Name {
			return models.Cohort{}, cohortstore.ErrDuplicateName
		}
	}
	c.ID = primitive.NewObjectID()
	if c.Status == "" {
		c.Status = models.CohortUpcoming
	}
	c.LearnerIDs = append([]primitive.ObjectID{}, c.LearnerIDs...)
	c.InstructorIDs = append([]primitive.ObjectID{}, c.InstructorIDs...)
	c.CourseIDs = append([]primitive.ObjectID{}, c.CourseIDs...)
	cp := c
	m.recs[c.ID] = &cp
	return c, nil
}

func (m *memCohorts) GetByID(_ context.Context, id primitive.ObjectID) (*models.Cohort, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.recs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *c
	cp.LearnerIDs = append([]primitive.ObjectID{}, c.LearnerIDs...)
	cp.InstructorIDs = append([]primitive.ObjectID{}, c.InstructorIDs...)
	cp.CourseIDs = append([]primitive.ObjectID{}, c.CourseIDs...)
	return &cp, nil
}

func (m *memCohorts) Update(_ context.Context, id primitive.ObjectID, upd cohortstore.Update) (*models.Cohort, error) {
	m.mu.Lock()
	c, ok := m.recs[id]
	if !ok {
		m.mu.Unlock()
		return nil, mongo.ErrNoDocuments
	}
	c.Name, c.Description, c.StartDate, c.EndDate, c.Status = upd.Name, upd.Description, upd.StartDate, upd.EndDate, upd.Status
	m.mu.Unlock()
	return m.GetByID(context.Background(), id)
}

func (m *memCohorts) IDsForInstructor(_ context.Context, instructorID primitive.ObjectID) ([]primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []primitive.ObjectID
	for _, c := range m.recs {
		if c.HasInstructor(instructorID) {
			out = append(out, c.ID)
		}
	}
	return out, nil
}

func (m *memCohorts) set(id primitive.ObjectID, field func(*models.Cohort) *[]primitive.ObjectID, v primitive.ObjectID, add bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.recs[id]
	if !ok {
		return false, mongo.ErrNoDocuments
	}
	ids := field(c)
	for i, x := range *ids {
		if x == v {
			if add {
				return false, nil
			}
			*ids = append((*ids)[:i], (*ids)[i+1:]...)
			m.writes++
			return true, nil
		}
	}
	if !add {
		return false, nil
	}
	*ids = append(*ids, v)
	m.writes++
	return true, nil
}

func learners(c *models.Cohort) *[]primitive.ObjectID    { return &c.LearnerIDs }
func instructors(c *models.Cohort) *[]primitive.ObjectID { return &c.InstructorIDs }
func courseIDs(c *models.Cohort) *[]primitive.ObjectID   { return &c.CourseIDs }

func (m *memCohorts) AddLearner(_ context.Context, id, v primitive.ObjectID) (bool, error) {
	return m.set(id, learners, v, true)
}
func (m *memCohorts) AddCourse(_ context.Context, id, v primitive.ObjectID) (bool, error) {
	return m.set(id, courseIDs, v, true)
}
func (m *memCohorts) RemoveCourse(_ context.Context, id, v primitive.ObjectID) (bool, error) {
	return m.set(id, courseIDs, v, false)
}
func (m *memCohorts) AddInstructor(_ context.Context, id, v primitive.ObjectID) (bool, error) {
	return m.set(id, instructors, v, true)
}
func (m *memCohorts) RemoveInstructor(_ context.Context, id, v primitive.ObjectID) (bool, error) {
	return m.set(id, instructors, v, false)
}

type memCourses struct {
	mu   sync.Mutex
	recs map[primitive.ObjectID]*models.Course
}

func (m *memCourses) GetByID(_ context.Context, id primitive.ObjectID) (*models.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.recs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *c
	cp.Registrars = append([]primitive.ObjectID{}, c.Registrars...)
	return &cp, nil
}

func (m *memCourses) AddRegistrar(_ context.Context, courseID, learnerID primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.recs[courseID]
	if !ok {
		return false, mongo.ErrNoDocuments
	}
	if c.HasRegistrar(learnerID) {
		return false, nil
	}
	c.Registrars = append(c.Registrars, learnerID)
	return true, nil
}

type progressKey struct{ learner, course primitive.ObjectID }

type memProgress struct {
	mu   sync.Mutex
	recs map[progressKey]*models.LearnerProgress
}

func (m *memProgress) EnsureForLearner(_ context.Context, learnerID, courseID, cohortID primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := progressKey{learnerID, courseID}
	if _, ok := m.recs[k]; ok {
		return false, nil
	}
	m.recs[k] = &models.LearnerProgress{
		ID:        primitive.NewObjectID(),
		LearnerID: learnerID,
		CourseID:  courseID,
		CohortID:  cohortID,
		Status:    models.ProgressNotStarted,
	}
	return true, nil
}

func (m *memProgress) AddScore(_ context.Context, learnerID, courseID primitive.ObjectID, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.recs[progressKey{learnerID, courseID}]
	if !ok {
		return mongo.ErrNoDocuments
	}
	p.Score += delta
	return nil
}

func (m *memProgress) get(learnerID, courseID primitive.ObjectID) (models.LearnerProgress, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.recs[progressKey{learnerID, courseID}]
	if !ok {
		return models.LearnerProgress{}, false
	}
	return *p, true
}

type memUsers struct {
	mu   sync.Mutex
	recs map[primitive.ObjectID]*models.User
}

func (m *memUsers) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.recs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) SetRole(_ context.Context, id primitive.ObjectID, role string) (*models.User, error) {
	return m.setField(id, func(u *models.User) { u.Role = role })
}

func (m *memUsers) SetStatus(_ context.Context, id primitive.ObjectID, status string) (*models.User, error) {
	return m.setField(id, func(u *models.User) { u.Status = status })
}

func (m *memUsers) setField(id primitive.ObjectID, apply func(*models.User)) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.recs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	before := *u
	apply(u)
	return &before, nil
}

type memSubmissions struct {
	mu   sync.Mutex
	recs map[primitive.ObjectID]*models.Submission
}

func (m *memSubmissions) GetByID(_ context.Context, id primitive.ObjectID) (*models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.recs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *s
	return &cp, nil
}

func (m *memSubmissions) ListByCourse(_ context.Context, courseID primitive.ObjectID, status string) ([]models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Submission{}
	for _, s := range m.recs {
		if s.CourseID == courseID && (status == "" || s.Status == status) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memSubmissions) Grade(_ context.Context, id primitive.ObjectID, score int, feedback string, graderID primitive.ObjectID) (*models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.recs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if s.Status != models.SubmissionSubmitted {
		return nil, submissionstore.ErrAlreadyGraded
	}
	s.Status = models.SubmissionGraded
	s.Score = &score
	s.Feedback = feedback
	s.GradedByID = &graderID
	cp := *s
	return &cp, nil
}

type memAudit struct {
	mu      sync.Mutex
	entries []models.AuditLog
	err     error
}

func (m *memAudit) Append(_ context.Context, e models.AuditLog) (models.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.AuditLog{}, m.err
	}
	m.entries = append(m.entries, e)
	return e, nil
}

func (m *memAudit) all() []models.AuditLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.AuditLog(nil), m.entries...)
}

// directTx runs fn without a transaction and counts calls.
type directTx struct {
	mu   sync.Mutex
	runs int
}

func (t *directTx) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	t.runs++
	t.mu.Unlock()
	return fn(ctx)
}

type env struct {
	engine      *workflow.Engine
	apps        *memApplications
	drops       *memDrops
	appeals     *memAppeals
	cohorts     *memCohorts
	courses     *memCourses
	progress    *memProgress
	users       *memUsers
	submissions *memSubmissions
	audit       *memAudit
	tx          *directTx
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		apps:        &memApplications{recs: map[primitive.ObjectID]*models.EnrollmentRequest{}},
		drops:       &memDrops{recs: map[primitive.ObjectID]*models.DropRecommendation{}},
		appeals:     &memAppeals{recs: map[primitive.ObjectID]*models.Appeal{}},
		cohorts:     &memCohorts{recs: map[primitive.ObjectID]*models.Cohort{}},
		courses:     &memCourses{recs: map[primitive.ObjectID]*models.Course{}},
		progress:    &memProgress{recs: map[progressKey]*models.LearnerProgress{}},
		users:       &memUsers{recs: map[primitive.ObjectID]*models.User{}},
		submissions: &memSubmissions{recs: map[primitive.ObjectID]*models.Submission{}},
		audit:       &memAudit{},
		tx:          &directTx{},
	}
	e.engine = &workflow.Engine{
		Applications:        e.apps,
		DropRecommendations: e.drops,
		Appeals:             e.appeals,
		Cohorts:             e.cohorts,
		Courses:             e.courses,
		Progress:            e.progress,
		Users:               e.users,
		Submissions:         e.submissions,
		Audit:               auditlog.New(e.audit, zap.NewNop(), auditlog.Config{Mirror: auditlog.MirrorDB}),
		Tx:                  e.tx,
		Log:                 zap.NewNop(),
	}
	return e
}

func (e *env) user(name, role string) auth.Actor {
	u := models.User{
		ID:       primitive.NewObjectID(),
		FullName: name,
		Email:    name + "@example.com",
		Role:     role,
		Status:   models.UserActive,
	}
	e.users.recs[u.ID] = &u
	return auth.ActorFromUser(u)
}

func (e *env) course(title string, instructorIDs ...primitive.ObjectID) *models.Course {
	c := &models.Course{
		ID:            primitive.NewObjectID(),
		Title:         title,
		InstructorIDs: instructorIDs,
		Registrars:    []primitive.ObjectID{},
		Modules: []models.Module{{
			ID:    primitive.NewObjectID(),
			Title: "Module 1",
			Lessons: []models.Lesson{
				{ID: primitive.NewObjectID(), Title: "Lesson 1", Task: &models.Task{Title: "Task 1", MaxScore: 10}},
				{ID: primitive.NewObjectID(), Title: "Lesson 2"},
			},
		}},
	}
	e.courses.recs[c.ID] = c
	return c
}

func (e *env) cohort(name, status string, courses []primitive.ObjectID, instructorIDs ...primitive.ObjectID) *models.Cohort {
	c := &models.Cohort{
		ID:            primitive.NewObjectID(),
		Name:          name,
		Status:        status,
		CourseIDs:     append([]primitive.ObjectID{}, courses...),
		InstructorIDs: append([]primitive.ObjectID{}, instructorIDs...),
		LearnerIDs:    []primitive.ObjectID{},
	}
	e.cohorts.recs[c.ID] = c
	return c
}

func (e *env) cohortNow(t *testing.T, id primitive.ObjectID) *models.Cohort {
	t.Helper()
	c, err := e.cohorts.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load cohort: %v", err)
	}
	return c
}

func countID(ids []primitive.ObjectID, id primitive.ObjectID) int {
	n := 0
	for _, x := range ids {
		if x == id {
			n++
		}
	}
	return n
}
