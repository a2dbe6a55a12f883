package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go_course_certify/internal/config"
	"go_course_certify/internal/model"
	"go_course_certify/internal/repository"
	"go_course_certify/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testCourseID     = "pp101"
	testEmptyCourse  = "empty101"
	testLearnerID    = "learner-asha"
	testInstructorID = "inst-mensah"
)

var testEngineConfig = config.EngineConfig{
	MaxWriteAttempts:       20,
	BackoffInitial:         time.Millisecond,
	BackoffMax:             5 * time.Millisecond,
	ClaimGracePeriod:       30 * time.Second,
	VerificationCodeLength: 10,
	VerificationCodeTries:  5,
}

// testEngine wires the real services on an isolated sqlite database.
type testEngine struct {
	db           *gorm.DB
	progressRepo repository.ProgressRepository
	certRepo     repository.CertificateRepository
	catalog      *testutil.FakeCatalog
	directory    *testutil.FakeDirectory
	mailer       *testutil.RecordingMailer
	publisher    *testutil.RecordingPublisher

	certificates *certificateService
	coordinator  *claimCoordinator
	progress     *progressService
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()
	return newTestEngineWithCertRepo(t, repository.NewGormCertificateRepository())
}

func newTestEngineWithCertRepo(t *testing.T, certRepo repository.CertificateRepository) *testEngine {
	t.Helper()

	e := &testEngine{
		db:           testutil.NewSQLiteDB(t),
		progressRepo: repository.NewGormProgressRepository(),
		certRepo:     certRepo,
		catalog: testutil.NewFakeCatalog(
			model.CourseInfo{CourseID: testCourseID, Title: "Public Policy 101", InstructorID: testInstructorID, TotalLessons: 4, EstimatedMinutes: 100},
			model.CourseInfo{CourseID: testEmptyCourse, Title: "Placeholder", TotalLessons: 0},
		),
		directory: &testutil.FakeDirectory{
			Names:  map[string]string{testLearnerID: "Asha Rao", testInstructorID: "Dr. Kofi Mensah"},
			Emails: map[string]string{testLearnerID: "asha@example.com"},
		},
		mailer:    &testutil.RecordingMailer{},
		publisher: &testutil.RecordingPublisher{},
	}

	notifier := NewNotifier(e.mailer, e.publisher)
	e.certificates = NewCertificateService(e.db, e.certRepo, e.progressRepo, notifier, testEngineConfig).(*certificateService)
	e.coordinator = NewClaimCoordinator(e.db, e.progressRepo, e.certRepo, e.certificates, e.catalog, e.directory, testEngineConfig.ClaimGracePeriod).(*claimCoordinator)
	e.progress = NewProgressService(e.db, e.progressRepo, e.catalog, e.coordinator, NewRetryPolicy(testEngineConfig)).(*progressService)
	return e
}

// setNow pins the clock of every service.
func (e *testEngine) setNow(now time.Time) {
	clock := func() time.Time { return now }
	e.certificates.now = clock
	e.coordinator.now = clock
	e.progress.now = clock
}

func (e *testEngine) complete(t *testing.T, learnerID, lessonID string, minutes int) *model.ProgressRecord {
	t.Helper()
	rec, err := e.progress.MarkLessonComplete(context.Background(), &model.MarkLessonCompleteRequest{
		LearnerID:        learnerID,
		CourseID:         testCourseID,
		LessonID:         lessonID,
		TimeSpentMinutes: minutes,
	})
	require.NoError(t, err)
	return rec
}

func (e *testEngine) certificateCount(t *testing.T, learnerID, courseID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.Certificate{}).Where("learner_id = ? AND course_id = ?", learnerID, courseID).Count(&n).Error)
	return n
}

// sequenceCodes returns the given codes in order, then repeats the last one.
func sequenceCodes(codes ...string) CodeGenerator {
	var mu sync.Mutex
	i := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		code := codes[i]
		if i < len(codes)-1 {
			i++
		}
		return code, nil
	}
}

// failingCertRepo fails certificate inserts with createErr while it is set.
type failingCertRepo struct {
	repository.CertificateRepository
	mu        sync.Mutex
	createErr error
}

func (r *failingCertRepo) setCreateErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createErr = err
}

func (r *failingCertRepo) Create(ctx context.Context, db *gorm.DB, certificate *model.Certificate) error {
	r.mu.Lock()
	err := r.createErr
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return r.CertificateRepository.Create(ctx, db, certificate)
}
