package service

import (
	"context"
	"testing"
	"time"

	"go_course_certify/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedRecord stores a record in the given claim state and returns it.
func seedRecord(t *testing.T, e *testEngine, completedAt, claimedAt *time.Time, certificateID *uuid.UUID) *model.ProgressRecord {
	t.Helper()
	rec := model.NewProgressRecord(testLearnerID, testCourseID, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	for _, lesson := range []string{"l1", "l2", "l3", "l4"} {
		rec.CompletedLessons = append(rec.CompletedLessons, model.CompletedLesson{LessonID: lesson, TimeSpentMinutes: 20})
	}
	rec.CompletedLessonCount = 4
	rec.TotalTimeSpentMinutes = 80
	if completedAt != nil {
		rec.ProgressPercentage = 100
		rec.CompletedAt = completedAt
	}
	if claimedAt != nil {
		rec.CertificateClaimed = true
		rec.CertificateClaimedAt = claimedAt
	}
	rec.CertificateID = certificateID
	require.NoError(t, e.progressRepo.Create(context.Background(), e.db, rec))
	return rec
}

func timePtr(t time.Time) *time.Time { return &t }

func Test_claimCoordinator_TryClaim(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	certID := uuid.New()

	tests := []struct {
		name        string
		completedAt *time.Time
		claimedAt   *time.Time
		certID      *uuid.UUID
		want        model.ClaimOutcome
		wantErr     error
	}{
		{name: "completed record is claimed", completedAt: timePtr(now), want: model.Claimed},
		{name: "claim in flight", completedAt: timePtr(now), claimedAt: timePtr(now), want: model.AlreadyClaimed},
		{name: "certificate already issued", completedAt: timePtr(now), claimedAt: timePtr(now), certID: &certID, want: model.AlreadyIssued},
		{name: "incomplete course", wantErr: model.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			e.setNow(now)
			seedRecord(t, e, tt.completedAt, tt.claimedAt, tt.certID)

			got, err := e.coordinator.TryClaim(ctx, testLearnerID, testCourseID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown record", func(t *testing.T) {
		e := newTestEngine(t)
		_, err := e.coordinator.TryClaim(ctx, "nobody", testCourseID)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func Test_claimCoordinator_NeedsReconciliation(t *testing.T) {
	e := newTestEngine(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	certID := uuid.New()
	grace := testEngineConfig.ClaimGracePeriod

	tests := []struct {
		name string
		rec  *model.ProgressRecord
		want bool
	}{
		{name: "nil record", rec: nil, want: false},
		{name: "incomplete", rec: &model.ProgressRecord{}, want: false},
		{name: "completed and unclaimed", rec: &model.ProgressRecord{CompletedAt: timePtr(now)}, want: true},
		{name: "fresh claim", rec: &model.ProgressRecord{CompletedAt: timePtr(now), CertificateClaimed: true, CertificateClaimedAt: timePtr(now.Add(-grace / 2))}, want: false},
		{name: "stale claim", rec: &model.ProgressRecord{CompletedAt: timePtr(now), CertificateClaimed: true, CertificateClaimedAt: timePtr(now.Add(-2 * grace))}, want: true},
		{name: "claim without timestamp", rec: &model.ProgressRecord{CompletedAt: timePtr(now), CertificateClaimed: true}, want: true},
		{name: "issued", rec: &model.ProgressRecord{CompletedAt: timePtr(now), CertificateClaimed: true, CertificateID: &certID}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.coordinator.NeedsReconciliation(tt.rec, now))
		})
	}
}

func Test_claimCoordinator_ReconcileStuckClaim(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e.setNow(now)

	rec := seedRecord(t, e, timePtr(now.Add(-time.Hour)), timePtr(now.Add(-time.Hour)), nil)
	snapshot := *rec

	cert, err := e.coordinator.Reconcile(ctx, rec)
	require.NoError(t, err)
	require.NotNil(t, cert)
	assert.Equal(t, "Asha Rao", cert.StudentName)
	assert.Equal(t, "Public Policy 101", cert.CourseName)
	assert.Equal(t, "Dr. Kofi Mensah", cert.InstructorName)

	stored, err := e.progressRepo.FindByKey(ctx, e.db, testLearnerID, testCourseID)
	require.NoError(t, err)
	require.NotNil(t, stored.CertificateID)
	assert.Equal(t, cert.CertificateID, *stored.CertificateID)

	// A second reconciler working from the stale snapshot finds the same certificate.
	again, err := e.coordinator.Reconcile(ctx, &snapshot)
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, cert.CertificateID, again.CertificateID)
	assert.Equal(t, int64(1), e.certificateCount(t, testLearnerID, testCourseID))
}

func Test_claimCoordinator_ReconcileLeavesFreshClaimAlone(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e.setNow(now)

	rec := seedRecord(t, e, timePtr(now.Add(-time.Second)), timePtr(now.Add(-time.Second)), nil)

	cert, err := e.coordinator.Reconcile(ctx, rec)
	require.NoError(t, err)
	assert.Nil(t, cert)
	assert.Equal(t, int64(0), e.certificateCount(t, testLearnerID, testCourseID))
}

func Test_claimCoordinator_ReconcileUnclaimedCompletion(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e.setNow(now)

	seedRecord(t, e, timePtr(now.Add(-time.Minute)), nil, nil)

	// Any read finishes a completion whose claim step never ran.
	rec, err := e.progress.GetProgress(ctx, testLearnerID, testCourseID)
	require.NoError(t, err)
	assert.True(t, rec.CertificateClaimed)
	require.NotNil(t, rec.CertificateID)
	assert.Equal(t, int64(1), e.certificateCount(t, testLearnerID, testCourseID))
}

func Test_claimCoordinator_ReconcileRepairsBackReference(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e.setNow(now)

	rec := seedRecord(t, e, timePtr(now.Add(-time.Hour)), timePtr(now.Add(-time.Hour)), nil)
	existing := &model.Certificate{
		CertificateID:    uuid.New(),
		VerificationCode: "EXISTING22",
		LearnerID:        testLearnerID,
		CourseID:         testCourseID,
		StudentName:      "Asha Rao",
		CourseName:       "Public Policy 101",
		CompletionDate:   now.Add(-time.Hour),
		Grade:            "Merit",
		IssueDate:        now.Add(-time.Hour),
	}
	require.NoError(t, e.certRepo.Create(ctx, e.db, existing))

	cert, err := e.coordinator.Reconcile(ctx, rec)
	require.NoError(t, err)
	require.NotNil(t, cert)
	assert.Equal(t, existing.CertificateID, cert.CertificateID)
	assert.Equal(t, int64(1), e.certificateCount(t, testLearnerID, testCourseID))
	assert.Equal(t, 0, e.publisher.Count(), "repairs do not announce a new certificate")

	stored, err := e.progressRepo.FindByKey(ctx, e.db, testLearnerID, testCourseID)
	require.NoError(t, err)
	require.NotNil(t, stored.CertificateID)
	assert.Equal(t, existing.CertificateID, *stored.CertificateID)
}

func Test_claimCoordinator_HandleCompletionDirectoryOutage(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e.setNow(now)
	e.directory.Err = assert.AnError

	rec := seedRecord(t, e, timePtr(now), nil, nil)

	cert, err := e.coordinator.HandleCompletion(ctx, rec)
	assert.ErrorIs(t, err, model.ErrInternalServer)
	assert.Nil(t, cert)

	outcome, err := e.coordinator.TryClaim(ctx, testLearnerID, testCourseID)
	require.NoError(t, err)
	assert.Equal(t, model.AlreadyClaimed, outcome, "the claim is not rolled back")
}
