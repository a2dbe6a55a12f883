package repository

import (
	"context"
	"testing"
	"time"

	"go_course_certify/internal/model"
	"go_course_certify/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func Test_gormProgressRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	repo := NewGormProgressRepository()
	now := time.Now().UTC()

	rec := model.NewProgressRecord("learner-1", "course-1", now)
	require.NoError(t, repo.Create(ctx, db, rec))

	got, err := repo.FindByKey(ctx, db, "learner-1", "course-1")
	require.NoError(t, err)
	assert.Equal(t, rec.ProgressID, got.ProgressID)
	assert.Equal(t, int64(1), got.Version)
	assert.Empty(t, got.CompletedLessons)
	assert.Nil(t, got.CompletedAt)
	assert.False(t, got.CertificateClaimed)

	_, err = repo.FindByKey(ctx, db, "learner-1", "course-2")
	assert.ErrorIs(t, err, model.ErrNotFound)

	dup := model.NewProgressRecord("learner-1", "course-1", now)
	assert.ErrorIs(t, repo.Create(ctx, db, dup), model.ErrConflict)
}

func Test_gormProgressRepository_UpdateVersioned(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	repo := NewGormProgressRepository()
	now := time.Now().UTC()

	rec := model.NewProgressRecord("learner-1", "course-1", now)
	require.NoError(t, repo.Create(ctx, db, rec))

	stale, err := repo.FindByKey(ctx, db, "learner-1", "course-1")
	require.NoError(t, err)

	rec.CompletedLessons = append(rec.CompletedLessons, model.CompletedLesson{LessonID: "l1", CompletedAt: now, TimeSpentMinutes: 7})
	rec.CompletedLessonCount = 1
	rec.ProgressPercentage = 50
	rec.TotalTimeSpentMinutes = 7
	pos := datatypes.NewJSONType(model.Position{ModuleID: "m1", ChapterID: "c1", LessonID: "l1"})
	rec.CurrentPosition = &pos
	require.NoError(t, repo.UpdateVersioned(ctx, db, rec))
	assert.Equal(t, int64(2), rec.Version)

	got, err := repo.FindByKey(ctx, db, "learner-1", "course-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
	require.Len(t, got.CompletedLessons, 1)
	assert.Equal(t, "l1", got.CompletedLessons[0].LessonID)
	assert.Equal(t, 7, got.TotalTimeSpentMinutes)
	assert.Equal(t, 50, got.ProgressPercentage)
	require.NotNil(t, got.Position())
	assert.Equal(t, "c1", got.Position().ChapterID)

	// A writer holding the old version loses.
	stale.ProgressPercentage = 99
	assert.ErrorIs(t, repo.UpdateVersioned(ctx, db, stale), model.ErrVersionConflict)
	assert.Equal(t, int64(1), stale.Version)
}

func Test_gormProgressRepository_Touch(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	repo := NewGormProgressRepository()
	now := time.Now().UTC()

	rec := model.NewProgressRecord("learner-1", "course-1", now)
	require.NoError(t, repo.Create(ctx, db, rec))

	later := now.Add(time.Hour)
	require.NoError(t, repo.Touch(ctx, db, rec.ProgressID, later))

	got, err := repo.FindByKey(ctx, db, "learner-1", "course-1")
	require.NoError(t, err)
	assert.WithinDuration(t, later, got.LastAccessedAt, time.Second)
	assert.Equal(t, int64(1), got.Version, "touch must not bump the version")

	assert.ErrorIs(t, repo.Touch(ctx, db, uuid.New(), later), model.ErrNotFound)
}

func Test_gormProgressRepository_Claim(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	tests := []struct {
		name      string
		completed bool
		claimed   bool
		want      bool
	}{
		{name: "completed and unclaimed record is claimed", completed: true, want: true},
		{name: "incomplete record cannot be claimed", completed: false, want: false},
		{name: "already claimed record cannot be claimed again", completed: true, claimed: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.NewSQLiteDB(t)
			repo := NewGormProgressRepository()

			rec := model.NewProgressRecord("learner-1", "course-1", now)
			if tt.completed {
				rec.CompletedAt = &now
				rec.ProgressPercentage = 100
			}
			if tt.claimed {
				rec.CertificateClaimed = true
				rec.CertificateClaimedAt = &now
			}
			require.NoError(t, repo.Create(ctx, db, rec))

			ok, err := repo.Claim(ctx, db, "learner-1", "course-1", now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)

			got, err := repo.FindByKey(ctx, db, "learner-1", "course-1")
			require.NoError(t, err)
			assert.Equal(t, tt.completed && (tt.claimed || tt.want), got.CertificateClaimed)
		})
	}
}

func Test_gormProgressRepository_ClaimIsExclusive(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	repo := NewGormProgressRepository()
	now := time.Now().UTC()

	rec := model.NewProgressRecord("learner-1", "course-1", now)
	rec.CompletedAt = &now
	require.NoError(t, repo.Create(ctx, db, rec))

	const callers = 10
	wins := make(chan bool, callers)
	for i := 0; i < callers; i++ {
		go func() {
			ok, err := repo.Claim(ctx, db, "learner-1", "course-1", now)
			assert.NoError(t, err)
			wins <- ok
		}()
	}
	won := 0
	for i := 0; i < callers; i++ {
		if <-wins {
			won++
		}
	}
	assert.Equal(t, 1, won)
}

func Test_gormProgressRepository_ReclaimAndSetCertificateID(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	repo := NewGormProgressRepository()
	now := time.Now().UTC()
	claimedAt := now.Add(-time.Minute)

	rec := model.NewProgressRecord("learner-1", "course-1", now)
	rec.CompletedAt = &claimedAt
	rec.CertificateClaimed = true
	rec.CertificateClaimedAt = &claimedAt
	require.NoError(t, repo.Create(ctx, db, rec))

	// Claim is younger than the cutoff.
	ok, err := repo.Reclaim(ctx, db, rec.ProgressID, now.Add(-2*time.Minute), now)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Reclaim(ctx, db, rec.ProgressID, now.Add(-30*time.Second), now)
	require.NoError(t, err)
	assert.True(t, ok)

	// The refreshed claim is no longer stale for the same cutoff.
	ok, err = repo.Reclaim(ctx, db, rec.ProgressID, now.Add(-30*time.Second), now)
	require.NoError(t, err)
	assert.False(t, ok)

	certID := uuid.New()
	require.NoError(t, repo.SetCertificateID(ctx, db, rec.ProgressID, certID))
	// Second write-back keeps the first reference.
	require.NoError(t, repo.SetCertificateID(ctx, db, rec.ProgressID, uuid.New()))

	got, err := repo.FindByKey(ctx, db, "learner-1", "course-1")
	require.NoError(t, err)
	require.NotNil(t, got.CertificateID)
	assert.Equal(t, certID, *got.CertificateID)
	assert.True(t, got.HasCertificate())
	assert.False(t, got.ClaimPending())

	ok, err = repo.Reclaim(ctx, db, rec.ProgressID, now.Add(time.Hour), now)
	require.NoError(t, err)
	assert.False(t, ok, "records with a certificate are never re-claimed")
}

func Test_gormProgressRepository_FindNeedingReconciliation(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	repo := NewGormProgressRepository()
	now := time.Now().UTC()
	old := now.Add(-time.Hour)
	cutoff := now.Add(-time.Minute)

	unclaimed := model.NewProgressRecord("l-unclaimed", "c", old)
	unclaimed.CompletedAt = &old

	stuck := model.NewProgressRecord("l-stuck", "c", old)
	stuck.CompletedAt = &old
	stuck.CertificateClaimed = true
	stuck.CertificateClaimedAt = &old

	inFlight := model.NewProgressRecord("l-inflight", "c", old)
	inFlight.CompletedAt = &old
	inFlight.CertificateClaimed = true
	inFlight.CertificateClaimedAt = &now

	certID := uuid.New()
	done := model.NewProgressRecord("l-done", "c", old)
	done.CompletedAt = &old
	done.CertificateClaimed = true
	done.CertificateClaimedAt = &old
	done.CertificateID = &certID

	incomplete := model.NewProgressRecord("l-incomplete", "c", old)

	for _, rec := range []*model.ProgressRecord{unclaimed, stuck, inFlight, done, incomplete} {
		require.NoError(t, repo.Create(ctx, db, rec))
	}

	got, err := repo.FindNeedingReconciliation(ctx, db, cutoff, 10)
	require.NoError(t, err)

	var learners []string
	for _, rec := range got {
		learners = append(learners, rec.LearnerID)
	}
	assert.ElementsMatch(t, []string{"l-unclaimed", "l-stuck"}, learners)

	limited, err := repo.FindNeedingReconciliation(ctx, db, cutoff, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
