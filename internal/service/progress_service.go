package service

import (
	"context"
	"errors"
	"time"

	"go_course_certify/internal/catalog"
	"go_course_certify/internal/completion"
	"go_course_certify/internal/middleware"
	"go_course_certify/internal/model"
	"go_course_certify/internal/repository"
	"go_course_certify/internal/webutil"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProgressService is the Progress Tracker.
type ProgressService interface {
	MarkLessonComplete(ctx context.Context, req *model.MarkLessonCompleteRequest) (*model.ProgressRecord, error)
	UpdateCurrentPosition(ctx context.Context, req *model.UpdatePositionRequest) (*model.ProgressRecord, error)
	GetProgress(ctx context.Context, learnerID, courseID string) (*model.ProgressRecord, error)
}

type progressService struct {
	db           *gorm.DB
	progressRepo repository.ProgressRepository
	catalog      catalog.Reader
	coordinator  ClaimCoordinator
	retry        RetryPolicy
	now          func() time.Time
}

func NewProgressService(db *gorm.DB, progressRepo repository.ProgressRepository, catalogReader catalog.Reader, coordinator ClaimCoordinator, retry RetryPolicy) ProgressService {
	return &progressService{
		db:           db,
		progressRepo: progressRepo,
		catalog:      catalogReader,
		coordinator:  coordinator,
		retry:        retry,
		now:          utcNow,
	}
}

type lessonWrite struct {
	rec     *model.ProgressRecord
	crossed bool
}

func (s *progressService) MarkLessonComplete(ctx context.Context, req *model.MarkLessonCompleteRequest) (*model.ProgressRecord, error) {
	if err := webutil.ValidateStruct(req); err != nil {
		return nil, err
	}
	logger := middleware.GetLogger(ctx).With("learner_id", req.LearnerID, "course_id", req.CourseID, "lesson_id", req.LessonID)

	total, err := s.totalLessons(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	res, err := retryVersioned(ctx, s.retry, func() (lessonWrite, error) {
		now := s.now()
		rec, err := s.findOrCreate(ctx, req.LearnerID, req.CourseID, now)
		if err != nil {
			return lessonWrite{}, err
		}

		if rec.HasLesson(req.LessonID) {
			if err := s.progressRepo.Touch(ctx, s.db, rec.ProgressID, now); err != nil {
				return lessonWrite{}, internalError("progressService.MarkLessonComplete", err)
			}
			rec.LastAccessedAt = now
			return lessonWrite{rec: rec}, nil
		}

		oldPct := rec.ProgressPercentage
		rec.CompletedLessons = append(rec.CompletedLessons, model.CompletedLesson{
			LessonID:         req.LessonID,
			CompletedAt:      now,
			TimeSpentMinutes: req.TimeSpentMinutes,
		})
		rec.CompletedLessonCount = len(rec.CompletedLessons)
		rec.TotalTimeSpentMinutes = completion.AddMinutes(rec.TotalTimeSpentMinutes, req.TimeSpentMinutes)
		rec.ProgressPercentage = completion.Advance(oldPct, rec.CompletedLessonCount, total)
		rec.LastAccessedAt = now

		crossed := !rec.IsCompleted() && completion.CrossesCompletion(oldPct, rec.ProgressPercentage)
		if crossed {
			rec.CompletedAt = &now
		}

		if err := s.progressRepo.UpdateVersioned(ctx, s.db, rec); err != nil {
			if errors.Is(err, model.ErrVersionConflict) {
				return lessonWrite{}, err
			}
			return lessonWrite{}, internalError("progressService.MarkLessonComplete", err)
		}
		return lessonWrite{rec: rec, crossed: crossed}, nil
	})
	if err != nil {
		return nil, err
	}

	rec := res.rec
	if res.crossed {
		logger.Info("Course completed", "completed_at", rec.CompletedAt, "total_time_spent_minutes", rec.TotalTimeSpentMinutes)
		if _, err := s.coordinator.HandleCompletion(ctx, rec); err != nil {
			logger.Error("Certificate issuance failed after completion", "error", err)
			return nil, err
		}
		return s.reload(ctx, rec), nil
	}

	return s.reconcileInline(ctx, rec), nil
}

func (s *progressService) UpdateCurrentPosition(ctx context.Context, req *model.UpdatePositionRequest) (*model.ProgressRecord, error) {
	if err := webutil.ValidateStruct(req); err != nil {
		return nil, err
	}
	if _, err := s.totalLessons(ctx, req.CourseID); err != nil {
		return nil, err
	}

	rec, err := retryVersioned(ctx, s.retry, func() (*model.ProgressRecord, error) {
		now := s.now()
		rec, err := s.findOrCreate(ctx, req.LearnerID, req.CourseID, now)
		if err != nil {
			return nil, err
		}

		pos := datatypes.NewJSONType(model.Position{
			ModuleID:  req.ModuleID,
			ChapterID: req.ChapterID,
			LessonID:  req.LessonID,
		})
		rec.CurrentPosition = &pos
		rec.LastAccessedAt = now

		if err := s.progressRepo.UpdateVersioned(ctx, s.db, rec); err != nil {
			if errors.Is(err, model.ErrVersionConflict) {
				return nil, err
			}
			return nil, internalError("progressService.UpdateCurrentPosition", err)
		}
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	return s.reconcileInline(ctx, rec), nil
}

func (s *progressService) GetProgress(ctx context.Context, learnerID, courseID string) (*model.ProgressRecord, error) {
	if learnerID == "" {
		return nil, invalidInputError("VALIDATION_ERROR", "learner_id is required.", "learner_id")
	}
	if courseID == "" {
		return nil, invalidInputError("VALIDATION_ERROR", "course_id is required.", "course_id")
	}

	rec, err := s.progressRepo.FindByKey(ctx, s.db, learnerID, courseID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, notFoundError("PROGRESS_NOT_FOUND", "No progress recorded for this course.", "course_id")
		}
		return nil, internalError("progressService.GetProgress", err)
	}
	return s.reconcileInline(ctx, rec), nil
}

func (s *progressService) totalLessons(ctx context.Context, courseID string) (int, error) {
	total, err := s.catalog.GetTotalLessonCount(ctx, courseID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return 0, notFoundError("COURSE_NOT_FOUND", "Course not found in catalog.", "course_id")
		}
		return 0, internalError("progressService.totalLessons", err)
	}
	return total, nil
}

// findOrCreate returns the stored record, creating it on first interaction.
// A lost creation race falls back to reading the winner's record.
func (s *progressService) findOrCreate(ctx context.Context, learnerID, courseID string, now time.Time) (*model.ProgressRecord, error) {
	rec, err := s.progressRepo.FindByKey(ctx, s.db, learnerID, courseID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, internalError("progressService.findOrCreate", err)
	}

	rec = model.NewProgressRecord(learnerID, courseID, now)
	err = s.progressRepo.Create(ctx, s.db, rec)
	if err == nil {
		middleware.GetLogger(ctx).Info("Progress record created", "learner_id", learnerID, "course_id", courseID)
		return rec, nil
	}
	if !errors.Is(err, model.ErrConflict) {
		return nil, internalError("progressService.findOrCreate", err)
	}

	rec, err = s.progressRepo.FindByKey(ctx, s.db, learnerID, courseID)
	if err != nil {
		return nil, internalError("progressService.findOrCreate", err)
	}
	return rec, nil
}

// reconcileInline lets any reader finish a completion whose certificate step
// never ran or stalled. It is best-effort: failures are logged, the claim stays
// for the next reader or the reconciler, and the caller still gets rec.
func (s *progressService) reconcileInline(ctx context.Context, rec *model.ProgressRecord) *model.ProgressRecord {
	if !s.coordinator.NeedsReconciliation(rec, s.now()) {
		return rec
	}
	cert, err := s.coordinator.Reconcile(ctx, rec)
	if err != nil {
		middleware.GetLogger(ctx).Warn("Inline reconciliation failed", "error", err, "learner_id", rec.LearnerID, "course_id", rec.CourseID)
		return rec
	}
	if cert == nil {
		return rec
	}
	return s.reload(ctx, rec)
}

func (s *progressService) reload(ctx context.Context, rec *model.ProgressRecord) *model.ProgressRecord {
	fresh, err := s.progressRepo.FindByKey(ctx, s.db, rec.LearnerID, rec.CourseID)
	if err != nil {
		middleware.GetLogger(ctx).Warn("Could not reload progress record", "error", err, "learner_id", rec.LearnerID, "course_id", rec.CourseID)
		return rec
	}
	return fresh
}
