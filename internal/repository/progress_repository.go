//go:generate mockery --name ProgressRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go_course_certify/internal/middleware"
	"go_course_certify/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgressRepository is the Progress Store. Every method takes the *gorm.DB to
// run against so callers decide on transactions.
type ProgressRepository interface {
	FindByKey(ctx context.Context, db *gorm.DB, learnerID, courseID string) (*model.ProgressRecord, error)
	Create(ctx context.Context, db *gorm.DB, progress *model.ProgressRecord) error
	// UpdateVersioned writes the lesson and position fields if the stored version
	// still equals progress.Version, then increments progress.Version.
	// Returns model.ErrVersionConflict when another writer got there first.
	UpdateVersioned(ctx context.Context, db *gorm.DB, progress *model.ProgressRecord) error
	Touch(ctx context.Context, db *gorm.DB, progressID uuid.UUID, at time.Time) error
	// Claim flips certificate_claimed from false to true on a completed record.
	// Exactly one caller per record ever gets true.
	Claim(ctx context.Context, db *gorm.DB, learnerID, courseID string, at time.Time) (bool, error)
	// Reclaim takes over a claim that has no certificate and was made before staleBefore.
	Reclaim(ctx context.Context, db *gorm.DB, progressID uuid.UUID, staleBefore, at time.Time) (bool, error)
	SetCertificateID(ctx context.Context, db *gorm.DB, progressID, certificateID uuid.UUID) error
	FindNeedingReconciliation(ctx context.Context, db *gorm.DB, staleBefore time.Time, limit int) ([]*model.ProgressRecord, error)
}

type gormProgressRepository struct{}

func NewGormProgressRepository() ProgressRepository {
	return &gormProgressRepository{}
}

func (r *gormProgressRepository) FindByKey(ctx context.Context, db *gorm.DB, learnerID, courseID string) (*model.ProgressRecord, error) {
	logger := middleware.GetLogger(ctx)
	var progress model.ProgressRecord

	result := db.WithContext(ctx).Where("learner_id = ? AND course_id = ?", learnerID, courseID).First(&progress)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding progress record", "error", result.Error, "learner_id", learnerID, "course_id", courseID)
		return nil, fmt.Errorf("gormProgressRepository.FindByKey: %w", result.Error)
	}
	return &progress, nil
}

func (r *gormProgressRepository) Create(ctx context.Context, db *gorm.DB, progress *model.ProgressRecord) error {
	logger := middleware.GetLogger(ctx)

	result := db.WithContext(ctx).Create(progress)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			logger.Debug("Progress record already exists", "learner_id", progress.LearnerID, "course_id", progress.CourseID)
			return model.ErrConflict
		}
		logger.Error("Error creating progress record", "error", result.Error, "learner_id", progress.LearnerID, "course_id", progress.CourseID)
		return fmt.Errorf("gormProgressRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormProgressRepository) UpdateVersioned(ctx context.Context, db *gorm.DB, progress *model.ProgressRecord) error {
	logger := middleware.GetLogger(ctx)

	updates := map[string]interface{}{
		"completed_lessons":        progress.CompletedLessons,
		"completed_lesson_count":   progress.CompletedLessonCount,
		"progress_percentage":      progress.ProgressPercentage,
		"total_time_spent_minutes": progress.TotalTimeSpentMinutes,
		"last_accessed_at":         progress.LastAccessedAt,
		"version":                  progress.Version + 1,
	}
	if progress.CompletedAt != nil {
		updates["completed_at"] = *progress.CompletedAt
	}
	if progress.CurrentPosition != nil {
		updates["current_position"] = *progress.CurrentPosition
	}

	result := db.WithContext(ctx).
		Model(&model.ProgressRecord{}).
		Where("progress_id = ? AND version = ?", progress.ProgressID, progress.Version).
		Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating progress record", "error", result.Error, "progress_id", progress.ProgressID)
		return fmt.Errorf("gormProgressRepository.UpdateVersioned: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		logger.Debug("Progress record version moved on", "progress_id", progress.ProgressID, "version", progress.Version)
		return model.ErrVersionConflict
	}
	progress.Version++
	return nil
}

func (r *gormProgressRepository) Touch(ctx context.Context, db *gorm.DB, progressID uuid.UUID, at time.Time) error {
	result := db.WithContext(ctx).
		Model(&model.ProgressRecord{}).
		Where("progress_id = ?", progressID).
		Update("last_accessed_at", at)
	if result.Error != nil {
		middleware.GetLogger(ctx).Error("Error touching progress record", "error", result.Error, "progress_id", progressID)
		return fmt.Errorf("gormProgressRepository.Touch: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormProgressRepository) Claim(ctx context.Context, db *gorm.DB, learnerID, courseID string, at time.Time) (bool, error) {
	result := db.WithContext(ctx).
		Model(&model.ProgressRecord{}).
		Where("learner_id = ? AND course_id = ? AND certificate_claimed = ? AND completed_at IS NOT NULL", learnerID, courseID, false).
		Updates(map[string]interface{}{
			"certificate_claimed":    true,
			"certificate_claimed_at": at,
		})
	if result.Error != nil {
		middleware.GetLogger(ctx).Error("Error claiming certificate", "error", result.Error, "learner_id", learnerID, "course_id", courseID)
		return false, fmt.Errorf("gormProgressRepository.Claim: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *gormProgressRepository) Reclaim(ctx context.Context, db *gorm.DB, progressID uuid.UUID, staleBefore, at time.Time) (bool, error) {
	result := db.WithContext(ctx).
		Model(&model.ProgressRecord{}).
		Where("progress_id = ? AND certificate_claimed = ? AND certificate_id IS NULL AND certificate_claimed_at < ?", progressID, true, staleBefore).
		Update("certificate_claimed_at", at)
	if result.Error != nil {
		middleware.GetLogger(ctx).Error("Error re-claiming stale certificate claim", "error", result.Error, "progress_id", progressID)
		return false, fmt.Errorf("gormProgressRepository.Reclaim: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *gormProgressRepository) SetCertificateID(ctx context.Context, db *gorm.DB, progressID, certificateID uuid.UUID) error {
	result := db.WithContext(ctx).
		Model(&model.ProgressRecord{}).
		Where("progress_id = ? AND certificate_id IS NULL", progressID).
		Update("certificate_id", certificateID)
	if result.Error != nil {
		middleware.GetLogger(ctx).Error("Error writing certificate back-reference", "error", result.Error, "progress_id", progressID)
		return fmt.Errorf("gormProgressRepository.SetCertificateID: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		middleware.GetLogger(ctx).Warn("Certificate back-reference already set or record missing", "progress_id", progressID)
	}
	return nil
}

func (r *gormProgressRepository) FindNeedingReconciliation(ctx context.Context, db *gorm.DB, staleBefore time.Time, limit int) ([]*model.ProgressRecord, error) {
	var records []*model.ProgressRecord

	result := db.WithContext(ctx).
		Where("completed_at IS NOT NULL AND certificate_id IS NULL").
		Where(
			db.Where("certificate_claimed = ? AND completed_at < ?", false, staleBefore).
				Or("certificate_claimed = ? AND certificate_claimed_at < ?", true, staleBefore),
		).
		Order("completed_at ASC").
		Limit(limit).
		Find(&records)
	if result.Error != nil {
		middleware.GetLogger(ctx).Error("Error listing records needing reconciliation", "error", result.Error)
		return nil, fmt.Errorf("gormProgressRepository.FindNeedingReconciliation: %w", result.Error)
	}
	return records, nil
}
