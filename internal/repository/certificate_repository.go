//go:generate mockery --name CertificateRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"go_course_certify/internal/middleware"
	"go_course_certify/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CertificateRepository is the Certificate Store.
type CertificateRepository interface {
	// Create returns model.ErrConflict when the verification code or the
	// (learner, course) pair is already taken.
	Create(ctx context.Context, db *gorm.DB, certificate *model.Certificate) error
	FindByID(ctx context.Context, db *gorm.DB, certificateID uuid.UUID) (*model.Certificate, error)
	FindByVerificationCode(ctx context.Context, db *gorm.DB, code string) (*model.Certificate, error)
	FindByLearnerCourse(ctx context.Context, db *gorm.DB, learnerID, courseID string) (*model.Certificate, error)
	VerificationCodeExists(ctx context.Context, db *gorm.DB, code string) (bool, error)
	IncrementDownloadCount(ctx context.Context, db *gorm.DB, certificateID uuid.UUID) error
}

type gormCertificateRepository struct{}

func NewGormCertificateRepository() CertificateRepository {
	return &gormCertificateRepository{}
}

func (r *gormCertificateRepository) Create(ctx context.Context, db *gorm.DB, certificate *model.Certificate) error {
	logger := middleware.GetLogger(ctx)

	result := db.WithContext(ctx).Create(certificate)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			logger.Warn("Certificate uniqueness violated",
				"learner_id", certificate.LearnerID,
				"course_id", certificate.CourseID,
				"verification_code", certificate.VerificationCode,
			)
			return model.ErrConflict
		}
		logger.Error("Error creating certificate in DB",
			"error", result.Error,
			"learner_id", certificate.LearnerID,
			"course_id", certificate.CourseID,
		)
		return fmt.Errorf("gormCertificateRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormCertificateRepository) FindByID(ctx context.Context, db *gorm.DB, certificateID uuid.UUID) (*model.Certificate, error) {
	return r.findOne(ctx, db, "FindByID", "certificate_id = ?", certificateID)
}

func (r *gormCertificateRepository) FindByVerificationCode(ctx context.Context, db *gorm.DB, code string) (*model.Certificate, error) {
	return r.findOne(ctx, db, "FindByVerificationCode", "verification_code = ?", code)
}

func (r *gormCertificateRepository) FindByLearnerCourse(ctx context.Context, db *gorm.DB, learnerID, courseID string) (*model.Certificate, error) {
	return r.findOne(ctx, db, "FindByLearnerCourse", "learner_id = ? AND course_id = ?", learnerID, courseID)
}

func (r *gormCertificateRepository) findOne(ctx context.Context, db *gorm.DB, op string, query string, args ...interface{}) (*model.Certificate, error) {
	var certificate model.Certificate
	result := db.WithContext(ctx).Where(query, args...).First(&certificate)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		middleware.GetLogger(ctx).Error("Error finding certificate in DB", "error", result.Error, "op", op)
		return nil, fmt.Errorf("gormCertificateRepository.%s: %w", op, result.Error)
	}
	return &certificate, nil
}

func (r *gormCertificateRepository) VerificationCodeExists(ctx context.Context, db *gorm.DB, code string) (bool, error) {
	var count int64
	result := db.WithContext(ctx).Model(&model.Certificate{}).Where("verification_code = ?", code).Count(&count)
	if result.Error != nil {
		middleware.GetLogger(ctx).Error("Error checking verification code existence", "error", result.Error)
		return false, fmt.Errorf("gormCertificateRepository.VerificationCodeExists: %w", result.Error)
	}
	return count > 0, nil
}

func (r *gormCertificateRepository) IncrementDownloadCount(ctx context.Context, db *gorm.DB, certificateID uuid.UUID) error {
	result := db.WithContext(ctx).
		Model(&model.Certificate{}).
		Where("certificate_id = ?", certificateID).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", 1))
	if result.Error != nil {
		middleware.GetLogger(ctx).Error("Error incrementing download count", "error", result.Error, "certificate_id", certificateID.String())
		return fmt.Errorf("gormCertificateRepository.IncrementDownloadCount: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
