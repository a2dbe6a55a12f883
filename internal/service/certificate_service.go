package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go_course_certify/internal/completion"
	"go_course_certify/internal/config"
	"go_course_certify/internal/middleware"
	"go_course_certify/internal/model"
	"go_course_certify/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CertificateService is the Certificate Issuer plus the public certificate reads.
type CertificateService interface {
	// IssueCertificate must only be called by the holder of the claim for rec.
	IssueCertificate(ctx context.Context, rec *model.ProgressRecord, course *model.CourseInfo, learner *model.LearnerDisplayInfo) (*model.Certificate, error)
	FindByVerificationCode(ctx context.Context, code string) (*model.Certificate, error)
	FindByCertificateID(ctx context.Context, certificateID uuid.UUID) (*model.Certificate, error)
	IncrementDownloadCount(ctx context.Context, certificateID uuid.UUID) error
}

type certificateService struct {
	db           *gorm.DB
	certRepo     repository.CertificateRepository
	progressRepo repository.ProgressRepository
	notifier     Notifier

	newCode   CodeGenerator
	codeTries int
	grade     completion.GradeFunc
	now       func() time.Time
}

func NewCertificateService(db *gorm.DB, certRepo repository.CertificateRepository, progressRepo repository.ProgressRepository, notifier Notifier, cfg config.EngineConfig) CertificateService {
	return &certificateService{
		db:           db,
		certRepo:     certRepo,
		progressRepo: progressRepo,
		notifier:     notifier,
		newCode:      NewRandomCodeGenerator(cfg.VerificationCodeLength),
		codeTries:    cfg.VerificationCodeTries,
		grade:        completion.Grade,
		now:          utcNow,
	}
}

func utcNow() time.Time {
	return time.Now().UTC()
}

func (s *certificateService) IssueCertificate(ctx context.Context, rec *model.ProgressRecord, course *model.CourseInfo, learner *model.LearnerDisplayInfo) (*model.Certificate, error) {
	logger := middleware.GetLogger(ctx).With("learner_id", rec.LearnerID, "course_id", rec.CourseID)

	if !rec.IsCompleted() {
		return nil, model.NewAppError("COURSE_NOT_COMPLETED", "The course has not been completed.", "", model.ErrConflict)
	}

	// A previous holder of the claim may have persisted the certificate and
	// crashed before the back-reference was written.
	existing, err := s.certRepo.FindByLearnerCourse(ctx, s.db, rec.LearnerID, rec.CourseID)
	switch {
	case err == nil:
		logger.Info("Certificate already exists, repairing back-reference", "certificate_id", existing.CertificateID.String())
		s.linkCertificate(ctx, rec, existing)
		return existing, nil
	case !errors.Is(err, model.ErrNotFound):
		return nil, internalError("certificateService.IssueCertificate", err)
	}

	now := s.now()
	cert := &model.Certificate{
		CertificateID:  uuid.New(),
		LearnerID:      rec.LearnerID,
		CourseID:       rec.CourseID,
		StudentName:    learner.StudentName,
		CourseName:     course.Title,
		InstructorName: learner.InstructorName,
		CompletionDate: *rec.CompletedAt,
		Grade: s.grade(completion.Signals{
			Percentage:            rec.ProgressPercentage,
			TotalTimeSpentMinutes: rec.TotalTimeSpentMinutes,
			EstimatedMinutes:      course.EstimatedMinutes,
		}),
		IssueDate: now,
	}

	for attempt := 1; attempt <= s.codeTries; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, internalError("certificateService.IssueCertificate", err)
		}

		exists, err := s.certRepo.VerificationCodeExists(ctx, s.db, code)
		if err != nil {
			return nil, internalError("certificateService.IssueCertificate", err)
		}
		if exists {
			logger.Info("Verification code collision, regenerating", "attempt", attempt)
			continue
		}

		cert.VerificationCode = code
		err = s.certRepo.Create(ctx, s.db, cert)
		if err == nil {
			logger.Info("Certificate issued",
				"certificate_id", cert.CertificateID.String(),
				"verification_code", cert.VerificationCode,
				"grade", cert.Grade,
			)
			s.linkCertificate(ctx, rec, cert)
			if s.notifier != nil {
				s.notifier.CertificateIssued(ctx, cert, learner.Email)
			}
			return cert, nil
		}
		if !errors.Is(err, model.ErrConflict) {
			return nil, internalError("certificateService.IssueCertificate", err)
		}

		// Either the code was taken between the check and the insert, or the
		// pair already has a certificate.
		if other, findErr := s.certRepo.FindByLearnerCourse(ctx, s.db, rec.LearnerID, rec.CourseID); findErr == nil {
			logger.Warn("Certificate created concurrently for the same pair", "certificate_id", other.CertificateID.String())
			s.linkCertificate(ctx, rec, other)
			return other, nil
		}
		logger.Info("Verification code taken at insert, regenerating", "attempt", attempt)
	}

	logger.Error("Could not allocate a unique verification code", "tries", s.codeTries)
	return nil, model.NewAppError("CERTIFICATE_CONFLICT", "Could not allocate a unique verification code.", "", model.ErrConflict)
}

// linkCertificate writes the back-reference. A failure leaves a valid
// certificate that reconciliation re-links later.
func (s *certificateService) linkCertificate(ctx context.Context, rec *model.ProgressRecord, cert *model.Certificate) {
	if err := s.progressRepo.SetCertificateID(ctx, s.db, rec.ProgressID, cert.CertificateID); err != nil {
		middleware.GetLogger(ctx).Error("Failed to link certificate to progress record",
			"error", err,
			"progress_id", rec.ProgressID.String(),
			"certificate_id", cert.CertificateID.String(),
		)
		return
	}
	id := cert.CertificateID
	rec.CertificateID = &id
}

func (s *certificateService) FindByVerificationCode(ctx context.Context, code string) (*model.Certificate, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, invalidInputError("INVALID_VERIFICATION_CODE", "verification_code is required.", "verification_code")
	}
	cert, err := s.certRepo.FindByVerificationCode(ctx, s.db, code)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, notFoundError("CERTIFICATE_NOT_FOUND", "No certificate matches this verification code.", "verification_code")
		}
		return nil, internalError("certificateService.FindByVerificationCode", err)
	}
	return cert, nil
}

func (s *certificateService) FindByCertificateID(ctx context.Context, certificateID uuid.UUID) (*model.Certificate, error) {
	cert, err := s.certRepo.FindByID(ctx, s.db, certificateID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, notFoundError("CERTIFICATE_NOT_FOUND", "Certificate not found.", "certificate_id")
		}
		return nil, internalError("certificateService.FindByCertificateID", err)
	}
	return cert, nil
}

// IncrementDownloadCount reports unknown certificates. Storage failures are
// logged and dropped since the counter carries no invariant.
func (s *certificateService) IncrementDownloadCount(ctx context.Context, certificateID uuid.UUID) error {
	err := s.certRepo.IncrementDownloadCount(ctx, s.db, certificateID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrNotFound):
		return notFoundError("CERTIFICATE_NOT_FOUND", "Certificate not found.", "certificate_id")
	default:
		middleware.GetLogger(ctx).Warn("Download count not incremented", "error", err, "certificate_id", certificateID.String())
		return nil
	}
}
