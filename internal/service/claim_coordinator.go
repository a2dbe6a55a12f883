package service

import (
	"context"
	"errors"
	"time"

	"go_course_certify/internal/catalog"
	"go_course_certify/internal/directory"
	"go_course_certify/internal/middleware"
	"go_course_certify/internal/model"
	"go_course_certify/internal/repository"

	"gorm.io/gorm"
)

// ClaimCoordinator makes the move from "completed" to "certificate issued"
// happen at most once per (learner, course).
type ClaimCoordinator interface {
	TryClaim(ctx context.Context, learnerID, courseID string) (model.ClaimOutcome, error)
	// HandleCompletion claims rec and issues its certificate if the claim was
	// won. It returns nil when another caller holds the claim.
	HandleCompletion(ctx context.Context, rec *model.ProgressRecord) (*model.Certificate, error)
	// Reconcile finishes a completed record that was never claimed, or whose
	// claim is older than the grace period without a certificate.
	Reconcile(ctx context.Context, rec *model.ProgressRecord) (*model.Certificate, error)
	NeedsReconciliation(rec *model.ProgressRecord, now time.Time) bool
}

type claimCoordinator struct {
	db           *gorm.DB
	progressRepo repository.ProgressRepository
	certRepo     repository.CertificateRepository
	certificates CertificateService
	catalog      catalog.Reader
	directory    directory.Directory
	gracePeriod  time.Duration
	now          func() time.Time
}

func NewClaimCoordinator(
	db *gorm.DB,
	progressRepo repository.ProgressRepository,
	certRepo repository.CertificateRepository,
	certificates CertificateService,
	catalogReader catalog.Reader,
	dir directory.Directory,
	gracePeriod time.Duration,
) ClaimCoordinator {
	return &claimCoordinator{
		db:           db,
		progressRepo: progressRepo,
		certRepo:     certRepo,
		certificates: certificates,
		catalog:      catalogReader,
		directory:    dir,
		gracePeriod:  gracePeriod,
		now:          utcNow,
	}
}

func (c *claimCoordinator) TryClaim(ctx context.Context, learnerID, courseID string) (model.ClaimOutcome, error) {
	won, err := c.progressRepo.Claim(ctx, c.db, learnerID, courseID, c.now())
	if err != nil {
		return 0, internalError("claimCoordinator.TryClaim", err)
	}
	if won {
		middleware.GetLogger(ctx).Info("Certificate claim won", "learner_id", learnerID, "course_id", courseID)
		return model.Claimed, nil
	}

	rec, err := c.progressRepo.FindByKey(ctx, c.db, learnerID, courseID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return 0, notFoundError("PROGRESS_NOT_FOUND", "No progress recorded for this course.", "course_id")
		}
		return 0, internalError("claimCoordinator.TryClaim", err)
	}
	switch {
	case rec.HasCertificate():
		return model.AlreadyIssued, nil
	case rec.CertificateClaimed:
		return model.AlreadyClaimed, nil
	default:
		return 0, model.NewAppError("COURSE_NOT_COMPLETED", "The course has not been completed.", "", model.ErrConflict)
	}
}

func (c *claimCoordinator) HandleCompletion(ctx context.Context, rec *model.ProgressRecord) (*model.Certificate, error) {
	logger := middleware.GetLogger(ctx)

	outcome, err := c.TryClaim(ctx, rec.LearnerID, rec.CourseID)
	if err != nil {
		return nil, err
	}
	switch outcome {
	case model.Claimed:
		rec.CertificateClaimed = true
		return c.issue(ctx, rec)
	case model.AlreadyIssued:
		cert, err := c.certRepo.FindByLearnerCourse(ctx, c.db, rec.LearnerID, rec.CourseID)
		if err != nil {
			logger.Warn("Certificate marked issued but not readable", "error", err, "learner_id", rec.LearnerID, "course_id", rec.CourseID)
			return nil, nil
		}
		return cert, nil
	default:
		logger.Debug("Certificate claim held by another caller", "learner_id", rec.LearnerID, "course_id", rec.CourseID, "outcome", outcome.String())
		return nil, nil
	}
}

func (c *claimCoordinator) NeedsReconciliation(rec *model.ProgressRecord, now time.Time) bool {
	if rec == nil || !rec.IsCompleted() || rec.HasCertificate() {
		return false
	}
	if !rec.CertificateClaimed {
		return true
	}
	return c.claimIsStale(rec, now)
}

func (c *claimCoordinator) claimIsStale(rec *model.ProgressRecord, now time.Time) bool {
	return rec.CertificateClaimedAt == nil || rec.CertificateClaimedAt.Before(now.Add(-c.gracePeriod))
}

func (c *claimCoordinator) Reconcile(ctx context.Context, rec *model.ProgressRecord) (*model.Certificate, error) {
	logger := middleware.GetLogger(ctx).With("learner_id", rec.LearnerID, "course_id", rec.CourseID)
	now := c.now()

	if !c.NeedsReconciliation(rec, now) {
		return nil, nil
	}
	if !rec.CertificateClaimed {
		logger.Info("Reconciling completed record without a claim")
		return c.HandleCompletion(ctx, rec)
	}

	// The certificate may exist with only the back-reference missing.
	existing, err := c.certRepo.FindByLearnerCourse(ctx, c.db, rec.LearnerID, rec.CourseID)
	switch {
	case err == nil:
		logger.Info("Repairing certificate back-reference", "certificate_id", existing.CertificateID.String())
		if err := c.progressRepo.SetCertificateID(ctx, c.db, rec.ProgressID, existing.CertificateID); err != nil {
			return nil, internalError("claimCoordinator.Reconcile", err)
		}
		id := existing.CertificateID
		rec.CertificateID = &id
		return existing, nil
	case !errors.Is(err, model.ErrNotFound):
		return nil, internalError("claimCoordinator.Reconcile", err)
	}

	won, err := c.progressRepo.Reclaim(ctx, c.db, rec.ProgressID, now.Add(-c.gracePeriod), now)
	if err != nil {
		return nil, internalError("claimCoordinator.Reconcile", err)
	}
	if !won {
		logger.Debug("Stale claim already taken over by another caller")
		return nil, nil
	}
	logger.Warn("Re-attempting issuance for stale certificate claim")
	rec.CertificateClaimedAt = &now
	return c.issue(ctx, rec)
}

// issue gathers display data and hands the claimed record to the issuer.
func (c *claimCoordinator) issue(ctx context.Context, rec *model.ProgressRecord) (*model.Certificate, error) {
	course, err := c.catalog.GetCourseInfo(ctx, rec.CourseID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, notFoundError("COURSE_NOT_FOUND", "Course not found in catalog.", "course_id")
		}
		return nil, internalError("claimCoordinator.issue", err)
	}

	learner, err := c.displayInfo(ctx, rec.LearnerID, course.InstructorID)
	if err != nil {
		return nil, internalError("claimCoordinator.issue", err)
	}

	return c.certificates.IssueCertificate(ctx, rec, course, learner)
}

func (c *claimCoordinator) displayInfo(ctx context.Context, learnerID, instructorID string) (*model.LearnerDisplayInfo, error) {
	studentName, err := c.directory.GetDisplayName(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	email, err := c.directory.GetEmail(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	info := &model.LearnerDisplayInfo{
		LearnerID:   learnerID,
		StudentName: studentName,
		Email:       email,
	}
	if instructorID != "" {
		if info.InstructorName, err = c.directory.GetDisplayName(ctx, instructorID); err != nil {
			return nil, err
		}
	}
	return info, nil
}
