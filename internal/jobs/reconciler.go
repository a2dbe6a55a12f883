// Package jobs runs background maintenance for the certificate engine.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go_course_certify/internal/config"
	"go_course_certify/internal/middleware"
	"go_course_certify/internal/repository"
	"go_course_certify/internal/service"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Reconciler periodically finishes completions whose certificate step never
// ran or stalled past the claim grace period.
type Reconciler struct {
	db           *gorm.DB
	progressRepo repository.ProgressRepository
	coordinator  service.ClaimCoordinator
	cfg          config.ReconcileConfig
	gracePeriod  time.Duration
	logger       *slog.Logger
	now          func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

func NewReconciler(db *gorm.DB, progressRepo repository.ProgressRepository, coordinator service.ClaimCoordinator, cfg config.ReconcileConfig, gracePeriod time.Duration, logger *slog.Logger) *Reconciler {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = config.DefaultReconcileBatchSize
	}
	// errgroup treats a zero limit as "no goroutines at all".
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Reconciler{
		db:           db,
		progressRepo: progressRepo,
		coordinator:  coordinator,
		cfg:          cfg,
		gracePeriod:  gracePeriod,
		logger:       logger.With("job", "certificate_reconcile"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// RunOnce reconciles one batch and returns how many records got a certificate.
// Failures on single records are logged and do not stop the batch.
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	ctx = middleware.WithLogger(ctx, r.logger)
	staleBefore := r.now().Add(-r.gracePeriod)

	records, err := r.progressRepo.FindNeedingReconciliation(ctx, r.db, staleBefore, r.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("Reconciler.RunOnce: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}
	r.logger.Info("Reconciling certificate claims", "records", len(records))

	var resolved atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)

	for _, rec := range records {
		g.Go(func() error {
			cert, err := r.coordinator.Reconcile(gctx, rec)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				r.logger.Warn("Reconciliation failed",
					"error", err,
					"learner_id", rec.LearnerID,
					"course_id", rec.CourseID,
				)
				return nil
			}
			if cert != nil {
				resolved.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(resolved.Load()), fmt.Errorf("Reconciler.RunOnce: %w", err)
	}

	r.logger.Info("Reconciliation batch finished", "records", len(records), "resolved", resolved.Load())
	return int(resolved.Load()), nil
}

// Start schedules RunOnce on cfg.Schedule. Overlapping runs are skipped.
func (r *Reconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return errors.New("Reconciler.Start: already started")
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(r.cfg.Schedule, func() {
		if _, err := r.RunOnce(ctx); err != nil {
			r.logger.Error("Reconciliation run failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("Reconciler.Start: invalid schedule %q: %w", r.cfg.Schedule, err)
	}
	c.Start()
	r.cron = c
	r.logger.Info("Reconciliation scheduler started", "schedule", r.cfg.Schedule)
	return nil
}

// Stop halts the schedule and waits for a running batch to finish.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	r.logger.Info("Reconciliation scheduler stopped")
}
