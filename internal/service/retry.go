package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go_course_certify/internal/config"
	"go_course_certify/internal/middleware"
	"go_course_certify/internal/model"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy bounds the optimistic-concurrency retries on progress writes.
type RetryPolicy struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func NewRetryPolicy(cfg config.EngineConfig) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     uint(cfg.MaxWriteAttempts),
		InitialInterval: cfg.BackoffInitial,
		MaxInterval:     cfg.BackoffMax,
	}
}

func (p RetryPolicy) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.RandomizationFactor = 0.5
	b.Multiplier = 2
	return b
}

// retryVersioned runs op until it returns something other than
// model.ErrVersionConflict or the attempts run out. Exhaustion surfaces as a
// Conflict AppError; a done context surfaces as an Internal AppError wrapping
// the context's cause; every other error is returned unchanged.
func retryVersioned[T any](ctx context.Context, p RetryPolicy, op func() (T, error)) (T, error) {
	logger := middleware.GetLogger(ctx)
	attempt := 0

	res, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		v, err := op()
		if err == nil {
			return v, nil
		}
		if errors.Is(err, model.ErrVersionConflict) {
			return v, err
		}
		return v, backoff.Permanent(err)
	},
		backoff.WithBackOff(p.backOff()),
		backoff.WithMaxTries(p.MaxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Debug("Retrying progress write", "attempt", attempt, "next_in", next, "error", err)
		}),
	)
	if err != nil && ctx.Err() != nil {
		logger.Warn("Progress write abandoned, request context is done", "attempts", attempt, "error", err)
		return res, model.NewAppError("REQUEST_ABANDONED", "The request ended before progress was saved. Please retry.", "",
			fmt.Errorf("%w: %w", model.ErrInternalServer, context.Cause(ctx)))
	}
	if err != nil && errors.Is(err, model.ErrVersionConflict) {
		logger.Warn("Progress write gave up after concurrent updates", "attempts", attempt)
		return res, model.NewAppError("WRITE_CONFLICT", "The progress record is being updated concurrently. Please retry.", "", model.ErrConflict)
	}
	return res, err
}
