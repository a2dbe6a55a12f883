// Package events publishes certificate-issued records for the external
// certificate renderer.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go_course_certify/internal/config"
	"go_course_certify/internal/middleware"
	"go_course_certify/internal/model"
)

type Publisher interface {
	PublishCertificateIssued(ctx context.Context, event model.CertificateIssuedEvent) error
}

// LogPublisher writes the event to the request logger.
type LogPublisher struct{}

func (p *LogPublisher) PublishCertificateIssued(ctx context.Context, event model.CertificateIssuedEvent) error {
	middleware.GetLogger(ctx).Info("Certificate issued event",
		"certificate_id", event.CertificateID.String(),
		"verification_code", event.VerificationCode,
		"learner_id", event.LearnerID,
		"course_id", event.CourseID,
		"grade", event.Grade,
	)
	return nil
}

// NewPublisher builds the Publisher selected by cfg.Type.
func NewPublisher(ctx context.Context, cfg config.EventsConfig) (Publisher, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "log":
		slog.Info("Initializing log event publisher")
		return &LogPublisher{}, nil
	case "redis":
		slog.Info("Initializing Redis event publisher", "addr", cfg.RedisAddr, "channel", cfg.Channel)
		p, err := DialRedisPublisher(ctx, cfg.RedisAddr, cfg.Channel)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("events.NewPublisher: unknown events type %q", cfg.Type)
	}
}
