package service

import (
	"context"
	"fmt"

	"go_course_certify/internal/events"
	"go_course_certify/internal/middleware"
	"go_course_certify/internal/model"
)

// Notifier announces a freshly issued certificate. It never fails the caller.
type Notifier interface {
	CertificateIssued(ctx context.Context, cert *model.Certificate, email string)
}

type certificateNotifier struct {
	mailer    Mailer
	publisher events.Publisher
}

func NewNotifier(mailer Mailer, publisher events.Publisher) Notifier {
	return &certificateNotifier{mailer: mailer, publisher: publisher}
}

func (n *certificateNotifier) CertificateIssued(ctx context.Context, cert *model.Certificate, email string) {
	logger := middleware.GetLogger(ctx).With("certificate_id", cert.CertificateID.String())

	if n.publisher != nil {
		if err := n.publisher.PublishCertificateIssued(ctx, model.NewCertificateIssuedEvent(cert)); err != nil {
			logger.Warn("Failed to publish certificate issued event", "error", err)
		}
	}

	if n.mailer == nil {
		return
	}
	if email == "" {
		logger.Debug("Learner has no email address, skipping certificate mail")
		return
	}
	subject, body := certificateEmail(cert)
	if err := n.mailer.Send(ctx, email, subject, body); err != nil {
		logger.Warn("Failed to send certificate mail", "error", err)
	}
}

func certificateEmail(cert *model.Certificate) (string, string) {
	subject := fmt.Sprintf("Your certificate for %s", cert.CourseName)
	body := fmt.Sprintf(
		"Congratulations %s!\n\n"+
			"You completed %s on %s with the grade %s.\n"+
			"Anyone can confirm your certificate with the verification code %s.\n",
		cert.StudentName,
		cert.CourseName,
		cert.CompletionDate.Format("2 January 2006"),
		cert.Grade,
		cert.VerificationCode,
	)
	return subject, body
}
