package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go_course_certify/internal/config"
	"go_course_certify/internal/middleware"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

// SendGridMailer sends plain-text mail through the SendGrid v3 API.
type SendGridMailer struct {
	key  string
	host string
	from *sgmail.Email
}

func NewSendGridMailer(cfg *config.SendGridConfig) (*SendGridMailer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("service.NewSendGridMailer: missing api_key")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, errors.New("service.NewSendGridMailer: missing from address")
	}
	return &SendGridMailer{
		key:  cfg.APIKey,
		host: sendGridHost,
		from: sgmail.NewEmail(cfg.FromName, cfg.From),
	}, nil
}

func (m *SendGridMailer) Send(ctx context.Context, to, subject, body string) error {
	logger := middleware.GetLogger(ctx)

	p := sgmail.NewPersonalization()
	p.Subject = subject
	p.AddTos(sgmail.NewEmail("", to))

	message := sgmail.NewV3Mail()
	message.SetFrom(m.from)
	message.AddPersonalizations(p)
	message.AddContent(sgmail.NewContent("text/plain", body))

	req := sendgrid.GetRequest(m.key, sendGridEndpoint, m.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(message)

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		logger.Error("Failed to send email via SendGrid", "error", err, "to", to)
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		logger.Error("SendGrid rejected email", "status", res.StatusCode, "body", res.Body, "to", to)
		return fmt.Errorf("sendgrid: unexpected status %d", res.StatusCode)
	}

	logger.Info("Email sent successfully via SendGrid", "to", to, "subject", subject)
	return nil
}
