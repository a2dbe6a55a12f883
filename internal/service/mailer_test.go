package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go_course_certify/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMailer(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		cfg      config.Config
		wantType interface{}
		wantErr  bool
	}{
		{name: "log", cfg: config.Config{Mailer: config.MailerConfig{Type: "log"}}, wantType: &LogMailer{}},
		{name: "unknown falls back to log", cfg: config.Config{Mailer: config.MailerConfig{Type: "pigeon"}}, wantType: &LogMailer{}},
		{name: "smtp", cfg: config.Config{Mailer: config.MailerConfig{Type: "smtp"}, SMTP: config.SMTPConfig{Host: "localhost", Port: 1025}}, wantType: &SmtpMailer{}},
		{name: "sendgrid", cfg: config.Config{Mailer: config.MailerConfig{Type: "sendgrid"}, SendGrid: config.SendGridConfig{APIKey: "SG.key", From: "noreply@example.com"}}, wantType: &SendGridMailer{}},
		{name: "sendgrid without key", cfg: config.Config{Mailer: config.MailerConfig{Type: "sendgrid"}}, wantErr: true},
		{name: "ses static credentials missing", cfg: config.Config{Mailer: config.MailerConfig{Type: "ses"}, SES: config.SESConfig{Region: "us-east-1", AuthType: "static_credentials"}}, wantErr: true},
		{name: "ses static credentials", cfg: config.Config{Mailer: config.MailerConfig{Type: "ses"}, SES: config.SESConfig{Region: "us-east-1", AuthType: "static_credentials", AccessKeyID: "AKIA", SecretAccessKey: "secret"}}, wantType: &SESMailer{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			m, err := NewMailer(ctx, &cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, m)
		})
	}
}

func TestSendGridMailer_Send(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, sendGridEndpoint, r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m, err := NewSendGridMailer(&config.SendGridConfig{APIKey: "SG.key", From: "noreply@example.com", FromName: "Course Certificates"})
	require.NoError(t, err)
	m.host = srv.URL

	require.NoError(t, m.Send(context.Background(), "asha@example.com", "Your certificate", "Well done"))
	assert.Equal(t, "Bearer SG.key", gotAuth)
	require.NotNil(t, gotBody)
	assert.Equal(t, "noreply@example.com", gotBody["from"].(map[string]interface{})["email"])

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer failing.Close()
	m.host = failing.URL
	assert.Error(t, m.Send(context.Background(), "asha@example.com", "Your certificate", "Well done"))
}

func TestLogMailer_Send(t *testing.T) {
	assert.NoError(t, (&LogMailer{}).Send(context.Background(), "asha@example.com", "subject", "body"))
}
