package directory

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go_course_certify/internal/middleware"
	"go_course_certify/internal/model"

	"github.com/go-resty/resty/v2"
)

type userResponse struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// HTTPDirectory queries GET {baseURL}/users/{userID}.
type HTTPDirectory struct {
	client *resty.Client
}

func NewHTTPDirectory(baseURL string, timeout time.Duration) *HTTPDirectory {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &HTTPDirectory{client: client}
}

func (d *HTTPDirectory) fetch(ctx context.Context, userID string) (*userResponse, error) {
	logger := middleware.GetLogger(ctx)

	var user userResponse
	resp, err := d.client.R().
		SetContext(ctx).
		SetPathParam("userID", userID).
		SetResult(&user).
		Get("/users/{userID}")
	if err != nil {
		logger.Error("Directory request failed", "error", err, "user_id", userID)
		return nil, fmt.Errorf("directory.HTTPDirectory: %w", err)
	}
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, model.ErrNotFound
	case resp.IsError():
		logger.Error("Directory returned an error status", "status", resp.StatusCode(), "user_id", userID)
		return nil, fmt.Errorf("directory.HTTPDirectory: status %d: %w", resp.StatusCode(), model.ErrInternalServer)
	}
	return &user, nil
}

func (d *HTTPDirectory) GetDisplayName(ctx context.Context, userID string) (string, error) {
	user, err := d.fetch(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.DisplayName == "" {
		return userID, nil
	}
	return user.DisplayName, nil
}

func (d *HTTPDirectory) GetEmail(ctx context.Context, userID string) (string, error) {
	user, err := d.fetch(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}
