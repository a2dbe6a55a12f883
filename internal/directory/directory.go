// Package directory resolves learner and instructor ids to display data.
package directory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go_course_certify/internal/config"
)

// Directory is the learner/instructor directory collaborator.
type Directory interface {
	GetDisplayName(ctx context.Context, userID string) (string, error)
	GetEmail(ctx context.Context, userID string) (string, error)
}

// StaticDirectory serves users listed in config. Unknown users resolve to their
// id as display name and an empty email.
type StaticDirectory struct {
	users map[string]config.DirectoryUser
}

func NewStaticDirectory(users []config.DirectoryUser) *StaticDirectory {
	m := make(map[string]config.DirectoryUser, len(users))
	for _, u := range users {
		m[u.UserID] = u
	}
	return &StaticDirectory{users: m}
}

func (d *StaticDirectory) GetDisplayName(_ context.Context, userID string) (string, error) {
	if u, ok := d.users[userID]; ok && u.DisplayName != "" {
		return u.DisplayName, nil
	}
	return userID, nil
}

func (d *StaticDirectory) GetEmail(_ context.Context, userID string) (string, error) {
	return d.users[userID].Email, nil
}

// NewDirectory builds the Directory selected by cfg.Type.
func NewDirectory(cfg config.DirectoryConfig) (Directory, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "static":
		slog.Info("Initializing static directory", "users", len(cfg.Users))
		return NewStaticDirectory(cfg.Users), nil
	case "http":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("directory.NewDirectory: base_url is required for http directory")
		}
		slog.Info("Initializing HTTP directory", "base_url", cfg.BaseURL)
		return NewHTTPDirectory(cfg.BaseURL, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("directory.NewDirectory: unknown directory type %q", cfg.Type)
	}
}
