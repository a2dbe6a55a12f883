// Package catalog reads course structure owned by the external catalog service.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go_course_certify/internal/config"
	"go_course_certify/internal/model"
)

// Reader is the read-only view of the course catalog. Both methods return
// model.ErrNotFound for unknown courses.
type Reader interface {
	GetTotalLessonCount(ctx context.Context, courseID string) (int, error)
	GetCourseInfo(ctx context.Context, courseID string) (*model.CourseInfo, error)
}

// StaticReader serves a fixed course list, typically from config.yaml.
type StaticReader struct {
	courses map[string]model.CourseInfo
}

func NewStaticReader(courses []model.CourseInfo) *StaticReader {
	m := make(map[string]model.CourseInfo, len(courses))
	for _, c := range courses {
		m[c.CourseID] = c
	}
	return &StaticReader{courses: m}
}

func (r *StaticReader) GetCourseInfo(_ context.Context, courseID string) (*model.CourseInfo, error) {
	c, ok := r.courses[courseID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &c, nil
}

func (r *StaticReader) GetTotalLessonCount(ctx context.Context, courseID string) (int, error) {
	c, err := r.GetCourseInfo(ctx, courseID)
	if err != nil {
		return 0, err
	}
	return c.TotalLessons, nil
}

// NewReader builds the Reader selected by cfg.Type.
func NewReader(cfg config.CatalogConfig) (Reader, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "static":
		slog.Info("Initializing static catalog", "courses", len(cfg.Courses))
		return NewStaticReader(cfg.Courses), nil
	case "http":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("catalog.NewReader: base_url is required for http catalog")
		}
		slog.Info("Initializing HTTP catalog", "base_url", cfg.BaseURL)
		return NewHTTPReader(cfg.BaseURL, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("catalog.NewReader: unknown catalog type %q", cfg.Type)
	}
}
