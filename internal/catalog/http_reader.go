package catalog

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go_course_certify/internal/middleware"
	"go_course_certify/internal/model"

	"github.com/go-resty/resty/v2"
)

// HTTPReader queries the catalog service at GET {baseURL}/courses/{courseID}.
type HTTPReader struct {
	client *resty.Client
}

func NewHTTPReader(baseURL string, timeout time.Duration) *HTTPReader {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(50 * time.Millisecond).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || resp.StatusCode() >= http.StatusInternalServerError
		})
	return &HTTPReader{client: client}
}

func (r *HTTPReader) GetCourseInfo(ctx context.Context, courseID string) (*model.CourseInfo, error) {
	logger := middleware.GetLogger(ctx)

	var course model.CourseInfo
	resp, err := r.client.R().
		SetContext(ctx).
		SetPathParam("courseID", courseID).
		SetResult(&course).
		Get("/courses/{courseID}")
	if err != nil {
		logger.Error("Catalog request failed", "error", err, "course_id", courseID)
		return nil, fmt.Errorf("catalog.HTTPReader.GetCourseInfo: %w", err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, model.ErrNotFound
	case resp.IsError():
		logger.Error("Catalog returned an error status", "status", resp.StatusCode(), "course_id", courseID)
		return nil, fmt.Errorf("catalog.HTTPReader.GetCourseInfo: status %d: %w", resp.StatusCode(), model.ErrInternalServer)
	}

	if course.CourseID == "" {
		course.CourseID = courseID
	}
	return &course, nil
}

func (r *HTTPReader) GetTotalLessonCount(ctx context.Context, courseID string) (int, error) {
	course, err := r.GetCourseInfo(ctx, courseID)
	if err != nil {
		return 0, err
	}
	return course.TotalLessons, nil
}
