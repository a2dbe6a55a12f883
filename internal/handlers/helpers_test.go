package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go_course_certify/internal/config"
	"go_course_certify/internal/handlers"
	"go_course_certify/internal/model"
	"go_course_certify/internal/repository"
	"go_course_certify/internal/service"
	"go_course_certify/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	courseID     = "pp101"
	instructorID = "inst-mensah"
	learnerID    = "learner-asha"
)

// httpRequestDetails describes one request sent by sendRequest.
type httpRequestDetails struct {
	Method    string
	Path      string
	Body      interface{}
	LearnerID string
}

// testStack is the full HTTP surface over real services and fake collaborators.
type testStack struct {
	server    *httptest.Server
	db        *gorm.DB
	mailer    *testutil.RecordingMailer
	publisher *testutil.RecordingPublisher
}

func newTestStack(t *testing.T, db *gorm.DB) *testStack {
	t.Helper()

	engineCfg := config.EngineConfig{
		MaxWriteAttempts:       20,
		BackoffInitial:         time.Millisecond,
		BackoffMax:             10 * time.Millisecond,
		ClaimGracePeriod:       30 * time.Second,
		VerificationCodeLength: 10,
		VerificationCodeTries:  5,
	}
	courses := testutil.NewFakeCatalog(
		model.CourseInfo{CourseID: courseID, Title: "Public Policy 101", InstructorID: instructorID, TotalLessons: 4, EstimatedMinutes: 100},
	)
	dir := &testutil.FakeDirectory{
		Names:  map[string]string{learnerID: "Asha Rao", instructorID: "Dr. Kofi Mensah"},
		Emails: map[string]string{learnerID: "asha@example.com"},
	}

	s := &testStack{
		db:        db,
		mailer:    &testutil.RecordingMailer{},
		publisher: &testutil.RecordingPublisher{},
	}
	progressRepo := repository.NewGormProgressRepository()
	certRepo := repository.NewGormCertificateRepository()
	certificates := service.NewCertificateService(db, certRepo, progressRepo, service.NewNotifier(s.mailer, s.publisher), engineCfg)
	coordinator := service.NewClaimCoordinator(db, progressRepo, certRepo, certificates, courses, dir, engineCfg.ClaimGracePeriod)
	progress := service.NewProgressService(db, progressRepo, courses, coordinator, service.NewRetryPolicy(engineCfg))

	corsCfg := config.CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Learner-ID"},
	}
	router := handlers.NewRouter(testLogger, db, handlers.Services{Progress: progress, Certificates: certificates}, corsCfg, 30*time.Second)

	s.server = httptest.NewServer(router)
	t.Cleanup(s.server.Close)
	return s
}

// sendRequest sends the request, asserts the status code and returns the body.
func sendRequest(t *testing.T, server *httptest.Server, details httpRequestDetails, expectedCode int) []byte {
	t.Helper()

	var reqBodyReader io.Reader
	if details.Body != nil {
		if strPayload, ok := details.Body.(string); ok {
			reqBodyReader = strings.NewReader(strPayload)
		} else {
			reqBodyBytes, err := json.Marshal(details.Body)
			require.NoError(t, err, "Failed to marshal request body")
			reqBodyReader = bytes.NewBuffer(reqBodyBytes)
		}
	}

	req, err := http.NewRequest(details.Method, server.URL+details.Path, reqBodyReader)
	require.NoError(t, err, "Failed to create request")
	if reqBodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if details.LearnerID != "" {
		req.Header.Set("X-Learner-ID", details.LearnerID)
	}

	resp, err := server.Client().Do(req)
	require.NoError(t, err, "Failed to execute request")
	defer resp.Body.Close()

	respBodyBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "Failed to read response body")
	assert.Equal(t, expectedCode, resp.StatusCode, "Status code mismatch, body: %s", respBodyBytes)

	return respBodyBytes
}

// verifyErrorResponse checks the error envelope carries the expected code.
func verifyErrorResponse(t *testing.T, bodyBytes []byte, expectedCode string) {
	t.Helper()
	var errResp model.APIErrorResponse
	require.NoError(t, json.Unmarshal(bodyBytes, &errResp), "error body is not JSON: %s", bodyBytes)
	assert.Equal(t, expectedCode, errResp.Error.Code)
}

// completeLesson posts a lesson completion and decodes the returned record.
func completeLesson(t *testing.T, s *testStack, learnerID, lessonID string, minutes int) progressBody {
	t.Helper()
	body := sendRequest(t, s.server, httpRequestDetails{
		Method:    http.MethodPost,
		Path:      "/api/v1/courses/" + courseID + "/lessons/" + lessonID + "/complete",
		Body:      map[string]int{"time_spent_minutes": minutes},
		LearnerID: learnerID,
	}, http.StatusOK)
	return decodeProgress(t, body)
}

// progressBody mirrors the JSON rendering of a progress record.
type progressBody struct {
	LearnerID             string                  `json:"learner_id"`
	CourseID              string                  `json:"course_id"`
	CompletedLessons      []model.CompletedLesson `json:"completed_lessons"`
	CompletedLessonCount  int                     `json:"completed_lesson_count"`
	CurrentPosition       *model.Position         `json:"current_position"`
	ProgressPercentage    int                     `json:"progress_percentage"`
	TotalTimeSpentMinutes int                     `json:"total_time_spent_minutes"`
	CompletedAt           *time.Time              `json:"completed_at"`
	CertificateClaimed    bool                    `json:"certificate_claimed"`
	CertificateID         *string                 `json:"certificate_id"`
}

func decodeProgress(t *testing.T, body []byte) progressBody {
	t.Helper()
	var p progressBody
	require.NoError(t, json.Unmarshal(body, &p), "progress body: %s", body)
	return p
}

func decodeCertificate(t *testing.T, body []byte) model.Certificate {
	t.Helper()
	var c model.Certificate
	require.NoError(t, json.Unmarshal(body, &c), "certificate body: %s", body)
	return c
}
