package middleware

import (
	"context"
	"net/http"
	"strings"

	"go_course_certify/internal/model"
	"go_course_certify/internal/webutil"
)

// LearnerHeader carries the caller's learner identifier. Authentication happens
// upstream; this service only propagates the identity it is given.
const LearnerHeader = "X-Learner-ID"

type learnerCtxKey struct{}

// LearnerContextMiddleware copies the X-Learner-ID header into the request context.
func LearnerContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := GetLogger(r.Context())

		learnerID := strings.TrimSpace(r.Header.Get(LearnerHeader))
		if learnerID == "" {
			logger.Warn("Learner header missing")
			appErr := model.NewAppError("MISSING_LEARNER", "X-Learner-ID header is required.", LearnerHeader, model.ErrInvalidInput)
			webutil.HandleError(w, logger, appErr)
			return
		}
		if len(learnerID) > 128 {
			logger.Warn("Learner header too long", "length", len(learnerID))
			appErr := model.NewAppError("INVALID_LEARNER", "X-Learner-ID header is too long.", LearnerHeader, model.ErrInvalidInput)
			webutil.HandleError(w, logger, appErr)
			return
		}

		ctx := context.WithValue(r.Context(), learnerCtxKey{}, learnerID)
		ctx = WithLogger(ctx, logger.With("learner_id", learnerID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetLearnerIDFromContext returns the learner set by LearnerContextMiddleware.
func GetLearnerIDFromContext(ctx context.Context) (string, error) {
	value, ok := ctx.Value(learnerCtxKey{}).(string)
	if !ok || value == "" {
		return "", model.NewAppError("INTERNAL_SERVER_ERROR", "Learner identity missing from request context.", "", model.ErrInternalServer)
	}
	return value, nil
}
