package middleware

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type logCtxKey struct{}

// maxLoggedBody caps request and response bodies in debug logs.
const maxLoggedBody = 4 << 10

// Header values replaced by a placeholder in debug logs. Lower case.
var sensitiveHeaders = map[string]bool{
	"authorization": true,
	"cookie":        true,
	"set-cookie":    true,
	"x-api-key":     true,
	"x-csrf-token":  true,
}

// statusRecorder tracks the status and size of a response. The body is only
// kept when capture is set.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int
	capture *bytes.Buffer
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(b)
	sr.written += n
	if sr.capture != nil && sr.capture.Len() < maxLoggedBody {
		sr.capture.Write(b[:n])
	}
	return n, err
}

// LoggingMiddleware stores a request-scoped logger in the context and writes
// one access line per request, tagged with the matched chi route and the
// course it touched. Headers and bodies are logged at debug level.
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			debug := logger.Enabled(r.Context(), slog.LevelDebug)

			requestLogger := logger.With("req_id", middleware.GetReqID(r.Context()))
			r = r.WithContext(WithLogger(r.Context(), requestLogger))
			requestLogger.Info("Request started", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)

			var reqBody []byte
			if debug && r.Body != nil {
				reqBody, _ = io.ReadAll(r.Body)
				r.Body = io.NopCloser(bytes.NewReader(reqBody))
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			if debug {
				rec.capture = new(bytes.Buffer)
			}
			next.ServeHTTP(rec, r)

			attrs := []any{
				"method", r.Method,
				"status", rec.status,
				"latency_ms", float64(time.Since(started).Nanoseconds()) / 1e6,
				"bytes_out", rec.written,
			}
			attrs = append(attrs, routeAttrs(r)...)
			requestLogger.Log(r.Context(), levelForStatus(rec.status), "Request completed", attrs...)

			if debug {
				requestLogger.Debug("Request detail", "headers", formatHeaders(r.Header), "body", truncateBody(reqBody))
				requestLogger.Debug("Response detail", "headers", formatHeaders(rec.Header()), "body", truncateBody(rec.capture.Bytes()))
			}
		})
	}
}

// routeAttrs reads the chi route context after routing has run. Requests that
// matched no route log their raw path only.
func routeAttrs(r *http.Request) []any {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return nil
	}
	var attrs []any
	if pattern := rctx.RoutePattern(); pattern != "" {
		attrs = append(attrs, "route", pattern)
	}
	if courseID := rctx.URLParam("course_id"); courseID != "" {
		attrs = append(attrs, "course_id", courseID)
	}
	return attrs
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func truncateBody(b []byte) string {
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "...(truncated)"
	}
	return string(b)
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, logCtxKey{}, logger)
}

// GetLogger returns the request-scoped logger, or slog.Default().
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(logCtxKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

func formatHeaders(headers http.Header) map[string]string {
	result := make(map[string]string, len(headers))
	for key, values := range headers {
		if sensitiveHeaders[strings.ToLower(key)] {
			result[key] = "[SENSITIVE]"
			continue
		}
		result[key] = strings.Join(values, ", ")
	}
	return result
}
