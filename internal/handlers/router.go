package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"go_course_certify/internal/config"
	"go_course_certify/internal/middleware"
	"go_course_certify/internal/service"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Progress     service.ProgressService
	Certificates service.CertificateService
}

// NewRouter builds the full HTTP surface with the standard middleware chain.
func NewRouter(logger *slog.Logger, db *gorm.DB, svc Services, corsCfg config.CORSConfig, requestTimeout time.Duration) http.Handler {
	progressHandler := NewProgressHandler(svc.Progress, logger)
	certificateHandler := NewCertificateHandler(svc.Certificates, logger)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   corsCfg.AllowedOrigins,
		AllowedMethods:   corsCfg.AllowedMethods,
		AllowedHeaders:   corsCfg.AllowedHeaders,
		ExposedHeaders:   corsCfg.ExposedHeaders,
		AllowCredentials: corsCfg.AllowCredentials,
		MaxAge:           corsCfg.MaxAge,
	})
	r.Use(corsHandler.Handler)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/certificates/verify/{code}", certificateHandler.VerifyCertificate)

		r.Group(func(r chi.Router) {
			r.Use(middleware.LearnerContextMiddleware)

			r.Route("/courses/{course_id}", func(r chi.Router) {
				r.Post("/lessons/{lesson_id}/complete", progressHandler.CompleteLesson)
				r.Put("/position", progressHandler.UpdatePosition)
				r.Get("/progress", progressHandler.GetProgress)
			})

			r.Route("/certificates/{certificate_id}", func(r chi.Router) {
				r.Get("/", certificateHandler.GetCertificate)
				r.Post("/downloads", certificateHandler.RecordDownload)
			})
		})
	})

	r.Get("/health", healthHandler(db))
	return r
}

func healthHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.GetLogger(r.Context())
		sqlDB, err := db.DB()
		if err != nil {
			logger.Error("Health check failed: could not get DB object", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		if err := sqlDB.PingContext(r.Context()); err != nil {
			logger.Error("Health check failed: could not ping DB", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}
