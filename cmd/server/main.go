package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"go_course_certify/internal/catalog"
	"go_course_certify/internal/config"
	"go_course_certify/internal/directory"
	"go_course_certify/internal/events"
	"go_course_certify/internal/handlers"
	"go_course_certify/internal/jobs"
	"go_course_certify/internal/repository"
	"go_course_certify/internal/service"
)

func main() {
	configDir := flag.String("config", "configs", "directory containing config.yaml")
	flag.Parse()

	// Temporary logger until the configured level is known.
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)

	if err := config.LoadConfig(*configDir); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := &config.Cfg

	logger := newLogger(cfg.Log.Level, tempLogger)
	slog.SetDefault(logger)
	slog.Info("Application starting...", slog.String("app", config.AppName), slog.String("version", config.AppVersion))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Database
	db, err := repository.NewDB(cfg.Database, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("Database connection closed.")
		}
	}()
	if err := repository.Migrate(db); err != nil {
		slog.Error("Error migrating database", slog.Any("error", err))
		os.Exit(1)
	}

	// 2. Collaborators
	catalogReader, err := catalog.NewReader(cfg.Catalog)
	if err != nil {
		slog.Error("Error initializing course catalog", slog.Any("error", err))
		os.Exit(1)
	}
	dir, err := directory.NewDirectory(cfg.Directory)
	if err != nil {
		slog.Error("Error initializing user directory", slog.Any("error", err))
		os.Exit(1)
	}
	publisher, err := events.NewPublisher(ctx, cfg.Events)
	if err != nil {
		slog.Error("Error initializing event publisher", slog.Any("error", err))
		os.Exit(1)
	}
	if closer, ok := publisher.(interface{ Close() error }); ok {
		defer closer.Close()
	}
	mailer, err := service.NewMailer(ctx, cfg)
	if err != nil {
		slog.Error("Error initializing mailer", slog.Any("error", err))
		os.Exit(1)
	}

	// 3. Dependency Injection
	progressRepo := repository.NewGormProgressRepository()
	certRepo := repository.NewGormCertificateRepository()

	notifier := service.NewNotifier(mailer, publisher)
	certificateService := service.NewCertificateService(db, certRepo, progressRepo, notifier, cfg.Engine)
	coordinator := service.NewClaimCoordinator(db, progressRepo, certRepo, certificateService, catalogReader, dir, cfg.Engine.ClaimGracePeriod)
	progressService := service.NewProgressService(db, progressRepo, catalogReader, coordinator, service.NewRetryPolicy(cfg.Engine))

	// 4. Reconciliation sweep
	var reconciler *jobs.Reconciler
	if cfg.Reconcile.Enabled {
		reconciler = jobs.NewReconciler(db, progressRepo, coordinator, cfg.Reconcile, cfg.Engine.ClaimGracePeriod, logger)
		if err := reconciler.Start(ctx); err != nil {
			slog.Error("Error starting reconciliation scheduler", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// 5. Router
	router := handlers.NewRouter(logger, db, handlers.Services{
		Progress:     progressService,
		Certificates: certificateService,
	}, cfg.CORS, cfg.Server.RequestTimeout)

	// 6. Start Server
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", cfg.Server.Port), slog.Any("error", err))
			stop()
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}
	if reconciler != nil {
		reconciler.Stop()
	}

	log.Println("Server exiting")
}

// newLogger builds the application logger. APP_ENV=dev gets colored tint
// output, everything else JSON.
func newLogger(level string, tempLogger *slog.Logger) *slog.Logger {
	logLevel := new(slog.LevelVar)
	switch strings.ToLower(level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
		tempLogger.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", level))
	}

	var handler slog.Handler
	appEnv := os.Getenv("APP_ENV")
	if strings.ToLower(appEnv) == "dev" {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		})
		tempLogger.Info("Using TINT log handler", slog.String("APP_ENV", appEnv))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})
		tempLogger.Info("Using JSON log handler", slog.String("APP_ENV", appEnv))
	}
	return slog.New(handler)
}
