package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"go_course_certify/internal/config"
	"go_course_certify/internal/model"
	"go_course_certify/internal/repository"
)

func main() {
	configDir := flag.String("config", "configs", "directory containing config.yaml")
	status := flag.Bool("status", false, "print row counts and pending certificate claims after migrating")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := config.LoadConfig(*configDir); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := repository.NewDB(config.Cfg.Database, logger)
	if err != nil {
		log.Fatalf("Failed to connect database using GORM: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying sql.DB: %v", err)
	}
	defer sqlDB.Close()

	if err := repository.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}
	fmt.Println("Migration completed.")

	if !*status {
		return
	}

	var progressCount, certificateCount int64
	if err := db.Model(&model.ProgressRecord{}).Count(&progressCount).Error; err != nil {
		log.Fatalf("Failed to count progress records: %v", err)
	}
	if err := db.Model(&model.Certificate{}).Count(&certificateCount).Error; err != nil {
		log.Fatalf("Failed to count certificates: %v", err)
	}
	fmt.Printf("progress_records: %d\n", progressCount)
	fmt.Printf("certificates:     %d\n", certificateCount)

	staleBefore := time.Now().UTC().Add(-config.Cfg.Engine.ClaimGracePeriod)
	pending, err := repository.NewGormProgressRepository().FindNeedingReconciliation(context.Background(), db, staleBefore, config.Cfg.Reconcile.BatchSize)
	if err != nil {
		log.Fatalf("Failed to list pending claims: %v", err)
	}
	fmt.Printf("awaiting reconciliation (first %d): %d\n", config.Cfg.Reconcile.BatchSize, len(pending))
	for _, rec := range pending {
		fmt.Printf("- learner=%s course=%s completed_at=%s claimed=%t\n",
			rec.LearnerID, rec.CourseID, rec.CompletedAt.Format(time.RFC3339), rec.CertificateClaimed)
	}
}
