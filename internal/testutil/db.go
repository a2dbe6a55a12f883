// Package testutil holds database and collaborator helpers shared by package tests.
package testutil

import (
	"fmt"
	"testing"

	"go_course_certify/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB opens a fresh in-memory database with the engine schema.
// Each call gets its own database name so parallel tests never share rows.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "failed to open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.ProgressRecord{}, &model.Certificate{}), "failed to migrate")

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}
