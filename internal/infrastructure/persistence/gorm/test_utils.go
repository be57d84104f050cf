package gorm

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/narwhalmedia/moviecatalog/pkg/repository"
)

// NewTestDB creates a file-backed SQLite database under t.TempDir() with
// foreign keys enforced and the catalog schema migrated.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", filepath.Join(t.TempDir(), "catalog.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(zaptest.NewLogger(t), false),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(AllModels()...))
	return db
}

// SeedTestVocabulary inserts the given genres and countries
func SeedTestVocabulary(t testing.TB, db *gorm.DB, vocab Vocabulary) {
	t.Helper()
	require.NoError(t, SeedVocabulary(db, vocab))
}

// CountRows returns the number of rows in M's table
func CountRows[M any](t testing.TB, db *gorm.DB) int64 {
	t.Helper()
	n, err := repository.Count[M](context.Background(), db)
	require.NoError(t, err)
	return n
}
