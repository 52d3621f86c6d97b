// Package dbtest opens throwaway SQLite stores for tests.
package dbtest

import (
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"prompteria-api/database"
	"prompteria-api/logger"
)

const maxOpenConns = 4

// OpenDB returns a migrated SQLite database in a temp dir. It runs in WAL mode
// with several pooled connections so concurrent callers really interleave.
// Writers wait on the busy timeout, and transactions take the write lock up
// front so two of them never deadlock upgrading a read lock.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=10000&_journal_mode=WAL&_txlock=immediate"), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

// OpenHandle wraps a fresh test database in a connected Handle.
func OpenHandle(t *testing.T) (*database.Handle, *gorm.DB) {
	t.Helper()

	db := OpenDB(t)
	h := database.NewHandleWithOpener(func() (*gorm.DB, error) {
		return db, nil
	}, database.RetryConfig{MaxAttempts: 1, BaseDelay: time.Millisecond}, logger.NewNop())

	return h, db
}
