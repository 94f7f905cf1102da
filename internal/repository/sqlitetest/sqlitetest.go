// Package sqlitetest opens throwaway SQLite record stores for tests.
package sqlitetest

import (
	"path/filepath"
	"testing"

	"github.com/timmy/memebazaar/internal/config"
	"github.com/timmy/memebazaar/internal/repository"
	"gorm.io/gorm"
)

// Open returns a migrated database in t's temp dir, closed on cleanup.
// A single connection keeps SQLite writers serialized.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         filepath.Join(t.TempDir(), "memebazaar.db"),
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		AutoMigrate:  true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
