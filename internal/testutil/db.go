// Package testutil provides database fixtures for tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shareit-platform/service-booking/internal/repository"
)

// NewTestDB opens a migrated SQLite database in a temporary directory. The pool
// holds a single connection so concurrent transactions run one after another.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "rental.db") + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repository.AutoMigrate(db))
	return db
}

// SeedUser inserts a user into the projection.
func SeedUser(t testing.TB, db *gorm.DB, id int64) {
	t.Helper()
	require.NoError(t, db.Create(&repository.UserModel{
		ID:        id,
		Name:      fmt.Sprintf("user-%d", id),
		Email:     fmt.Sprintf("user%d@example.com", id),
		UpdatedAt: time.Now().UTC(),
	}).Error)
}

// SeedItem inserts an item and returns its ID.
func SeedItem(t testing.TB, db *gorm.DB, ownerID int64, name string, available bool) int64 {
	t.Helper()
	now := time.Now().UTC()
	m := &repository.ItemModel{
		OwnerID:     ownerID,
		Name:        name,
		Description: name + " for rent",
		Available:   available,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, db.Create(m).Error)
	return m.ID
}
