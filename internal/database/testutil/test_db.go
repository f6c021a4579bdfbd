package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dmorenov/cajadesk/internal/database"
)

// MustOpenTestDB opens a migrated in-memory SQLite database for tests. The
// connection is closed via t.Cleanup.
func MustOpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(database.Config{Driver: "sqlite"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

// MustOpenSettings opens a test database and returns a settings accessor
// bound to it alongside the database handle.
func MustOpenSettings(t *testing.T) (*gorm.DB, *database.Settings) {
	t.Helper()

	db := MustOpenTestDB(t)
	settings, err := database.NewSettings(db)
	require.NoError(t, err)
	return db, settings
}
