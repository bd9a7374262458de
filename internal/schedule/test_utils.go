package schedule

import (
	"testing"

	"github.com/belphemur/day-planner/internal/database"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a new in-memory database for testing
func setupTestDB(t *testing.T) (*database.DB, func()) {
	opts := database.SQLiteOptions{
		Path:        ":memory:",
		Mode:        "memory",
		Cache:       database.CacheShared,
		ForeignKeys: true,
		Journal:     database.JournalMemory, // Memory journal is suitable for in-memory DB
		BusyTimeout: 5000,
	}
	db, err := database.New(opts)
	require.NoError(t, err)

	// Run migrations
	err = db.MigrateDatabase()
	require.NoError(t, err)

	return db, func() {
		require.NoError(t, db.Close())
	}
}
