package testutil

import (
	"testing"

	"mig-go/internal/database"
	"mig-go/internal/mig"
)

// NewTestDatabase creates a new in-memory SQLite database with the
// schema applied. The database is automatically closed when the test
// completes.
func NewTestDatabase(t *testing.T) mig.Database {
	t.Helper()

	db, err := database.NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := db.MigrateUp(); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
