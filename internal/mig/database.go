package mig

import (
	"time"

	"mig-go/internal/model"
)

// Database records migration runs and their per-record outcomes so
// operators can audit a migration and re-run corrective passes.
type Database interface {
	// CreateRun inserts a run in "running" state and returns the row.
	CreateRun(runID, operation, parameters string, dryRun bool, startedAt time.Time) (*model.MigrationRun, error)

	// FinishRun finalizes a run with its terminal status and counts.
	FinishRun(id int64, status string, counts StatusCounts, finishedAt time.Time) error

	// AddOutcomes stores the outcomes of a run, preserving manifest order.
	AddOutcomes(runDBID int64, outcomes []Outcome) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]*model.MigrationRun, error)

	// FindRun returns a run by its public run ID, or nil if unknown.
	FindRun(runID string) (*model.MigrationRun, error)

	// ListOutcomes returns all outcomes of a run in manifest order.
	ListOutcomes(runDBID int64) ([]*model.RunOutcome, error)

	// ListUnappliedOutcomes returns the failed and skipped outcomes of
	// a run in manifest order — the input for a retry manifest.
	ListUnappliedOutcomes(runDBID int64) ([]*model.RunOutcome, error)

	// CheckMigrations verifies the schema is at the latest version.
	CheckMigrations() error

	// Close closes the database connection.
	Close() error
}
