package model

import (
	"database/sql"
	"time"
)

// Run statuses as stored in the migration_runs table.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusSimulated = "simulated"
	RunStatusCanceled  = "canceled"
	RunStatusError     = "error"
)

// MigrationRun is one recorded invocation of a restore or transfer
// operation.
type MigrationRun struct {
	ID         int64  // Auto-increment row ID
	RunID      string // UUID, the operator-facing identifier
	Operation  string // e.g. "RestoreTimestamps", "Transfer"
	Parameters string // Human-readable operation parameters
	DryRun     bool
	Status     string
	Total      int64
	Applied    int64
	Simulated  int64
	Skipped    int64
	Failed     int64
	StartedAt  time.Time
	FinishedAt sql.NullTime
}

// RunOutcome is one record's result within a run. The raw timestamp
// values are kept so a retry manifest can be reconstructed from the
// database alone.
type RunOutcome struct {
	ID                int64
	RunID             int64 // Foreign key to MigrationRun.ID
	Seq               int64 // Position in the manifest
	RelativePath      string
	CreationTimeRaw   int64
	LastAccessTimeRaw int64
	LastWriteTimeRaw  int64
	Status            string
	Detail            string
}
