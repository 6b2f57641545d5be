// Package database implements run-history storage on SQLite.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mig-go/internal/database/migrations"
	"mig-go/internal/mig"
	"mig-go/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements the mig.Database interface using SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

var _ mig.Database = (*SQLiteDatabase)(nil)

// NewSQLiteDatabase opens a SQLite database at path. path can be a file
// path or ":memory:" for an in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return &SQLiteDatabase{
		db:   db,
		path: path,
	}, nil
}

// OpenConnection opens and configures a SQLite connection with the
// PRAGMAs this package requires. Exported for tests that need a raw
// connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Each pooled connection to ":memory:" would get its own empty
	// database, so keep in-memory databases on a single connection.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// SQLite ships with foreign keys OFF for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

const runColumns = `id, run_id, operation, parameters, dry_run, status,
	total, applied, simulated, skipped, failed, started_at, finished_at`

func scanRun(row interface{ Scan(...any) error }) (*model.MigrationRun, error) {
	var run model.MigrationRun
	err := row.Scan(&run.ID, &run.RunID, &run.Operation, &run.Parameters,
		&run.DryRun, &run.Status, &run.Total, &run.Applied, &run.Simulated,
		&run.Skipped, &run.Failed, &run.StartedAt, &run.FinishedAt)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// CreateRun inserts a run in "running" state and returns the row.
func (s *SQLiteDatabase) CreateRun(runID, operation, parameters string, dryRun bool, startedAt time.Time) (*model.MigrationRun, error) {
	res, err := s.db.Exec(
		`INSERT INTO migration_runs (run_id, operation, parameters, dry_run, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, operation, parameters, dryRun, model.RunStatusRunning, startedAt)
	if err != nil {
		return nil, fmt.Errorf("creating run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading run id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+runColumns+` FROM migration_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("loading created run: %w", err)
	}
	return run, nil
}

// FinishRun finalizes a run with its terminal status and counts.
func (s *SQLiteDatabase) FinishRun(id int64, status string, counts mig.StatusCounts, finishedAt time.Time) error {
	_, err := s.db.Exec(
		`UPDATE migration_runs
		 SET status = ?, total = ?, applied = ?, simulated = ?, skipped = ?, failed = ?, finished_at = ?
		 WHERE id = ?`,
		status, counts.Total, counts.Applied, counts.Simulated,
		counts.Skipped, counts.Failed, finishedAt, id)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	return nil
}

// AddOutcomes stores the outcomes of a run in a single transaction,
// preserving manifest order via the seq column.
func (s *SQLiteDatabase) AddOutcomes(runDBID int64, outcomes []mig.Outcome) error {
	if len(outcomes) == 0 {
		return nil
	}

	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO run_outcomes (run_id, seq, relative_path,
		   creation_time_raw, last_access_time_raw, last_write_time_raw, status, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing outcome insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range outcomes {
		detail := o.Detail
		if o.Err != nil {
			detail = o.Err.Error()
		}
		_, err := stmt.Exec(runDBID, o.Index, o.Record.RelativePath,
			o.Record.CreationTimeRaw, o.Record.LastAccessTimeRaw,
			o.Record.LastWriteTimeRaw, string(o.Status), detail)
		if err != nil {
			return fmt.Errorf("inserting outcome for %s: %w", o.Record.RelativePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing outcomes: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteDatabase) ListRuns(limit int) ([]*model.MigrationRun, error) {
	rows, err := s.db.Query(
		`SELECT `+runColumns+` FROM migration_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.MigrationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// FindRun returns a run by its public run ID, or nil if unknown.
func (s *SQLiteDatabase) FindRun(runID string) (*model.MigrationRun, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM migration_runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding run: %w", err)
	}
	return run, nil
}

const outcomeColumns = `id, run_id, seq, relative_path,
	creation_time_raw, last_access_time_raw, last_write_time_raw, status, detail`

func (s *SQLiteDatabase) queryOutcomes(query string, args ...any) ([]*model.RunOutcome, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []*model.RunOutcome
	for rows.Next() {
		var o model.RunOutcome
		err := rows.Scan(&o.ID, &o.RunID, &o.Seq, &o.RelativePath,
			&o.CreationTimeRaw, &o.LastAccessTimeRaw, &o.LastWriteTimeRaw,
			&o.Status, &o.Detail)
		if err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		outcomes = append(outcomes, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing outcomes: %w", err)
	}
	return outcomes, nil
}

// ListOutcomes returns all outcomes of a run in manifest order.
func (s *SQLiteDatabase) ListOutcomes(runDBID int64) ([]*model.RunOutcome, error) {
	return s.queryOutcomes(
		`SELECT `+outcomeColumns+` FROM run_outcomes WHERE run_id = ? ORDER BY seq`, runDBID)
}

// ListUnappliedOutcomes returns the failed and skipped outcomes of a
// run in manifest order.
func (s *SQLiteDatabase) ListUnappliedOutcomes(runDBID int64) ([]*model.RunOutcome, error) {
	return s.queryOutcomes(
		`SELECT `+outcomeColumns+` FROM run_outcomes
		 WHERE run_id = ? AND status IN (?, ?) ORDER BY seq`,
		runDBID, string(mig.StatusFailed), string(mig.StatusSkippedNotFound))
}

// Path returns the database file path (or ":memory:").
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// MigrateUp brings the schema to the latest version.
func (s *SQLiteDatabase) MigrateUp() error {
	return migrations.MigrateUp(s.db)
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
