package mig

import (
	"context"
	"fmt"
	"os"

	"mig-go/internal/model"
)

// MigService is the orchestration layer that coordinates manifest
// loading, the restore engine, the transfer runner, and run bookkeeping
// for the CLI.
type MigService struct {
	database  Database
	manifests ManifestSource
	runner    Runner
	logger    Logger
	clock     Clock
	idgen     IDGenerator
}

// NewMigService creates a MigService with the provided dependencies.
func NewMigService(database Database, manifests ManifestSource, runner Runner, logger Logger, clock Clock, idgen IDGenerator) *MigService {
	return &MigService{
		database:  database,
		manifests: manifests,
		runner:    runner,
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
	}
}

// RestoreOptions configures a timestamp-restoration run.
type RestoreOptions struct {
	ManifestPath string
	Root         string
	DryRun       bool
	Workers      int
	// Confirm, when non-nil, gates each real apply.
	Confirm func(absPath string) bool
}

// RestoreTimestamps loads the manifest, validates the root, runs every
// record through the restore engine, and records the run. A missing or
// unparseable manifest and a missing root are fatal and abort before
// any target is touched; everything else is per-record and lands in the
// summary.
func (s *MigService) RestoreTimestamps(ctx context.Context, opts RestoreOptions) (*Summary, error) {
	info, err := os.Stat(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("root not usable: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", opts.Root)
	}

	records, err := s.manifests.Load(opts.ManifestPath)
	if err != nil {
		return nil, err
	}

	runID := s.idgen.New()
	params := fmt.Sprintf("root=%s manifest=%s", opts.Root, opts.ManifestPath)
	run, err := s.database.CreateRun(runID, "RestoreTimestamps", params, opts.DryRun, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("recording run: %w", err)
	}

	s.logger.Info("restore started", "run", runID, "records", len(records), "dry_run", opts.DryRun)

	engine := NewEngine(EngineOptions{
		Root:     opts.Root,
		Simulate: opts.DryRun,
		Workers:  opts.Workers,
		Confirm:  opts.Confirm,
		Logger:   s.logger,
	})
	summary := engine.Run(ctx, records)

	if err := s.database.AddOutcomes(run.ID, summary.Outcomes); err != nil {
		return summary, fmt.Errorf("recording outcomes: %w", err)
	}

	status := model.RunStatusCompleted
	switch {
	case summary.Canceled:
		status = model.RunStatusCanceled
	case opts.DryRun:
		status = model.RunStatusSimulated
	}
	if err := s.database.FinishRun(run.ID, status, summary.Counts, s.clock.Now()); err != nil {
		return summary, fmt.Errorf("finishing run: %w", err)
	}

	s.logger.Info("restore finished", "run", runID, "summary", summary.String())
	return summary, nil
}

// Transfer invokes the external copy tool in the given direction
// ("push" or "pull") and records the run.
func (s *MigService) Transfer(ctx context.Context, direction, src, dst string, opts TransferOptions) (*TransferResult, error) {
	runID := s.idgen.New()
	params := fmt.Sprintf("%s %s -> %s", direction, src, dst)
	run, err := s.database.CreateRun(runID, "Transfer", params, opts.DryRun, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("recording run: %w", err)
	}

	s.logger.Info("transfer started", "run", runID, "direction", direction, "src", src, "dst", dst)

	var result *TransferResult
	var transferErr error
	switch direction {
	case "push":
		result, transferErr = s.runner.Push(ctx, src, dst, opts)
	case "pull":
		result, transferErr = s.runner.Pull(ctx, src, dst, opts)
	default:
		transferErr = fmt.Errorf("unknown transfer direction: %s", direction)
	}

	status := model.RunStatusCompleted
	switch {
	case transferErr != nil:
		status = model.RunStatusError
	case opts.DryRun:
		status = model.RunStatusSimulated
	}
	if err := s.database.FinishRun(run.ID, status, StatusCounts{}, s.clock.Now()); err != nil {
		if transferErr == nil {
			transferErr = fmt.Errorf("finishing run: %w", err)
		}
	}

	if transferErr != nil {
		s.logger.Error("transfer failed", "run", runID, "error", transferErr)
		return result, transferErr
	}
	s.logger.Info("transfer finished", "run", runID)
	return result, nil
}

// History returns the most recent runs, newest first.
func (s *MigService) History(limit int) ([]*model.MigrationRun, error) {
	runs, err := s.database.ListRuns(limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// RunOutcomes returns all outcomes of a run in manifest order.
func (s *MigService) RunOutcomes(runID string) ([]*model.RunOutcome, error) {
	run, err := s.database.FindRun(runID)
	if err != nil {
		return nil, fmt.Errorf("finding run: %w", err)
	}
	if run == nil {
		return nil, fmt.Errorf("no run with ID %s", runID)
	}
	return s.database.ListOutcomes(run.ID)
}

// WriteRetryManifest writes a manifest containing only the failed and
// skipped records of the given run, preserving their original raw
// timestamps, so the operator can run a corrective pass against just
// those paths. Returns the number of records written; zero means the
// run had nothing to retry and no file is written.
func (s *MigService) WriteRetryManifest(runID, outPath string) (int, error) {
	run, err := s.database.FindRun(runID)
	if err != nil {
		return 0, fmt.Errorf("finding run: %w", err)
	}
	if run == nil {
		return 0, fmt.Errorf("no run with ID %s", runID)
	}

	outcomes, err := s.database.ListUnappliedOutcomes(run.ID)
	if err != nil {
		return 0, fmt.Errorf("listing outcomes: %w", err)
	}
	if len(outcomes) == 0 {
		return 0, nil
	}

	records := make([]TimestampRecord, len(outcomes))
	for i, o := range outcomes {
		records[i] = TimestampRecord{
			RelativePath:      o.RelativePath,
			CreationTimeRaw:   o.CreationTimeRaw,
			LastAccessTimeRaw: o.LastAccessTimeRaw,
			LastWriteTimeRaw:  o.LastWriteTimeRaw,
		}
	}

	if err := s.manifests.Write(outPath, records); err != nil {
		return 0, fmt.Errorf("writing retry manifest: %w", err)
	}

	s.logger.Info("retry manifest written", "run", runID, "records", len(records), "path", outPath)
	return len(records), nil
}
