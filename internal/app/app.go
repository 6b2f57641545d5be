// Package app is the application layer between the CLI and MigService.
// It constructs all dependencies from config and manages their
// lifecycle.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"mig-go/internal/config"
	"mig-go/internal/database"
	"mig-go/internal/encryption"
	"mig-go/internal/manifest"
	"mig-go/internal/mig"
	"mig-go/internal/model"
	"mig-go/internal/transfer"
)

// MigApp wires the service layer from config and exposes the high-level
// operations the CLI commands call. The caller must call Close when
// done.
type MigApp struct {
	cfg     *config.Config
	db      mig.Database
	sealer  mig.Sealer
	loader  *manifest.Loader
	runner  mig.Runner
	service *mig.MigService
	logFile *os.File
}

// NewMigApp creates a fully wired MigApp from the given config.
// operation identifies the CLI command being run (e.g. "RestoreTimes",
// "TransferPush") and tags every log line of the invocation.
func NewMigApp(cfg *config.Config, operation string) (*MigApp, error) {
	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema out of date (run 'mig db migrate'): %w", err)
	}

	sealer, err := encryption.NewSealerFromConfig(cfg.Sealing)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sealer: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID+"-"+operation)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	loader := manifest.NewLoader(nil)
	runner := transfer.NewExecRunner(cfg.Transfer.Binary, cfg.Transfer.ConfigFile, cfg.Transfer.ExtraArgs)
	svc := mig.NewMigService(db, loader, runner, &slogAdapter{l: logger}, mig.RealClock{}, mig.UUIDGenerator{})

	return &MigApp{
		cfg:     cfg,
		db:      db,
		sealer:  sealer,
		loader:  loader,
		runner:  runner,
		service: svc,
		logFile: logFile,
	}, nil
}

// Sealer returns the configured sealer, for key setup.
func (a *MigApp) Sealer() mig.Sealer {
	return a.sealer
}

// Unseal unlocks the private key with the passphrase so the app can
// open sealed manifests for the rest of the invocation.
func (a *MigApp) Unseal(passphrase string) error {
	open, err := a.sealer.Unlock(passphrase)
	if err != nil {
		return fmt.Errorf("unlocking keys: %w", err)
	}
	a.loader.SetOpenContext(open)
	return nil
}

// RestoreTimestamps runs the timestamp-restoration engine against the
// manifest and root in opts and returns the run summary.
func (a *MigApp) RestoreTimestamps(ctx context.Context, opts mig.RestoreOptions) (*mig.Summary, error) {
	if opts.Workers <= 0 {
		opts.Workers = a.cfg.Restore.Workers
	}
	return a.service.RestoreTimestamps(ctx, opts)
}

// StrictRestore reports whether the config promotes failed restore
// records to a partial-failure exit.
func (a *MigApp) StrictRestore() bool {
	return a.cfg.Restore.Strict
}

// Transfer invokes the external copy tool in the given direction.
func (a *MigApp) Transfer(ctx context.Context, direction, src, dst string, opts mig.TransferOptions) (*mig.TransferResult, error) {
	if opts.Overwrite == "" {
		opts.Overwrite = a.cfg.Transfer.Overwrite
	}
	return a.service.Transfer(ctx, direction, src, dst, opts)
}

// History returns the most recent runs, newest first.
func (a *MigApp) History(limit int) ([]*model.MigrationRun, error) {
	return a.service.History(limit)
}

// RunOutcomes returns all recorded outcomes of a run.
func (a *MigApp) RunOutcomes(runID string) ([]*model.RunOutcome, error) {
	return a.service.RunOutcomes(runID)
}

// WriteRetryManifest writes a manifest of the given run's failed and
// skipped records to outPath. Returns the number of records written.
func (a *MigApp) WriteRetryManifest(runID, outPath string) (int, error) {
	return a.service.WriteRetryManifest(runID, outPath)
}

// CaptureManifest walks root and writes a timestamp manifest of every
// entry below it. With seal set, the manifest is sealed with the public
// key. Returns the number of records captured.
func (a *MigApp) CaptureManifest(root, manifestPath string, seal bool) (int, error) {
	records, err := manifest.Capture(root)
	if err != nil {
		return 0, err
	}

	if seal {
		if !a.sealer.IsConfigured() {
			return 0, fmt.Errorf("sealing keys not configured (run 'mig keys init')")
		}
		if err := a.loader.WriteSealed(manifestPath, records, a.sealer); err != nil {
			return 0, err
		}
	} else {
		if err := a.loader.Write(manifestPath, records); err != nil {
			return 0, err
		}
	}

	return len(records), nil
}

// SealManifest seals a plaintext manifest in place.
func (a *MigApp) SealManifest(path string) error {
	sealed, err := manifest.IsSealed(path)
	if err != nil {
		return fmt.Errorf("checking manifest: %w", err)
	}
	if sealed {
		return fmt.Errorf("manifest is already sealed: %s", path)
	}
	if !a.sealer.IsConfigured() {
		return fmt.Errorf("sealing keys not configured (run 'mig keys init')")
	}

	records, err := a.loader.Load(path)
	if err != nil {
		return err
	}
	return a.loader.WriteSealed(path, records, a.sealer)
}

// UnsealManifest rewrites a sealed manifest as plaintext in place. The
// keys must be unlocked first via Unseal.
func (a *MigApp) UnsealManifest(path string) error {
	sealed, err := manifest.IsSealed(path)
	if err != nil {
		return fmt.Errorf("checking manifest: %w", err)
	}
	if !sealed {
		return fmt.Errorf("manifest is not sealed: %s", path)
	}

	records, err := a.loader.Load(path)
	if err != nil {
		return err
	}
	return a.loader.Write(path, records)
}

// Close closes the database and the log file.
func (a *MigApp) Close() error {
	var firstErr error

	if err := a.db.Close(); err != nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
