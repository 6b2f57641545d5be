package mig

import (
	"context"
	"time"
)

// TransferOptions configures one invocation of the external copy tool.
// Only argument assembly happens here; the tool's behavior — protocol,
// credentials, copy performance — is entirely its own.
type TransferOptions struct {
	Recursive bool
	DryRun    bool
	// Overwrite selects the tool's overwrite policy ("never", "always",
	// "if-newer"). Empty means the tool's default.
	Overwrite string
	// IncludeAfter limits the transfer to entries modified after the
	// given instant. Zero means no limit.
	IncludeAfter time.Time
	// DeleteDestination removes destination entries absent from the source.
	DeleteDestination bool
}

// TransferResult captures what the external tool reported.
type TransferResult struct {
	ExitCode int
	Output   string
	Duration time.Duration
}

// Runner invokes the external copy/sync tool as a subprocess.
type Runner interface {
	// Push copies a local source tree to a destination URL.
	Push(ctx context.Context, src, dst string, opts TransferOptions) (*TransferResult, error)

	// Pull copies a remote source URL to a local destination tree.
	Pull(ctx context.Context, src, dst string, opts TransferOptions) (*TransferResult, error)
}
