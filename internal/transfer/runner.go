// Package transfer invokes the external copy/sync tool as a
// subprocess. The tool is treated as opaque: this package assembles
// arguments, runs the process, and captures its output and exit code.
// Credentials and protocol details live in the tool's own config file.
package transfer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"mig-go/internal/mig"
)

// ExecRunner runs the copy tool binary for push and pull transfers.
type ExecRunner struct {
	binary     string
	configFile string
	extraArgs  []string
}

var _ mig.Runner = (*ExecRunner)(nil)

// NewExecRunner creates a runner for the given binary. configFile, when
// non-empty, is passed to the tool via --config. extraArgs are appended
// to every invocation before the command-specific flags.
func NewExecRunner(binary, configFile string, extraArgs []string) *ExecRunner {
	return &ExecRunner{
		binary:     binary,
		configFile: configFile,
		extraArgs:  extraArgs,
	}
}

// Push copies a local source tree to a destination URL.
func (r *ExecRunner) Push(ctx context.Context, src, dst string, opts mig.TransferOptions) (*mig.TransferResult, error) {
	return r.run(ctx, src, dst, opts)
}

// Pull copies a remote source URL to a local destination tree.
func (r *ExecRunner) Pull(ctx context.Context, src, dst string, opts mig.TransferOptions) (*mig.TransferResult, error) {
	return r.run(ctx, src, dst, opts)
}

func (r *ExecRunner) run(ctx context.Context, src, dst string, opts mig.TransferOptions) (*mig.TransferResult, error) {
	args := BuildArgs(r.configFile, r.extraArgs, src, dst, opts)

	cmd := exec.CommandContext(ctx, r.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	result := &mig.TransferResult{
		ExitCode: exitCode(cmd, err),
		Output:   stdout.String(),
		Duration: duration,
	}

	if err != nil {
		return result, fmt.Errorf("%s %s failed: %w, stderr: %s", r.binary, args[0], err, stderr.String())
	}
	return result, nil
}

func exitCode(cmd *exec.Cmd, err error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	// The process never started.
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// BuildArgs assembles the argument list for one copy invocation. The
// command is always "copy"; option flags follow it, source and
// destination come last.
func BuildArgs(configFile string, extra []string, src, dst string, opts mig.TransferOptions) []string {
	args := []string{"copy"}

	if configFile != "" {
		args = append(args, "--config", configFile)
	}
	args = append(args, extra...)

	if opts.Recursive {
		args = append(args, "--recursive")
	}
	if opts.DryRun {
		args = append(args, "--dry-run")
	}
	if opts.Overwrite != "" {
		args = append(args, "--overwrite="+opts.Overwrite)
	}
	if !opts.IncludeAfter.IsZero() {
		args = append(args, "--include-after="+opts.IncludeAfter.UTC().Format(time.RFC3339))
	}
	if opts.DeleteDestination {
		args = append(args, "--delete-destination=true")
	}

	return append(args, src, dst)
}
