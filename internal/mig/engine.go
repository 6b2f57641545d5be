package mig

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// EngineOptions configures a restore engine run.
type EngineOptions struct {
	// Root is the directory under which relative manifest paths resolve.
	Root string
	// Simulate computes and reports intended changes without mutating
	// any target.
	Simulate bool
	// Workers bounds the worker pool. Values below 1 mean 1.
	Workers int
	// Confirm, when non-nil, is asked before each real apply. A false
	// answer leaves the target untouched and reports it as simulated.
	Confirm func(absPath string) bool
	// Logger receives per-record trace output. Nil means no logging.
	Logger Logger
}

// Engine runs manifest records through resolve → convert → apply.
// Records are independent: one bad record never aborts the batch.
type Engine struct {
	resolver *Resolver
	opts     EngineOptions
	logger   Logger
}

// NewEngine creates an Engine for the given options.
func NewEngine(opts EngineOptions) *Engine {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Engine{
		resolver: NewResolver(opts.Root),
		opts:     opts,
		logger:   logger,
	}
}

type indexedRecord struct {
	index  int
	record TimestampRecord
}

// Run processes records on the bounded worker pool and returns the
// summary. When ctx is canceled no new records are issued, but records
// already picked up by a worker run to completion — interrupting a
// metadata write midway is how partial per-item corruption happens.
func (e *Engine) Run(ctx context.Context, records []TimestampRecord) *Summary {
	jobs := make(chan indexedRecord)
	reporter := NewReporter()

	var wg sync.WaitGroup
	for i := 0; i < e.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				reporter.Add(e.processRecord(j.index, j.record))
			}
		}()
	}

	canceled := false
feed:
	for i, rec := range records {
		select {
		case jobs <- indexedRecord{index: i, record: rec}:
		case <-ctx.Done():
			canceled = true
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return reporter.Summarize(len(records), canceled)
}

// processRecord runs the full pipeline for a single record. All
// per-record failures are converted into the outcome, never raised.
func (e *Engine) processRecord(index int, rec TimestampRecord) Outcome {
	out := Outcome{Index: index, Record: rec}

	absPath, exists, err := e.resolver.Resolve(rec.RelativePath)
	if err != nil {
		out.Status = StatusFailed
		out.Err = err
		out.Detail = err.Error()
		e.logger.Warn("record failed", "path", rec.RelativePath, "error", err)
		return out
	}
	if !exists {
		out.Status = StatusSkippedNotFound
		out.Detail = "target does not exist"
		e.logger.Debug("record skipped", "path", rec.RelativePath, "target", absPath)
		return out
	}

	ts, err := convertRecord(rec)
	if err != nil {
		out.Status = StatusFailed
		out.Err = err
		out.Detail = err.Error()
		e.logger.Warn("record failed", "path", rec.RelativePath, "error", err)
		return out
	}

	if e.opts.Simulate {
		out.Status = StatusSimulated
		out.Detail = intendedChange("would set", ts)
		e.logger.Debug("record simulated", "path", rec.RelativePath, "target", absPath)
		return out
	}

	if e.opts.Confirm != nil && !e.opts.Confirm(absPath) {
		out.Status = StatusSimulated
		out.Detail = intendedChange("declined by operator; would set", ts)
		e.logger.Info("record declined", "path", rec.RelativePath)
		return out
	}

	results := applyTimestamps(absPath, ts)
	out.Status, out.Detail, out.Err = applyOutcome(absPath, results)
	if out.Status == StatusFailed {
		e.logger.Warn("record failed", "path", rec.RelativePath, "error", out.Err)
	} else {
		e.logger.Debug("record applied", "path", rec.RelativePath, "detail", out.Detail)
	}
	return out
}

func intendedChange(prefix string, ts Timestamps) string {
	return fmt.Sprintf("%s creation=%s lastaccess=%s lastwrite=%s",
		prefix,
		ts.Creation.Format(time.RFC3339Nano),
		ts.LastAccess.Format(time.RFC3339Nano),
		ts.LastWrite.Format(time.RFC3339Nano))
}
