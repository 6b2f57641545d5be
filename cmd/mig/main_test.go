package main

import (
	"errors"
	"strings"
	"testing"

	"mig-go/internal/mig"
)

func TestRestoreExitErr(t *testing.T) {
	withFailures := &mig.Summary{
		Counts: mig.StatusCounts{Total: 3, Applied: 1, Skipped: 1, Failed: 1},
	}
	skipsOnly := &mig.Summary{
		Counts: mig.StatusCounts{Total: 2, Applied: 1, Skipped: 1},
	}

	t.Run("completed batch with failures exits zero by default", func(t *testing.T) {
		if err := restoreExitErr(withFailures, false); err != nil {
			t.Errorf("restoreExitErr() = %v, want nil", err)
		}
	})

	t.Run("strict promotes failures to partial-failure exit", func(t *testing.T) {
		err := restoreExitErr(withFailures, true)
		if !errors.Is(err, errPartialFailure) {
			t.Errorf("restoreExitErr() = %v, want errPartialFailure", err)
		}
	})

	t.Run("skips alone exit zero even under strict", func(t *testing.T) {
		if err := restoreExitErr(skipsOnly, true); err != nil {
			t.Errorf("restoreExitErr() = %v, want nil", err)
		}
	})

	t.Run("cancellation is fatal, not partial failure", func(t *testing.T) {
		canceled := &mig.Summary{
			Counts:   mig.StatusCounts{Total: 5, Applied: 2},
			Canceled: true,
		}
		err := restoreExitErr(canceled, false)
		if err == nil {
			t.Fatal("restoreExitErr() = nil, want error")
		}
		if errors.Is(err, errPartialFailure) {
			t.Error("canceled run must not map to the partial-failure exit")
		}
	})
}

func TestOutcomeLine(t *testing.T) {
	t.Run("skipped record shows status and detail", func(t *testing.T) {
		line := outcomeLine(mig.Outcome{
			Record: mig.TimestampRecord{RelativePath: "docs/missing.txt"},
			Status: mig.StatusSkippedNotFound,
			Detail: "target does not exist",
		})
		if !strings.Contains(line, string(mig.StatusSkippedNotFound)) {
			t.Errorf("line %q missing status", line)
		}
		if !strings.Contains(line, "docs/missing.txt") || !strings.Contains(line, "target does not exist") {
			t.Errorf("line %q missing path or reason", line)
		}
		if strings.Contains(line, "<nil>") {
			t.Errorf("line %q renders a nil error", line)
		}
	})

	t.Run("failed record shows the error", func(t *testing.T) {
		line := outcomeLine(mig.Outcome{
			Record: mig.TimestampRecord{RelativePath: "a.txt"},
			Status: mig.StatusFailed,
			Err:    errors.New("raw timestamp out of range"),
		})
		if !strings.Contains(line, "raw timestamp out of range") {
			t.Errorf("line %q missing error detail", line)
		}
	})
}
