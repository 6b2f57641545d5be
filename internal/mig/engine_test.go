package mig

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTarget(t *testing.T, root, rel string) string {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte("content"), 0644); err != nil {
		t.Fatal(err)
	}
	return abs
}

func recordFor(rel string, write time.Time) TimestampRecord {
	raw := RawFromTime(write)
	return TimestampRecord{
		RelativePath:      rel,
		CreationTimeRaw:   raw,
		LastAccessTimeRaw: raw,
		LastWriteTimeRaw:  raw,
	}
}

func TestEngineAppliesTimestamps(t *testing.T) {
	root := t.TempDir()
	abs := writeTarget(t, root, "docs/a.txt")

	want := time.Date(2017, 3, 1, 8, 15, 30, 0, time.UTC)
	engine := NewEngine(EngineOptions{Root: root, Workers: 2})
	summary := engine.Run(context.Background(), []TimestampRecord{recordFor("docs/a.txt", want)})

	if summary.Counts.Applied != 1 {
		t.Fatalf("applied = %d, want 1: %+v", summary.Counts.Applied, summary.Outcomes)
	}

	info, err := os.Stat(abs)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().UTC().Equal(want) {
		t.Errorf("mtime = %s, want %s", info.ModTime().UTC(), want)
	}
}

func TestEngineMissingTargetIsSkipped(t *testing.T) {
	root := t.TempDir()
	writeTarget(t, root, "a.txt")

	records := []TimestampRecord{
		recordFor("a.txt", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)),
		recordFor("missing.txt", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)),
	}

	engine := NewEngine(EngineOptions{Root: root})
	summary := engine.Run(context.Background(), records)

	if summary.Counts.Applied != 1 || summary.Counts.Skipped != 1 || summary.Counts.Failed != 0 {
		t.Errorf("unexpected counts: %+v", summary.Counts)
	}
	if summary.Outcomes[1].Status != StatusSkippedNotFound {
		t.Errorf("missing target status = %s, want %s", summary.Outcomes[1].Status, StatusSkippedNotFound)
	}
}

func TestEngineBadRecordDoesNotAbortBatch(t *testing.T) {
	root := t.TempDir()
	writeTarget(t, root, "good.txt")
	writeTarget(t, root, "bad.txt")

	bad := recordFor("bad.txt", time.Now().UTC())
	bad.LastWriteTimeRaw = -1

	records := []TimestampRecord{
		bad,
		recordFor("good.txt", time.Date(2019, 6, 1, 12, 0, 0, 0, time.UTC)),
	}

	engine := NewEngine(EngineOptions{Root: root})
	summary := engine.Run(context.Background(), records)

	if summary.Counts.Failed != 1 || summary.Counts.Applied != 1 {
		t.Fatalf("unexpected counts: %+v", summary.Counts)
	}
	if summary.Outcomes[0].Err == nil {
		t.Error("failed outcome is missing its error")
	}
}

func TestEngineEscapingPathFails(t *testing.T) {
	root := t.TempDir()

	engine := NewEngine(EngineOptions{Root: root})
	summary := engine.Run(context.Background(), []TimestampRecord{
		recordFor("../outside.txt", time.Now().UTC()),
	})

	if summary.Counts.Failed != 1 {
		t.Fatalf("unexpected counts: %+v", summary.Counts)
	}
}

func TestEngineDryRunMutatesNothing(t *testing.T) {
	root := t.TempDir()
	abs := writeTarget(t, root, "a.txt")

	before, err := os.Stat(abs)
	if err != nil {
		t.Fatal(err)
	}

	engine := NewEngine(EngineOptions{Root: root, Simulate: true})
	summary := engine.Run(context.Background(), []TimestampRecord{
		recordFor("a.txt", time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)),
	})

	if summary.Counts.Simulated != 1 {
		t.Fatalf("unexpected counts: %+v", summary.Counts)
	}
	if summary.Outcomes[0].Detail == "" {
		t.Error("simulated outcome should describe the intended change")
	}

	after, err := os.Stat(abs)
	if err != nil {
		t.Fatal(err)
	}
	if !after.ModTime().Equal(before.ModTime()) {
		t.Error("dry run modified the target mtime")
	}
}

func TestEngineConfirmDeclined(t *testing.T) {
	root := t.TempDir()
	abs := writeTarget(t, root, "a.txt")

	before, err := os.Stat(abs)
	if err != nil {
		t.Fatal(err)
	}

	engine := NewEngine(EngineOptions{
		Root:    root,
		Workers: 1,
		Confirm: func(string) bool { return false },
	})
	summary := engine.Run(context.Background(), []TimestampRecord{
		recordFor("a.txt", time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)),
	})

	if summary.Counts.Simulated != 1 {
		t.Fatalf("unexpected counts: %+v", summary.Counts)
	}

	after, err := os.Stat(abs)
	if err != nil {
		t.Fatal(err)
	}
	if !after.ModTime().Equal(before.ModTime()) {
		t.Error("declined apply modified the target mtime")
	}
}

func TestEngineCanceledContext(t *testing.T) {
	root := t.TempDir()

	records := make([]TimestampRecord, 200)
	for i := range records {
		records[i] = recordFor("missing.txt", time.Now().UTC())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(EngineOptions{Root: root, Workers: 1})
	summary := engine.Run(ctx, records)

	if !summary.Canceled {
		t.Error("expected summary to be marked canceled")
	}
	if summary.Counts.Total != len(records) {
		t.Errorf("total = %d, want %d", summary.Counts.Total, len(records))
	}
	// The feed loop may hand out a few records before observing the
	// canceled context, but never more than the manifest holds.
	if len(summary.Outcomes) > len(records) {
		t.Errorf("processed %d outcomes, manifest has %d records", len(summary.Outcomes), len(records))
	}
}
