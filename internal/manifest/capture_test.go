package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"mig-go/internal/mig"
)

func TestCapture(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "docs"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "docs", "a.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "b.txt"), []byte("y"), 0644); err != nil {
		t.Fatal(err)
	}

	mtime := time.Date(2018, 5, 5, 10, 0, 0, 0, time.UTC)
	if err := os.Chtimes(filepath.Join(root, "b.txt"), mtime, mtime); err != nil {
		t.Fatal(err)
	}

	records, err := Capture(root)
	if err != nil {
		t.Fatal(err)
	}

	// docs, docs/a.txt, b.txt — the root itself is not recorded.
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3: %+v", len(records), records)
	}

	byPath := map[string]mig.TimestampRecord{}
	for _, rec := range records {
		byPath[rec.RelativePath] = rec
	}
	for _, want := range []string{"docs", "docs/a.txt", "b.txt"} {
		if _, ok := byPath[want]; !ok {
			t.Errorf("missing record for %q", want)
		}
	}

	got, err := mig.ConvertRawTimestamp(byPath["b.txt"].LastWriteTimeRaw)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(mtime) {
		t.Errorf("captured lastwrite = %s, want %s", got, mtime)
	}
}

func TestCaptureMissingRoot(t *testing.T) {
	_, err := Capture(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}
