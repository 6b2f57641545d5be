// Package inventory parses folder-inventory CSVs exported from the
// file server into structured metadata. Each row describes one folder:
// its path, file count, total size, and newest write time as a FILETIME
// raw value.
package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"mig-go/internal/mig"
)

// Required CSV header columns, matched case-insensitively in any order.
const (
	colPath         = "path"
	colFiles        = "files"
	colSizeBytes    = "sizebytes"
	colLastWriteRaw = "lastwriteraw"
)

// FolderRecord is one parsed inventory row.
type FolderRecord struct {
	Path         string
	Files        int64
	SizeBytes    int64
	LastWriteRaw int64
	LastWrite    time.Time
}

// Summary aggregates an inventory for operator review.
type Summary struct {
	Folders     int64
	Files       int64
	TotalBytes  int64
	NewestWrite time.Time
}

// ParseFile reads and parses the inventory CSV at path.
func ParseFile(path string) ([]FolderRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening inventory: %w", err)
	}
	defer f.Close()

	records, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing inventory %s: %w", path, err)
	}
	return records, nil
}

// Parse decodes inventory rows from r. The first row must be a header
// naming at least Path, Files, SizeBytes, and LastWriteRaw; extra
// columns are ignored. Row numbers in errors are 1-based and count the
// header.
func Parse(r io.Reader) ([]FolderRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colPath, colFiles, colSizeBytes, colLastWriteRaw} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var records []FolderRecord
	row := 1
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		rec, err := parseRow(fields, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(fields []string, cols map[string]int) (FolderRecord, error) {
	get := func(name string) string {
		i := cols[name]
		if i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	path := get(colPath)
	if path == "" {
		return FolderRecord{}, fmt.Errorf("empty %s", colPath)
	}

	files, err := parseNonNegative(colFiles, get(colFiles))
	if err != nil {
		return FolderRecord{}, err
	}
	size, err := parseNonNegative(colSizeBytes, get(colSizeBytes))
	if err != nil {
		return FolderRecord{}, err
	}

	raw, err := strconv.ParseInt(get(colLastWriteRaw), 10, 64)
	if err != nil {
		return FolderRecord{}, fmt.Errorf("invalid %s: %q", colLastWriteRaw, get(colLastWriteRaw))
	}
	lastWrite, err := mig.ConvertRawTimestamp(raw)
	if err != nil {
		return FolderRecord{}, fmt.Errorf("invalid %s: %w", colLastWriteRaw, err)
	}

	return FolderRecord{
		Path:         path,
		Files:        files,
		SizeBytes:    size,
		LastWriteRaw: raw,
		LastWrite:    lastWrite,
	}, nil
}

func parseNonNegative(name, value string) (int64, error) {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, value)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative %s: %d", name, n)
	}
	return n, nil
}

// Summarize aggregates parsed records.
func Summarize(records []FolderRecord) Summary {
	var s Summary
	for _, rec := range records {
		s.Folders++
		s.Files += rec.Files
		s.TotalBytes += rec.SizeBytes
		if rec.LastWrite.After(s.NewestWrite) {
			s.NewestWrite = rec.LastWrite
		}
	}
	return s
}
