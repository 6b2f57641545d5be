// Package manifest reads and writes timestamp manifests: JSON arrays of
// records naming a relative path and three FILETIME raw values. A
// manifest may be sealed (age-encrypted); sealed manifests are detected
// by their header and require an unlocked OpenContext to load.
package manifest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"mig-go/internal/mig"
)

// sealHeader is the first line of an age-encrypted file.
const sealHeader = "age-encryption.org/v1"

// NotFoundError reports a manifest that does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("manifest not found: %s", e.Path)
}

// ParseError reports a manifest whose content cannot be decoded into
// the expected record shape.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing manifest %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SealedError reports a sealed manifest loaded without an OpenContext.
type SealedError struct {
	Path string
}

func (e *SealedError) Error() string {
	return fmt.Sprintf("manifest is sealed: %s (unlock keys to open it)", e.Path)
}

// Loader loads and writes timestamp manifests.
type Loader struct {
	open mig.OpenContext
}

var _ mig.ManifestSource = (*Loader)(nil)

// NewLoader creates a Loader. open may be nil; sealed manifests then
// fail with a SealedError.
func NewLoader(open mig.OpenContext) *Loader {
	return &Loader{open: open}
}

// SetOpenContext attaches an unlocked OpenContext for sealed manifests.
func (l *Loader) SetOpenContext(open mig.OpenContext) {
	l.open = open
}

// Load reads an ordered sequence of records from the manifest at path.
// Raw timestamp ranges are not validated here — that is the converter's
// job, per record.
func (l *Loader) Load(path string) ([]mig.TimestampRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	head, err := br.Peek(len(sealHeader))
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var r io.Reader = br
	if bytes.Equal(head, []byte(sealHeader)) {
		if l.open == nil {
			return nil, &SealedError{Path: path}
		}
		var plain bytes.Buffer
		if err := l.open.Open(br, &plain); err != nil {
			return nil, fmt.Errorf("opening sealed manifest %s: %w", path, err)
		}
		r = &plain
	}

	return decodeRecords(path, r)
}

func decodeRecords(path string, r io.Reader) ([]mig.TimestampRecord, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var records []mig.TimestampRecord
	if err := dec.Decode(&records); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	for i, rec := range records {
		if rec.RelativePath == "" {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("record %d: RelativePath is empty", i)}
		}
	}
	return records, nil
}

// Write stores records as an indented plaintext manifest at path.
func (l *Loader) Write(path string, records []mig.TimestampRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// WriteSealed stores records as a sealed manifest at path.
func (l *Loader) WriteSealed(path string, records []mig.TimestampRecord, sealer mig.Sealer) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating sealed manifest: %w", err)
	}
	defer f.Close()

	if err := sealer.Seal(bytes.NewReader(data), f); err != nil {
		return fmt.Errorf("sealing manifest: %w", err)
	}
	return nil
}

// IsSealed reports whether the file at path carries the seal header.
func IsSealed(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, len(sealHeader))
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return bytes.Equal(head[:n], []byte(sealHeader)), nil
}
