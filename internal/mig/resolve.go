package mig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolver joins manifest-relative paths against a configured root.
// Manifests produced on the file-server side use backslash separators;
// those are normalized before joining. Entries that are empty, absolute,
// or escape the root via ".." segments are rejected — a manifest must
// never be able to address targets outside the root.
type Resolver struct {
	root string
}

// NewResolver creates a Resolver for the given root directory.
func NewResolver(root string) *Resolver {
	return &Resolver{root: root}
}

// Resolve returns the absolute target path for a relative manifest path
// and whether the target exists. A missing target is not an error: it is
// a per-record skip. Rejected paths and stat failures other than
// not-exist are errors.
func (r *Resolver) Resolve(relativePath string) (absPath string, exists bool, err error) {
	if relativePath == "" {
		return "", false, errors.New("empty relative path")
	}

	rel := filepath.FromSlash(strings.ReplaceAll(relativePath, `\`, "/"))
	if !filepath.IsLocal(rel) {
		return "", false, fmt.Errorf("path escapes root: %s", relativePath)
	}

	abs := filepath.Join(r.root, rel)
	if _, statErr := os.Stat(abs); statErr != nil {
		if os.IsNotExist(statErr) {
			return abs, false, nil
		}
		return abs, false, fmt.Errorf("stat target: %w", statErr)
	}
	return abs, true, nil
}
