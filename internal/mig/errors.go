package mig

import (
	"fmt"
	"strings"
)

// ConversionError reports a raw timestamp value outside the
// representable range [0, MaxRawTimestamp].
type ConversionError struct {
	Field string // "creation", "lastaccess" or "lastwrite"; may be empty
	Raw   int64
}

func (e *ConversionError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("raw timestamp %d is out of range [0, %d]", e.Raw, MaxRawTimestamp)
	}
	return fmt.Sprintf("%s: raw timestamp %d is out of range [0, %d]", e.Field, e.Raw, MaxRawTimestamp)
}

// ApplyError reports a rejected metadata write. Results carries the
// per-field detail, since the underlying write primitive is not
// transactional across the three timestamp kinds.
type ApplyError struct {
	Path    string
	Results []FieldResult
	Err     error // first underlying filesystem error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("applying timestamps to %s: %v (%s)", e.Path, e.Err, FieldDetail(e.Results))
}

func (e *ApplyError) Unwrap() error { return e.Err }

// FieldDetail renders per-field apply results as a compact summary,
// e.g. "committed: lastaccess,lastwrite; unsupported: creation".
func FieldDetail(results []FieldResult) string {
	byStatus := map[FieldStatus][]string{}
	for _, r := range results {
		byStatus[r.Status] = append(byStatus[r.Status], r.Field)
	}

	var parts []string
	for _, st := range []FieldStatus{FieldCommitted, FieldUnsupported, FieldFailed} {
		if fields, ok := byStatus[st]; ok {
			parts = append(parts, fmt.Sprintf("%s: %s", st, strings.Join(fields, ",")))
		}
	}
	return strings.Join(parts, "; ")
}
