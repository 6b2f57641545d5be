package mig

// FieldStatus describes what happened to one timestamp kind during an
// apply. The metadata-write primitive is not guaranteed transactional
// across the three kinds, so each is reported individually.
type FieldStatus string

const (
	FieldCommitted   FieldStatus = "committed"
	FieldUnsupported FieldStatus = "unsupported"
	FieldFailed      FieldStatus = "failed"
)

// FieldResult records the apply result for one timestamp field.
type FieldResult struct {
	Field  string
	Status FieldStatus
	Err    error
}

// applyOutcome inspects per-field results and builds the record-level
// verdict: a record is applied when every supported field committed,
// and failed when any supported field write was rejected. Unsupported
// fields (creation time on unix) are reported but do not fail the
// record.
func applyOutcome(absPath string, results []FieldResult) (Status, string, error) {
	var firstErr error
	for _, r := range results {
		if r.Status == FieldFailed && firstErr == nil {
			firstErr = r.Err
		}
	}

	if firstErr != nil {
		err := &ApplyError{Path: absPath, Results: results, Err: firstErr}
		return StatusFailed, err.Error(), err
	}
	return StatusApplied, FieldDetail(results), nil
}
