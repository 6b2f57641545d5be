package mig

// TimestampRecord is one entry of a timestamp manifest: a path relative
// to the migration root plus the three original timestamps as FILETIME
// raw values (100-nanosecond intervals since 1601-01-01T00:00:00 UTC).
// Records are immutable once loaded.
type TimestampRecord struct {
	RelativePath      string `json:"RelativePath"`
	CreationTimeRaw   int64  `json:"CreationTimeRaw"`
	LastAccessTimeRaw int64  `json:"LastAccessTimeRaw"`
	LastWriteTimeRaw  int64  `json:"LastWriteTimeRaw"`
}

// Status classifies the outcome of processing one record.
type Status string

const (
	// StatusApplied means the target's metadata was written.
	StatusApplied Status = "applied"
	// StatusSimulated means no mutation happened (dry-run, or the
	// operator declined the confirmation prompt).
	StatusSimulated Status = "simulated"
	// StatusSkippedNotFound means the resolved target does not exist.
	StatusSkippedNotFound Status = "skipped-notfound"
	// StatusFailed means resolution, conversion, or the metadata write
	// failed for this record.
	StatusFailed Status = "failed"
)

// Outcome is the result of processing one manifest record. Index is the
// record's position in the manifest, which fixes report order even when
// records complete out of order on the worker pool.
type Outcome struct {
	Index  int
	Record TimestampRecord
	Status Status
	Detail string
	Err    error
}

// RelativePath returns the path of the record this outcome belongs to.
func (o *Outcome) RelativePath() string {
	return o.Record.RelativePath
}
