package mig

import "time"

const (
	// filetimeEpochOffset is the number of seconds between
	// 1601-01-01T00:00:00Z and the Unix epoch.
	filetimeEpochOffset = 11644473600

	// ticksPerSecond is the number of 100-nanosecond intervals per second.
	ticksPerSecond = 10_000_000

	// MaxRawTimestamp is the largest accepted raw value, corresponding
	// to 9999-12-31T23:59:59.9999999Z. This matches the range the
	// original file-server tooling accepted, so manifests produced
	// there convert identically here.
	MaxRawTimestamp int64 = 2650467743999999999
)

// Timestamp field names used in outcomes and apply results.
const (
	FieldCreation   = "creation"
	FieldLastAccess = "lastaccess"
	FieldLastWrite  = "lastwrite"
)

// Timestamps holds the three converted UTC instants for one target.
// The raw values are carried alongside: the windows applier writes them
// directly, which avoids any precision loss from the round trip through
// time.Time.
type Timestamps struct {
	Creation   time.Time
	LastAccess time.Time
	LastWrite  time.Time

	CreationRaw   int64
	LastAccessRaw int64
	LastWriteRaw  int64
}

// ConvertRawTimestamp converts a FILETIME-style raw value into an
// absolute UTC instant: epoch(1601-01-01T00:00:00Z) + raw * 100ns.
// It is pure and deterministic; values outside [0, MaxRawTimestamp]
// yield a ConversionError.
func ConvertRawTimestamp(raw int64) (time.Time, error) {
	if raw < 0 || raw > MaxRawTimestamp {
		return time.Time{}, &ConversionError{Raw: raw}
	}
	sec := raw/ticksPerSecond - filetimeEpochOffset
	nsec := (raw % ticksPerSecond) * 100
	return time.Unix(sec, nsec).UTC(), nil
}

// RawFromTime is the inverse of ConvertRawTimestamp, used when
// capturing a manifest from a live tree. Sub-100ns precision is
// truncated.
func RawFromTime(t time.Time) int64 {
	return (t.Unix()+filetimeEpochOffset)*ticksPerSecond + int64(t.Nanosecond())/100
}

// convertRecord converts a record's three raw fields. A single field's
// conversion failure fails the whole record: partially restoring a
// record from a corrupt manifest row is worse than failing it.
func convertRecord(rec TimestampRecord) (Timestamps, error) {
	fields := []struct {
		name string
		raw  int64
		dst  *time.Time
	}{
		{FieldCreation, rec.CreationTimeRaw, nil},
		{FieldLastAccess, rec.LastAccessTimeRaw, nil},
		{FieldLastWrite, rec.LastWriteTimeRaw, nil},
	}

	ts := Timestamps{
		CreationRaw:   rec.CreationTimeRaw,
		LastAccessRaw: rec.LastAccessTimeRaw,
		LastWriteRaw:  rec.LastWriteTimeRaw,
	}
	fields[0].dst = &ts.Creation
	fields[1].dst = &ts.LastAccess
	fields[2].dst = &ts.LastWrite

	for _, f := range fields {
		t, err := ConvertRawTimestamp(f.raw)
		if err != nil {
			return Timestamps{}, &ConversionError{Field: f.name, Raw: f.raw}
		}
		*f.dst = t
	}
	return ts, nil
}
