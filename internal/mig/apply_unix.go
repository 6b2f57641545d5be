//go:build unix

package mig

import "os"

// applyTimestamps writes the converted timestamps to the target's
// metadata. Unix has no portable birth-time setter, so the creation
// field is reported unsupported. os.Chtimes sets access and write
// times in a single call and works for files and directories alike;
// the two fields succeed or fail together.
func applyTimestamps(absPath string, ts Timestamps) []FieldResult {
	results := []FieldResult{
		{Field: FieldCreation, Status: FieldUnsupported},
	}

	err := os.Chtimes(absPath, ts.LastAccess, ts.LastWrite)
	for _, field := range []string{FieldLastAccess, FieldLastWrite} {
		r := FieldResult{Field: field, Status: FieldCommitted}
		if err != nil {
			r.Status = FieldFailed
			r.Err = err
		}
		results = append(results, r)
	}
	return results
}
