//go:build windows

package mig

import "syscall"

// applyTimestamps writes all three timestamps with a single SetFileTime
// call, so they commit or fail together. The handle is opened with
// FILE_FLAG_BACKUP_SEMANTICS, which is required for directory targets.
// The raw values are written directly — no round trip through time.Time,
// so restored metadata is bit-identical to the manifest.
func applyTimestamps(absPath string, ts Timestamps) []FieldResult {
	err := setFileTimes(absPath, ts)

	status := FieldCommitted
	if err != nil {
		status = FieldFailed
	}

	results := make([]FieldResult, 0, 3)
	for _, field := range []string{FieldCreation, FieldLastAccess, FieldLastWrite} {
		r := FieldResult{Field: field, Status: status}
		if err != nil {
			r.Err = err
		}
		results = append(results, r)
	}
	return results
}

func setFileTimes(absPath string, ts Timestamps) error {
	p, err := syscall.UTF16PtrFromString(absPath)
	if err != nil {
		return err
	}

	h, err := syscall.CreateFile(p,
		syscall.FILE_WRITE_ATTRIBUTES,
		syscall.FILE_SHARE_READ|syscall.FILE_SHARE_WRITE,
		nil,
		syscall.OPEN_EXISTING,
		syscall.FILE_FLAG_BACKUP_SEMANTICS,
		0)
	if err != nil {
		return err
	}
	defer syscall.CloseHandle(h)

	creation := rawToFiletime(ts.CreationRaw)
	access := rawToFiletime(ts.LastAccessRaw)
	write := rawToFiletime(ts.LastWriteRaw)
	return syscall.SetFileTime(h, &creation, &access, &write)
}

func rawToFiletime(raw int64) syscall.Filetime {
	return syscall.Filetime{
		LowDateTime:  uint32(raw & 0xffffffff),
		HighDateTime: uint32(raw >> 32),
	}
}
