package manifest

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"mig-go/internal/mig"
)

// Capture walks root and records every file and directory below it as a
// TimestampRecord, in walk order. This is the producer side of the
// restoration engine: run it against the source tree before transfer,
// then restore from the manifest after the data lands.
func Capture(root string) ([]mig.TimestampRecord, error) {
	var records []mig.TimestampRecord

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", p, err)
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}

		creation, access, write := statTimes(info)
		records = append(records, mig.TimestampRecord{
			RelativePath:      filepath.ToSlash(rel),
			CreationTimeRaw:   mig.RawFromTime(creation),
			LastAccessTimeRaw: mig.RawFromTime(access),
			LastWriteTimeRaw:  mig.RawFromTime(write),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	return records, nil
}
