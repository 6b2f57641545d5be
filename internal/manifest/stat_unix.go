//go:build unix

package manifest

import (
	"io/fs"
	"syscall"
	"time"
)

// statTimes extracts the creation, access, and write times from a
// FileInfo. Birth time is not available on most Unix filesystems, so
// the modification time stands in for creation — the closest value the
// platform can offer.
func statTimes(info fs.FileInfo) (creation, access, write time.Time) {
	write = info.ModTime()
	creation = write
	access = write

	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		access = time.Unix(stat.Atim.Sec, stat.Atim.Nsec)
	}
	return creation, access, write
}
