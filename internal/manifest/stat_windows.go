//go:build windows

package manifest

import (
	"io/fs"
	"syscall"
	"time"
)

// statTimes extracts the creation, access, and write times from a
// FileInfo. Windows file attributes carry all three.
func statTimes(info fs.FileInfo) (creation, access, write time.Time) {
	write = info.ModTime()
	creation = write
	access = write

	if attr, ok := info.Sys().(*syscall.Win32FileAttributeData); ok {
		creation = time.Unix(0, attr.CreationTime.Nanoseconds())
		access = time.Unix(0, attr.LastAccessTime.Nanoseconds())
	}
	return creation, access, write
}
