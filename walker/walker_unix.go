//go:build unix
// +build unix

package walker

import (
	"golang.org/x/sys/unix"
)

func platformFileID(path string) (fileID, bool) {
	var stat unix.Stat_t
	if err := unix.Stat(path, &stat); err != nil {
		return fileID{}, false
	}
	return fileID{dev: uint64(stat.Dev), ino: uint64(stat.Ino)}, true
}
