//go:build windows
// +build windows

package walker

// Hardlink detection needs device and inode numbers, which plain stat does
// not expose on Windows. Callers fall back to treating every path as unique.
func platformFileID(path string) (fileID, bool) {
	return fileID{}, false
}
