// Package walker discovers regular files under one or more directory roots
// and hands them to the duplicate detection engine as FileEntry values.
package walker

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/nrtkbb/dupescan/models"
)

// Options control traversal behavior.
type Options struct {
	// SkipHardlinks drops all but the first path seen for a given inode.
	// Hardlinked paths share storage already, so reporting them as
	// duplicates is usually noise.
	SkipHardlinks bool
}

// ValidateRoots checks that every root exists and is a directory. A bad root
// is the one fatal error of a scan and is reported before any walking starts.
func ValidateRoots(roots []string) error {
	if len(roots) == 0 {
		return fmt.Errorf("no scan root given")
	}
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return fmt.Errorf("invalid scan root %s: %w", root, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("invalid scan root %s: not a directory", root)
		}
	}
	return nil
}

// Collect walks every root and returns the discovered files in traversal
// order. Unreadable subtrees are logged and skipped; only context
// cancellation stops the walk early.
func Collect(ctx context.Context, roots []string, opts Options) ([]models.FileEntry, error) {
	var entries []models.FileEntry
	seen := make(map[fileID]struct{})

	for _, root := range roots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolving scan root %s: %w", root, err)
		}

		err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
			select {
			case <-ctx.Done():
				return filepath.SkipAll
			default:
			}

			if err != nil {
				log.Printf("Warning: Error accessing path %s: %v", path, err)
				return nil
			}

			if !info.Mode().IsRegular() {
				return nil
			}

			if opts.SkipHardlinks {
				if id, ok := platformFileID(path); ok {
					if _, dup := seen[id]; dup {
						return nil
					}
					seen[id] = struct{}{}
				}
			}

			entries = append(entries, models.FileEntry{
				AbsPath:   path,
				SizeBytes: uint64(info.Size()),
			})
			return nil
		})
		if err != nil && err != filepath.SkipAll {
			return nil, fmt.Errorf("walking %s: %w", absRoot, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return entries, err
	}
	return entries, nil
}

// fileID identifies an inode on a particular device.
type fileID struct {
	dev uint64
	ino uint64
}
