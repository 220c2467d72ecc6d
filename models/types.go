package models

import (
	"sync/atomic"
	"time"
)

// FileEntry is one regular file discovered during traversal. Entries are
// immutable once discovered; the engine never re-stats a path after this
// point except to open it for hashing.
type FileEntry struct {
	AbsPath   string
	SizeBytes uint64
}

// DuplicateGroup is a set of two or more paths with byte-identical content.
// Paths keep discovery order so identical inputs produce identical reports.
type DuplicateGroup struct {
	SizeBytes uint64
	SHA256    string
	Paths     []string
}

// Report is the engine's final output: duplicate groups sorted descending by
// size, ties broken by the first discovered path in each group.
type Report struct {
	Roots    []string
	Groups   []DuplicateGroup
	Started  time.Time
	Finished time.Time
}

// DuplicateFiles counts members across all groups.
func (r *Report) DuplicateFiles() int {
	n := 0
	for i := range r.Groups {
		n += len(r.Groups[i].Paths)
	}
	return n
}

// PotentialSavings is the number of bytes that would be reclaimed by keeping
// one member of each group.
func (r *Report) PotentialSavings() uint64 {
	var total uint64
	for i := range r.Groups {
		if n := len(r.Groups[i].Paths); n > 1 {
			total += r.Groups[i].SizeBytes * uint64(n-1)
		}
	}
	return total
}

// ProgressStats carries monotonically increasing counters for the progress
// boundary. Workers update the counters atomically; readers may observe a
// slightly stale snapshot, which is fine for a live indicator.
type ProgressStats struct {
	DiscoveredFiles int64
	QuickHashed     int64
	FullHashed      int64
	HashedBytes     int64
	StartTime       time.Time
}

func (s *ProgressStats) AddDiscovered(n int64)  { atomic.AddInt64(&s.DiscoveredFiles, n) }
func (s *ProgressStats) AddQuickHashed(n int64) { atomic.AddInt64(&s.QuickHashed, n) }
func (s *ProgressStats) AddFullHashed(n int64)  { atomic.AddInt64(&s.FullHashed, n) }
func (s *ProgressStats) AddHashedBytes(n int64) { atomic.AddInt64(&s.HashedBytes, n) }

func (s *ProgressStats) Snapshot() (discovered, quick, full, bytes int64) {
	return atomic.LoadInt64(&s.DiscoveredFiles),
		atomic.LoadInt64(&s.QuickHashed),
		atomic.LoadInt64(&s.FullHashed),
		atomic.LoadInt64(&s.HashedBytes)
}
