package dedup

import (
	"log"
	"time"
)

// Pipeline stage names as reported through the Notifier.
const (
	StageSize  = "size"
	StageQuick = "quick-hash"
	StageFull  = "full-hash"
)

// Notifier receives lifecycle events from one engine run. Implementations
// must not block: hashing workers report completions through atomic counters
// in ProgressStats, and stage events fire from the orchestrating goroutine
// between stages. FileExcluded is the exception and must tolerate concurrent
// calls, since workers report unreadable files as they hit them.
type Notifier interface {
	ScanStarted(roots []string, files int)
	StageCompleted(stage string, groups, survivors, pruned int)
	FileExcluded(path string, err error)
	ScanCompleted(groups int, elapsed time.Duration)
}

// LogNotifier writes scan progress to the standard logger.
type LogNotifier struct{}

func (LogNotifier) ScanStarted(roots []string, files int) {
	if len(roots) == 1 {
		log.Printf("Starting duplicate detection in %s (%d files)", roots[0], files)
		return
	}
	log.Printf("Starting duplicate detection across %d directories (%d files)", len(roots), files)
}

func (LogNotifier) StageCompleted(stage string, groups, survivors, pruned int) {
	log.Printf("Stage %s complete: %d groups, %d candidates, %d files pruned", stage, groups, survivors, pruned)
}

func (LogNotifier) FileExcluded(path string, err error) {
	log.Printf("Warning: Excluding %s: %v", path, err)
}

func (LogNotifier) ScanCompleted(groups int, elapsed time.Duration) {
	log.Printf("Scan completed in %v: %d duplicate groups", elapsed, groups)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) ScanStarted([]string, int)            {}
func (NopNotifier) StageCompleted(string, int, int, int) {}
func (NopNotifier) FileExcluded(string, error)           {}
func (NopNotifier) ScanCompleted(int, time.Duration)     {}
