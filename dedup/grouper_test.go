package dedup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nrtkbb/dupescan/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingNotifier captures exclusions for assertions. FileExcluded may be
// called from several workers at once.
type recordingNotifier struct {
	mu       sync.Mutex
	excluded []string
}

func (n *recordingNotifier) ScanStarted([]string, int)            {}
func (n *recordingNotifier) StageCompleted(string, int, int, int) {}
func (n *recordingNotifier) ScanCompleted(int, time.Duration)     {}

func (n *recordingNotifier) FileExcluded(path string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.excluded = append(n.excluded, path)
}

func entryFor(t *testing.T, path string) models.FileEntry {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return models.FileEntry{AbsPath: path, SizeBytes: uint64(info.Size())}
}

func runScan(t *testing.T, cfg Config, entries []models.FileEntry) models.Report {
	t.Helper()
	g := NewGrouper(cfg, nil, nil)
	return g.Run(context.Background(), []string{"test"}, entries)
}

func TestRunBasicScenario(t *testing.T) {
	// A and B share content, C shares only size with them, D has a unique
	// size. Only {A, B} may be reported.
	dir := t.TempDir()
	a := writeFile(t, dir, "a", []byte(strings.Repeat("x", 10)))
	b := writeFile(t, dir, "b", []byte(strings.Repeat("x", 10)))
	c := writeFile(t, dir, "c", []byte(strings.Repeat("y", 10)))
	d := writeFile(t, dir, "d", []byte(strings.Repeat("z", 20)))

	entries := []models.FileEntry{
		entryFor(t, a), entryFor(t, b), entryFor(t, c), entryFor(t, d),
	}
	rep := runScan(t, Config{Workers: 2}, entries)

	require.Len(t, rep.Groups, 1)
	assert.Equal(t, uint64(10), rep.Groups[0].SizeBytes)
	assert.Equal(t, []string{a, b}, rep.Groups[0].Paths)
}

func TestRunUniqueSizesOnly(t *testing.T) {
	dir := t.TempDir()
	var entries []models.FileEntry
	for i, content := range []string{"a", "bb", "ccc", "dddd"} {
		path := writeFile(t, dir, string(rune('a'+i)), []byte(content))
		entries = append(entries, entryFor(t, path))
	}

	rep := runScan(t, Config{}, entries)
	assert.Empty(t, rep.Groups)
}

func TestRunNoFiles(t *testing.T) {
	rep := runScan(t, Config{}, nil)
	assert.Empty(t, rep.Groups)
}

func TestRunSizePruningSkipsHashing(t *testing.T) {
	// C shares A and B's size but differs in its first bytes, so the quick
	// stage must prune it before any full hash happens.
	dir := t.TempDir()
	a := writeFile(t, dir, "a", []byte("same-same-same"))
	b := writeFile(t, dir, "b", []byte("same-same-same"))
	c := writeFile(t, dir, "c", []byte("diff-diff-diff"))

	stats := &models.ProgressStats{StartTime: time.Now()}
	g := NewGrouper(Config{Workers: 2}, nil, stats)
	rep := g.Run(context.Background(), []string{"test"}, []models.FileEntry{
		entryFor(t, a), entryFor(t, b), entryFor(t, c),
	})

	require.Len(t, rep.Groups, 1)
	assert.Equal(t, []string{a, b}, rep.Groups[0].Paths)

	_, quick, full, _ := stats.Snapshot()
	assert.Equal(t, int64(3), quick, "all three share a size and get quick hashed")
	assert.Equal(t, int64(2), full, "only the surviving candidates get fully hashed")
}

func TestRunQuickCollisionResolvedByFullHash(t *testing.T) {
	// Identical prefix within the quick budget, different tails: the quick
	// stage keeps them together, the full stage must split them.
	dir := t.TempDir()
	prefix := strings.Repeat("p", 32)
	a := writeFile(t, dir, "a", []byte(prefix+"tail-one"))
	b := writeFile(t, dir, "b", []byte(prefix+"tail-two"))

	rep := runScan(t, Config{Workers: 2, QuickBytes: 32}, []models.FileEntry{
		entryFor(t, a), entryFor(t, b),
	})
	assert.Empty(t, rep.Groups)
}

func TestRunSortOrderDescendingBySize(t *testing.T) {
	dir := t.TempDir()
	small1 := writeFile(t, dir, "s1", []byte(strings.Repeat("s", 10)))
	small2 := writeFile(t, dir, "s2", []byte(strings.Repeat("s", 10)))
	big1 := writeFile(t, dir, "b1", []byte(strings.Repeat("B", 50)))
	big2 := writeFile(t, dir, "b2", []byte(strings.Repeat("B", 50)))
	other1 := writeFile(t, dir, "o1", []byte(strings.Repeat("o", 10)))
	other2 := writeFile(t, dir, "o2", []byte(strings.Repeat("o", 10)))

	entries := []models.FileEntry{
		entryFor(t, small1), entryFor(t, small2),
		entryFor(t, big1), entryFor(t, big2),
		entryFor(t, other1), entryFor(t, other2),
	}
	rep := runScan(t, Config{Workers: 4}, entries)

	require.Len(t, rep.Groups, 3)
	assert.Equal(t, uint64(50), rep.Groups[0].SizeBytes)
	// Same-size groups keep discovery order: the s pair was seen first.
	assert.Equal(t, []string{small1, small2}, rep.Groups[1].Paths)
	assert.Equal(t, []string{other1, other2}, rep.Groups[2].Paths)
}

func TestRunIdempotent(t *testing.T) {
	dir := t.TempDir()
	var entries []models.FileEntry
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		content := strings.Repeat(name, 12)
		if name == "b" || name == "d" {
			content = strings.Repeat("dup!", 3)
		}
		path := writeFile(t, dir, name, []byte(content))
		entries = append(entries, entryFor(t, path))
	}

	first := runScan(t, Config{Workers: 3}, entries)
	second := runScan(t, Config{Workers: 3}, entries)
	assert.Equal(t, first.Groups, second.Groups)
}

func TestRunEmptyFilesGroupedByDefault(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a", nil)
	b := writeFile(t, dir, "b", nil)

	rep := runScan(t, Config{}, []models.FileEntry{entryFor(t, a), entryFor(t, b)})

	require.Len(t, rep.Groups, 1)
	assert.Equal(t, uint64(0), rep.Groups[0].SizeBytes)
	assert.Equal(t, emptySHA256, rep.Groups[0].SHA256)
	assert.Equal(t, []string{a, b}, rep.Groups[0].Paths)
}

func TestRunEmptyFilesSkipped(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a", nil)
	b := writeFile(t, dir, "b", nil)

	rep := runScan(t, Config{SkipEmpty: true}, []models.FileEntry{entryFor(t, a), entryFor(t, b)})
	assert.Empty(t, rep.Groups)
}

func TestRunVanishedFileExcluded(t *testing.T) {
	// A file that disappears between discovery and hashing is excluded with
	// a warning; the rest of the scan completes.
	dir := t.TempDir()
	a := writeFile(t, dir, "a", []byte(strings.Repeat("q", 10)))
	b := writeFile(t, dir, "b", []byte(strings.Repeat("q", 10)))
	gone := filepath.Join(dir, "gone")

	notify := &recordingNotifier{}
	g := NewGrouper(Config{Workers: 2}, notify, nil)
	rep := g.Run(context.Background(), []string{"test"}, []models.FileEntry{
		entryFor(t, a), entryFor(t, b),
		{AbsPath: gone, SizeBytes: 10},
	})

	require.Len(t, rep.Groups, 1)
	assert.Equal(t, []string{a, b}, rep.Groups[0].Paths)
	assert.Equal(t, []string{gone}, notify.excluded)
}

func TestGroupBySizeKeepsEveryEntry(t *testing.T) {
	entries := []models.FileEntry{
		{AbsPath: "/x/a", SizeBytes: 1},
		{AbsPath: "/x/b", SizeBytes: 2},
		{AbsPath: "/x/c", SizeBytes: 1},
	}
	groups := GroupBySize(entries)
	require.Len(t, groups, 2)
	assert.Len(t, groups[1], 2)
	assert.Len(t, groups[2], 1)
}
