// Package dedup implements the staged duplicate detection engine: files are
// partitioned by size, then by a quick hash of their first bytes, then by a
// full SHA-256 digest. Each stage only sees files that still collide after
// the previous one, so most non-duplicates are pruned before any expensive
// read happens.
package dedup

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nrtkbb/dupescan/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("github.com/nrtkbb/dupescan/dedup")

// Config holds the engine knobs exposed on the scan command.
type Config struct {
	// Workers is the hashing pool size. Zero means one per logical CPU.
	Workers int
	// QuickBytes is the quick-hash read budget. Zero means 8 KiB.
	QuickBytes int64
	// SkipEmpty drops zero-byte files instead of grouping them. By default
	// all zero-byte files are duplicates of each other by definition and
	// form one group without any hashing.
	SkipEmpty bool
}

// Grouper orchestrates one scan: size partition, quick-hash partition,
// full-hash partition, report assembly. It holds no per-run state beyond the
// shared progress counters, so it can run sequential scans.
type Grouper struct {
	cfg    Config
	notify Notifier
	stats  *models.ProgressStats
}

// NewGrouper builds a Grouper. A nil notifier discards events; a nil stats
// still counts internally so callers can pass nil when they do not care.
func NewGrouper(cfg Config, notify Notifier, stats *models.ProgressStats) *Grouper {
	if cfg.Workers < 1 {
		cfg.Workers = DefaultWorkers()
	}
	if cfg.QuickBytes < 1 {
		cfg.QuickBytes = DefaultQuickHashBytes
	}
	if notify == nil {
		notify = NopNotifier{}
	}
	if stats == nil {
		stats = &models.ProgressStats{StartTime: time.Now()}
	}
	return &Grouper{cfg: cfg, notify: notify, stats: stats}
}

type quickKey struct {
	size   uint64
	digest uint64
}

type fullKey struct {
	size   uint64
	digest string
}

// candidate is a duplicate group plus the discovery index of its first
// member, kept for deterministic tie-breaking in the final sort.
type candidate struct {
	firstIdx int
	group    models.DuplicateGroup
}

// Run feeds the discovered entries through the pipeline and returns the
// duplicate report. Per-file I/O errors exclude the file and are reported
// through the Notifier; Run itself never fails once traversal has succeeded.
func (g *Grouper) Run(ctx context.Context, roots []string, entries []models.FileEntry) models.Report {
	started := time.Now()
	g.stats.AddDiscovered(int64(len(entries)))
	g.notify.ScanStarted(roots, len(entries))

	all := make([]indexed, len(entries))
	for i, entry := range entries {
		all[i] = indexed{idx: i, entry: entry}
	}

	sizeGroups, empty := g.partitionBySize(ctx, all)
	quickGroups := g.partitionByQuickHash(ctx, sizeGroups)
	finals := g.partitionByFullHash(ctx, quickGroups)

	if len(empty) > 1 {
		paths := make([]string, len(empty))
		for i := range empty {
			paths[i] = empty[i].entry.AbsPath
		}
		finals = append(finals, candidate{
			firstIdx: empty[0].idx,
			group:    models.DuplicateGroup{SizeBytes: 0, SHA256: emptySHA256, Paths: paths},
		})
	}

	sort.Slice(finals, func(i, j int) bool {
		if finals[i].group.SizeBytes != finals[j].group.SizeBytes {
			return finals[i].group.SizeBytes > finals[j].group.SizeBytes
		}
		return finals[i].firstIdx < finals[j].firstIdx
	})

	groups := make([]models.DuplicateGroup, len(finals))
	for i := range finals {
		groups[i] = finals[i].group
	}

	finished := time.Now()
	g.notify.ScanCompleted(len(groups), finished.Sub(started))

	return models.Report{
		Roots:    roots,
		Groups:   groups,
		Started:  started,
		Finished: finished,
	}
}

// partitionBySize buckets entries by exact byte size and prunes unique
// sizes. Zero-byte entries come back separately: their content is known
// without reading, so they bypass both hashing stages.
func (g *Grouper) partitionBySize(ctx context.Context, all []indexed) (map[uint64][]indexed, []indexed) {
	_, span := tracer.Start(ctx, "dedup.size")
	defer span.End()

	groups := groupBySize(all)

	empty := groups[0]
	delete(groups, 0)
	if g.cfg.SkipEmpty {
		empty = nil
	}

	groups, survivors, pruned := pruneSingletons(groups)
	span.SetAttributes(
		attribute.Int("groups", len(groups)),
		attribute.Int("survivors", survivors),
		attribute.Int("pruned", pruned),
	)
	g.notify.StageCompleted(StageSize, len(groups), survivors, pruned)
	return groups, empty
}

// partitionByQuickHash fans the size-group survivors out to the worker pool,
// buckets them by (size, xxHash64 of the first QuickBytes bytes), and prunes
// unique digests. A differing quick digest proves non-duplication; a file
// that cannot be read is excluded with a warning.
func (g *Grouper) partitionByQuickHash(ctx context.Context, sizeGroups map[uint64][]indexed) map[quickKey][]indexed {
	_, span := tracer.Start(ctx, "dedup.quick")
	defer span.End()

	var tasks []indexed
	for _, members := range sizeGroups {
		tasks = append(tasks, members...)
	}

	groups := make(map[quickKey][]indexed)
	var mu sync.Mutex
	runPool(ctx, g.cfg.Workers, tasks, func(e indexed) {
		digest, err := QuickHash(e.entry.AbsPath, g.cfg.QuickBytes)
		if err != nil {
			g.notify.FileExcluded(e.entry.AbsPath, err)
			return
		}
		g.stats.AddQuickHashed(1)
		read := int64(g.cfg.QuickBytes)
		if int64(e.entry.SizeBytes) < read {
			read = int64(e.entry.SizeBytes)
		}
		g.stats.AddHashedBytes(read)

		key := quickKey{size: e.entry.SizeBytes, digest: digest}
		mu.Lock()
		groups[key] = append(groups[key], e)
		mu.Unlock()
	})

	sortMembers(groups)
	groups, survivors, pruned := pruneSingletons(groups)
	span.SetAttributes(
		attribute.Int("groups", len(groups)),
		attribute.Int("survivors", survivors),
		attribute.Int("pruned", pruned),
	)
	g.notify.StageCompleted(StageQuick, len(groups), survivors, pruned)
	return groups
}

// partitionByFullHash confirms the remaining candidates with a full SHA-256
// pass and keeps only groups that still share a digest. These groups are the
// engine's answer.
func (g *Grouper) partitionByFullHash(ctx context.Context, quickGroups map[quickKey][]indexed) []candidate {
	_, span := tracer.Start(ctx, "dedup.full")
	defer span.End()

	var tasks []indexed
	for _, members := range quickGroups {
		tasks = append(tasks, members...)
	}

	groups := make(map[fullKey][]indexed)
	var mu sync.Mutex
	runPool(ctx, g.cfg.Workers, tasks, func(e indexed) {
		digest, err := FullHash(e.entry.AbsPath)
		if err != nil {
			g.notify.FileExcluded(e.entry.AbsPath, err)
			return
		}
		g.stats.AddFullHashed(1)
		g.stats.AddHashedBytes(int64(e.entry.SizeBytes))

		key := fullKey{size: e.entry.SizeBytes, digest: digest}
		mu.Lock()
		groups[key] = append(groups[key], e)
		mu.Unlock()
	})

	sortMembers(groups)
	groups, survivors, pruned := pruneSingletons(groups)
	span.SetAttributes(
		attribute.Int("groups", len(groups)),
		attribute.Int("survivors", survivors),
		attribute.Int("pruned", pruned),
	)
	g.notify.StageCompleted(StageFull, len(groups), survivors, pruned)

	finals := make([]candidate, 0, len(groups))
	for key, members := range groups {
		paths := make([]string, len(members))
		for i := range members {
			paths[i] = members[i].entry.AbsPath
		}
		finals = append(finals, candidate{
			firstIdx: members[0].idx,
			group: models.DuplicateGroup{
				SizeBytes: key.size,
				SHA256:    key.digest,
				Paths:     paths,
			},
		})
	}
	return finals
}

// sortMembers restores discovery order inside each bucket. Workers insert in
// completion order, which is nondeterministic; the index sort makes the
// final report reproducible across runs.
func sortMembers[K comparable](groups map[K][]indexed) {
	for _, members := range groups {
		sort.Slice(members, func(i, j int) bool { return members[i].idx < members[j].idx })
	}
}
