package dedup

import "github.com/nrtkbb/dupescan/models"

// indexed pairs a FileEntry with its discovery position so group members can
// be put back into discovery order after concurrent aggregation.
type indexed struct {
	idx   int
	entry models.FileEntry
}

// GroupBySize partitions entries by exact byte size. Every entry lands in
// exactly one group under its size key; no pruning happens here.
func GroupBySize(entries []models.FileEntry) map[uint64][]models.FileEntry {
	groups := make(map[uint64][]models.FileEntry)
	for _, entry := range entries {
		groups[entry.SizeBytes] = append(groups[entry.SizeBytes], entry)
	}
	return groups
}

// groupBySize is the internal, index-carrying variant used by the pipeline.
func groupBySize(entries []indexed) map[uint64][]indexed {
	groups := make(map[uint64][]indexed)
	for _, e := range entries {
		groups[e.entry.SizeBytes] = append(groups[e.entry.SizeBytes], e)
	}
	return groups
}

// pruneSingletons removes groups with fewer than two members. A file whose
// key is unique among the input cannot have a duplicate, so it leaves the
// pipeline here. Returns the pruned map, the surviving file count, and the
// number of files dropped.
func pruneSingletons[K comparable](groups map[K][]indexed) (map[K][]indexed, int, int) {
	survivors, pruned := 0, 0
	for key, members := range groups {
		if len(members) < 2 {
			pruned += len(members)
			delete(groups, key)
			continue
		}
		survivors += len(members)
	}
	return groups, survivors, pruned
}
