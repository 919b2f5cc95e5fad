package footprint

import (
	"sort"

	"github.com/halcyondb/halcyon/internal/mir"
)

// SummaryTable maps bodies to their whole-body result footprints. A host
// driver populates it iteratively across bodies; during a single body's
// analysis it is read-only and safe to share between concurrent analyses.
type SummaryTable struct {
	entries map[mir.BodyID]Footprint
}

// NewSummaryTable returns an empty table.
func NewSummaryTable() *SummaryTable {
	return &SummaryTable{entries: make(map[mir.BodyID]Footprint)}
}

// Set records a body's summary, replacing any previous entry.
func (t *SummaryTable) Set(id mir.BodyID, f Footprint) {
	t.entries[id] = f
}

// Lookup returns the recorded summary for a body. A nil table records
// nothing, so analyses without cross-body context can pass nil.
func (t *SummaryTable) Lookup(id mir.BodyID) (Footprint, bool) {
	if t == nil {
		return Footprint{}, false
	}
	f, ok := t.entries[id]
	return f, ok
}

// Len returns the number of recorded summaries.
func (t *SummaryTable) Len() int { return len(t.entries) }

// Bodies returns the recorded body IDs in ascending order.
func (t *SummaryTable) Bodies() []mir.BodyID {
	ids := make([]mir.BodyID, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
