// Package result is the reporting layer: an in-memory table of matched
// classes, the gob-based checkpoint format that lets an analysis resume,
// and the text/JSON emitters a caller reads back. Grounded on the
// teacher's pkg/result (Table, Checkpoint), restated around match.Class
// instead of an optimization Rule.
package result

import (
	"sort"
	"sync"

	"github.com/bbfold/bbfold/pkg/match"
)

// Table stores reported classes, guarded by a mutex so a batch run's
// worker goroutines can all report into the same table.
type Table struct {
	mu      sync.Mutex
	classes []match.Class
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{}
}

// Add inserts a class into the table.
func (t *Table) Add(c match.Class) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.classes = append(t.classes, c)
}

// AddAll inserts every class in cs.
func (t *Table) AddAll(cs []match.Class) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.classes = append(t.classes, cs...)
}

// Classes returns a copy of all classes, sorted by size (descending) —
// larger matched subgraphs are the more interesting finding.
func (t *Table) Classes() []match.Class {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]match.Class, len(t.classes))
	copy(out, t.classes)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Size() != out[j].Size() {
			return out[i].Size() > out[j].Size()
		}
		return len(out[i].Paths) > len(out[j].Paths)
	})
	return out
}

// Len returns the number of classes in the table.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.classes)
}
