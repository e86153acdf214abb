// Package cfgstore is the in-memory CFG store: a directed graph of block
// records keyed by block id, owned exclusively by the Matcher that built
// it. Grounded on bb_types.py's BBMan (insert/get/items/find_by_addr,
// add_succ/add_pred keeping the bidirectional invariant).
package cfgstore

import "github.com/bbfold/bbfold/pkg/block"

// Store holds one function's basic blocks, keyed by id.
type Store struct {
	blocks map[int]*block.Def
	// order preserves first-insertion order for deterministic iteration —
	// Go map iteration order is randomized and several spec invariants
	// (first-appearance order in M, stable successor iteration order)
	// depend on insertion order being reproducible.
	order []int
}

// New returns an empty Store.
func New() *Store {
	return &Store{blocks: make(map[int]*block.Def)}
}

// Insert adds b, keyed by b.ID. Insertion is idempotent: a second insert of
// the same id is ignored, matching the CFG-builder contract that it never
// re-inserts a block.
func (s *Store) Insert(b *block.Def) {
	if _, exists := s.blocks[b.ID]; exists {
		return
	}
	s.blocks[b.ID] = b
	s.order = append(s.order, b.ID)
}

// Get returns the block with the given id, or nil if absent.
func (s *Store) Get(id int) *block.Def {
	return s.blocks[id]
}

// Items returns every block in first-insertion order.
func (s *Store) Items() []*block.Def {
	out := make([]*block.Def, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.blocks[id])
	}
	return out
}

// Len returns the number of blocks in the store.
func (s *Store) Len() int {
	return len(s.blocks)
}

// FindByAddr returns the unique block containing addr, or nil.
func (s *Store) FindByAddr(addr uint64) *block.Def {
	for _, id := range s.order {
		b := s.blocks[id]
		if b.Start <= addr && addr < b.End {
			return b
		}
	}
	return nil
}

// AddSucc records that from has succ as a successor, and — when linkPred
// is set — that succ has from as a predecessor, keeping the bidirectional
// invariant u in b.succs <=> b.id in cfg[u].preds.
func (s *Store) AddSucc(fromID, succID int, linkPred bool) {
	from := s.blocks[fromID]
	if from != nil && !containsInt(from.Succs, succID) {
		from.Succs = append(from.Succs, succID)
	}
	if linkPred {
		if succ := s.blocks[succID]; succ != nil && !containsInt(succ.Preds, fromID) {
			succ.Preds = append(succ.Preds, fromID)
		}
	}
}

// AddPred records that from has pred as a predecessor, and — when
// linkSucc is set — that pred has from as a successor.
func (s *Store) AddPred(fromID, predID int, linkSucc bool) {
	from := s.blocks[fromID]
	if from != nil && !containsInt(from.Preds, predID) {
		from.Preds = append(from.Preds, predID)
	}
	if linkSucc {
		if pred := s.blocks[predID]; pred != nil && !containsInt(pred.Succs, fromID) {
			pred.Succs = append(pred.Succs, fromID)
		}
	}
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// Consistent reports whether the bidirectional succ/pred invariant holds
// for every block in the store — used by tests, not by the hot path.
func (s *Store) Consistent() bool {
	for _, b := range s.blocks {
		for _, succID := range b.Succs {
			succ := s.blocks[succID]
			if succ == nil || !containsInt(succ.Preds, b.ID) {
				return false
			}
		}
	}
	return true
}
