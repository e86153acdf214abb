// Package match implements the subgraph-pair discovery engine: given a
// populated cfgstore.Store, it finds maximal matching pairs (and larger
// groups) of basic-block paths that are syntactically duplicated within
// the same function — the same algorithm bb_match.py's bbMatcherClass
// runs, restated around Go's CFGBuilder/Decoder callbacks instead of an
// IDA Pro database.
package match

import (
	"errors"
	"sort"

	"github.com/bbfold/bbfold/pkg/block"
	"github.com/bbfold/bbfold/pkg/cfgstore"
	"github.com/bbfold/bbfold/pkg/inst"
	"github.com/bbfold/bbfold/pkg/prime"
)

type nodeHashPair struct {
	H1, H2 string
}

type seedSubKey struct {
	Seed, Sub string
}

// Matcher runs one analysis over one function's block store. It is
// one-shot: call Analyze once per instance.
type Matcher struct {
	Store *cfgstore.Store
	FP    *block.Fingerprinter

	// MinFunctionSize discards matched subgraphs with fewer than this many
	// blocks. bb_match.py hardcodes this at 4.
	MinFunctionSize int
	// MinFunctionHeadSize, when > 0, additionally requires that every byte
	// offset in (head.Start, head.Start+8, step 2) falls inside some block
	// of the candidate subgraph — a coarse "the match covers a real
	// function prologue" filter.
	MinFunctionHeadSize int

	m                         map[string][]int
	pathPerNodeHashFull       map[string]map[string][][]int
	pathPerNodeHash           map[string]map[string][][]int
	normalizedPathPerNodeHash map[string]map[string][][]int
	sizeDic                   map[int][]seedSubKey
	nodeHashes                map[int]nodeHashPair

	mismatchedLengthCount int
	analyzed              bool
}

// New returns a Matcher over an already-populated store.
func New(store *cfgstore.Store, fp *block.Fingerprinter) *Matcher {
	return &Matcher{
		Store:                     store,
		FP:                        fp,
		MinFunctionSize:           4,
		m:                         make(map[string][]int),
		pathPerNodeHashFull:       make(map[string]map[string][][]int),
		pathPerNodeHash:           make(map[string]map[string][][]int),
		normalizedPathPerNodeHash: make(map[string]map[string][][]int),
		sizeDic:                   make(map[int][]seedSubKey),
		nodeHashes:                make(map[int]nodeHashPair),
	}
}

// BuildFromCFG runs dec/builder over funcEntry and returns a populated
// Store, with every block's fingerprint context already computed.
func BuildFromCFG(dec inst.Decoder, builder inst.CFGBuilder, funcEntry uint64, primes *prime.Table) (*cfgstore.Store, error) {
	specs, err := builder.BuildCFG(funcEntry)
	if err != nil {
		return nil, &BuilderFailureError{Err: err}
	}
	if len(specs) == 0 {
		return nil, ErrEmptyFunction
	}

	ids := make([]int, 0, len(specs))
	for id := range specs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	fp := block.NewFingerprinter(dec, primes)
	store := cfgstore.New()
	for _, id := range ids {
		spec := specs[id]
		ctx := fp.ComputeContext(spec.Start, spec.End, nil)
		store.Insert(&block.Def{
			ID:    id,
			Start: spec.Start,
			End:   spec.End,
			Succs: append([]int(nil), spec.Succs...),
			Preds: append([]int(nil), spec.Preds...),
			Ctx:   ctx,
		})
	}
	return store, nil
}

// ensureContexts fills in any block whose Ctx wasn't precomputed by the
// caller — BuildFromCFG already does this, but a Store assembled by hand
// (e.g. from a fixture or a cache load) may not have.
func (m *Matcher) ensureContexts() {
	for _, b := range m.Store.Items() {
		if b.Ctx == nil {
			b.Ctx = m.FP.ComputeContext(b.Start, b.End, nil)
		}
	}
}

// Analyze runs the full pipeline — equivalence grouping, subgraph-pair
// growth, well-formedness filtering — and returns the surviving matched
// classes in deterministic (seed-hash, subgraph-hash) order.
func (m *Matcher) Analyze() ([]Class, error) {
	if m.analyzed {
		return nil, errors.New("match: Analyze already ran on this Matcher")
	}
	m.analyzed = true

	if m.Store.Len() == 0 {
		return nil, nil
	}

	m.ensureContexts()
	for _, b := range m.Store.Items() {
		m.nodeHashes[b.ID] = nodeHashPair{H1: b.Ctx.HashItype1, H2: b.Ctx.HashItype2}
	}

	m.hashBBMatch(block.KindH2)
	m.findSubGraphs()
	return m.Finalize(), nil
}

// Finalize runs the well-formedness filter over whatever seed/growth state
// the Matcher currently holds and collects the surviving classes. Analyze
// calls this itself; it is exported separately so a Matcher restored from
// a Snapshot (which skips straight to post-growth state) can run it
// without repeating equivalence grouping and subgraph growth.
func (m *Matcher) Finalize() []Class {
	m.buildSizeDic()
	m.getMatchedWellFormedFunctions()

	var classes []Class
	for _, seed := range sortedKeys(m.normalizedPathPerNodeHash) {
		for _, sub := range sortedKeys(m.normalizedPathPerNodeHash[seed]) {
			paths := m.normalizedPathPerNodeHash[seed][sub]
			if len(paths) == 0 {
				continue
			}
			classes = append(classes, Class{SeedHash: seed, SubgraphHash: sub, Paths: paths})
		}
	}
	return classes
}
