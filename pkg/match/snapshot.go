package match

// Snapshot is the persistable slice of Matcher state: everything the
// subgraph-growth phase produced, before well-formedness filtering. It
// mirrors bb_match.py's SaveState/LoadState, which checkpoints exactly
// these five tables (pathPerNodeHash, pathPerNodeHashFull, size_dic,
// nodeHashes, M) so a long analysis can resume the filtering pass without
// rebuilding the CFG or regrowing subgraphs.
type Snapshot struct {
	M                   map[string][]int
	PathPerNodeHashFull map[string]map[string][][]int
	PathPerNodeHash     map[string]map[string][][]int
	SizeDic             map[int][]seedSubKey
	NodeHashes          map[int]nodeHashPair
}

// Snapshot captures the Matcher's post-growth state.
func (m *Matcher) Snapshot() Snapshot {
	return Snapshot{
		M:                   m.m,
		PathPerNodeHashFull: m.pathPerNodeHashFull,
		PathPerNodeHash:     m.pathPerNodeHash,
		SizeDic:             m.sizeDic,
		NodeHashes:          m.nodeHashes,
	}
}

// RestoreSnapshot builds a Matcher from previously saved state, for
// Finalize (not Analyze — there is nothing to re-grow from). The returned
// Matcher has a nil Store; Finalize reads block predecessors and bounds
// from Store, so the caller sets Store to the function's block store
// before calling it.
func RestoreSnapshot(snap Snapshot, minFunctionSize, minFunctionHeadSize int) *Matcher {
	return &Matcher{
		MinFunctionSize:           minFunctionSize,
		MinFunctionHeadSize:       minFunctionHeadSize,
		m:                         snap.M,
		pathPerNodeHashFull:       snap.PathPerNodeHashFull,
		pathPerNodeHash:           snap.PathPerNodeHash,
		sizeDic:                   snap.SizeDic,
		nodeHashes:                snap.NodeHashes,
		normalizedPathPerNodeHash: make(map[string]map[string][][]int),
		analyzed:                  true,
	}
}
