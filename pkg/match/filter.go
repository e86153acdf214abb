package match

import "sort"

// buildSizeDic indexes every normalized (seed, subgraph) bucket by its
// path length, so GetMatchedWellFormedFunctions can process larger
// subgraphs first — a bigger matched region always wins over a smaller
// one it subsumes.
func (m *Matcher) buildSizeDic() {
	m.sizeDic = make(map[int][]seedSubKey)
	for _, seed := range sortedKeys(m.pathPerNodeHash) {
		for _, sub := range sortedKeys(m.pathPerNodeHash[seed]) {
			bucket := m.pathPerNodeHash[seed][sub]
			if len(bucket) == 0 {
				continue
			}
			size := len(bucket[0])
			m.sizeDic[size] = append(m.sizeDic[size], seedSubKey{Seed: seed, Sub: sub})
		}
	}
}

// subgraphHasExternalJumpsIntoIt reports whether any non-head node in
// path is reached from a predecessor outside path — i.e. whether path
// isn't actually single-entry despite having passed normalization (used
// as a final well-formedness guard on the representative path of a
// bucket).
func (m *Matcher) subgraphHasExternalJumpsIntoIt(path []int) bool {
	for _, node := range path[1:] {
		b := m.Store.Get(node)
		for _, pred := range b.Preds {
			if !containsInt(path, pred) {
				return true
			}
		}
	}
	return false
}

// getMatchedWellFormedFunctions walks sizeDic from largest subgraphs to
// smallest, rejecting buckets with external jumps into them, suppressing
// any path that is a subset of an already-accepted (larger) subgraph, and
// applying the minimum-member-count / minimum-head-size filters. Survivors
// land in m.normalizedPathPerNodeHash. Grounded on bb_match.py's
// GetMatchedWellFormedFunctions.
func (m *Matcher) getMatchedWellFormedFunctions() {
	var moved [][]int

	sizes := make([]int, 0, len(m.sizeDic))
	for s := range m.sizeDic {
		sizes = append(sizes, s)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))

	for _, size := range sizes {
		if size < m.MinFunctionSize {
			break
		}
		for _, key := range m.sizeDic[size] {
			if m.normalizedPathPerNodeHash[key.Seed] == nil {
				m.normalizedPathPerNodeHash[key.Seed] = make(map[string][][]int)
			}
			m.normalizedPathPerNodeHash[key.Seed][key.Sub] = nil

			bucket := m.pathPerNodeHash[key.Seed][key.Sub]
			if len(bucket) == 0 {
				continue
			}
			if m.subgraphHasExternalJumpsIntoIt(bucket[0]) {
				continue
			}

			var kept [][]int
			for _, p := range bucket {
				suppressed := false
				for _, mv := range moved {
					if isSubset(p, mv) {
						suppressed = true
						break
					}
				}
				if !suppressed {
					kept = append(kept, p)
				}
			}
			if len(kept) < 2 {
				continue
			}

			if m.MinFunctionHeadSize > 0 && !m.headCovered(kept[0]) {
				continue
			}

			m.normalizedPathPerNodeHash[key.Seed][key.Sub] = kept
			moved = append(moved, kept...)
		}
	}
}

// headCovered checks that every even byte offset in the head block's
// first 8 bytes is covered by some block of path — a coarse signal that
// the match spans a real function prologue rather than a fragment.
func (m *Matcher) headCovered(path []int) bool {
	head := m.Store.Get(path[0])
	for addr := head.Start; addr < head.Start+8; addr += 2 {
		if !m.addressInPath(addr, path) {
			return false
		}
	}
	return true
}

func (m *Matcher) addressInPath(addr uint64, path []int) bool {
	for _, id := range path {
		b := m.Store.Get(id)
		if b.Start <= addr && addr < b.End {
			return true
		}
	}
	return false
}
