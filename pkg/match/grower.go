package match

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/bbfold/bbfold/pkg/block"
	"github.com/bbfold/bbfold/pkg/freqmatch"
)

type nodePair struct{ x, y int }

// findSubGraphs grows every seed pair recorded in m.m into a matched pair
// of paths via a dual lockstep BFS, grounded on bb_match.py's
// findSubGraphs/growBBs. Seed hashes are visited in sorted order so the
// recorded path tables come out reproducibly regardless of Go's
// randomized map iteration.
func (m *Matcher) findSubGraphs() {
	for _, seedHash := range sortedKeys(m.m) {
		ids := m.m[seedHash]
		for z := 0; z < len(ids)-1; z++ {
			for _, j := range ids[z+1:] {
				m.growPair(seedHash, ids[z], j)
			}
		}
	}
}

func (m *Matcher) growPair(seedHash string, aID, bID int) {
	path1 := []int{aID}
	path2 := []int{bID}
	visited1 := map[int]bool{aID: true}
	visited2 := map[int]bool{bID: true}
	pathHashes := map[int]string{aID: m.Store.Get(aID).Ctx.HashItype2}

	queue := []nodePair{{aID, bID}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		x, y := cur.x, cur.y

		tmpVisited2 := map[int]bool{}
		for _, l := range m.Store.Get(x).Succs {
			if visited1[l] || l == x || containsInt(path1, l) {
				continue
			}
			visited1[l] = true

			backup := cloneIntBoolSet(tmpVisited2)
			matched, cand := m.findMatchInSuccs(l, y, block.KindH1, visited2, tmpVisited2, path2)
			usedKind := block.KindH1
			if !matched {
				tmpVisited2 = cloneIntBoolSet(backup)
				matched, cand = m.findMatchInSuccs(l, y, block.KindH2, visited2, tmpVisited2, path2)
				usedKind = block.KindH2
			}
			if !matched {
				tmpVisited2 = cloneIntBoolSet(backup)
				matched, cand = m.findMatchInSuccs(l, y, block.KindFreq, visited2, tmpVisited2, path2)
				usedKind = block.KindFreq
			}

			if matched {
				hashStr, _ := m.Store.Get(l).HashForKind(usedKind)
				pathHashes[l] = hashStr
				path1 = append(path1, l)
				path2 = append(path2, cand)
				visited2[cand] = true
				queue = append(queue, nodePair{l, cand})
			}
		}
		for k := range tmpVisited2 {
			visited2[k] = true
		}
	}

	m.recordGrowth(seedHash, path1, path2, pathHashes)
}

// findMatchInSuccs scans y's successors for a node matching node1 under
// kind, skipping anything already visited, already in path2, or equal to
// y itself. Every candidate it looks at — matched or not — is marked in
// tmpVisited2, which growPair merges into visited2 once the current BFS
// step is done, so later steps skip it. The skip test reads only
// visited2, so later trials and later siblings l in the same step still
// see those candidates.
func (m *Matcher) findMatchInSuccs(node1, parent2 int, kind block.FingerprintKind, visited2, tmpVisited2 map[int]bool, path2 []int) (bool, int) {
	for _, cand := range m.Store.Get(parent2).Succs {
		if visited2[cand] || cand == parent2 || containsInt(path2, cand) {
			continue
		}
		tmpVisited2[cand] = true
		if m.matchKind(node1, cand, kind) {
			if node1 == cand {
				continue
			}
			return true, cand
		}
	}
	return false, 0
}

func (m *Matcher) matchKind(aID, bID int, kind block.FingerprintKind) bool {
	a := m.Store.Get(aID)
	b := m.Store.Get(bID)
	switch kind {
	case block.KindH1:
		return a.Ctx.HashItype1 == b.Ctx.HashItype1
	case block.KindH2:
		return a.Ctx.HashItype2 == b.Ctx.HashItype2
	case block.KindFreq:
		if a.Ctx.Freq == nil {
			f := m.FP.Frequency(a.Start, a.End)
			a.Ctx.Freq = &f
		}
		if b.Ctx.Freq == nil {
			f := m.FP.Frequency(b.Start, b.End)
			b.Ctx.Freq = &f
		}
		threshold := freqmatch.CoverageThreshold(a.Ctx.Freq.Total, b.Ctx.Freq.Total)
		ok1, ok2 := freqmatch.Match(*a.Ctx.Freq, *b.Ctx.Freq, threshold, freqmatch.PerBucketThreshold)
		if !ok1 || !ok2 {
			return false
		}
		sig := freqSignature(a.Ctx.Freq, b.Ctx.Freq)
		a.Ctx.BindFreqSignature(sig)
		b.Ctx.BindFreqSignature(sig)
		return true
	default:
		return false
	}
}

// freqSignature derives a synthetic fingerprint for a pair of blocks
// matched only by frequency, so later subgraph-hash computation has a
// stable per-node string to fold in. Grounded on bb_ida.py's freqHash,
// which hashes the stringified intersection of the two histograms; the
// Python set's iteration order isn't part of the documented algorithm, so
// this sorts the intersecting keys for reproducibility instead.
func freqSignature(f1, f2 *block.FreqFingerprint) string {
	var keys []string
	for k := range f1.Histogram {
		if _, ok := f2.Histogram[k]; ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	sum := sha1.Sum([]byte(strings.Join(keys, ",")))
	return hex.EncodeToString(sum[:])
}

func (m *Matcher) recordGrowth(seedHash string, path1, path2 []int, pathHashes map[int]string) {
	if len(path1) != len(path2) {
		m.mismatchedLengthCount++
		return
	}
	if len(path1) <= 1 {
		return
	}

	fullHash := computeSubgraphHash(path1, pathHashes)
	appendUniquePath(m.pathPerNodeHashFull, seedHash, fullHash, path1)
	appendUniquePath(m.pathPerNodeHashFull, seedHash, fullHash, path2)

	p1n, p2n, err := m.makeSubgraphSingleEntryPoint(path1, path2)
	if err != nil || len(p1n) <= 1 {
		return
	}
	normHash := computeSubgraphHash(p1n, pathHashes)
	appendUniquePath(m.pathPerNodeHash, seedHash, normHash, p1n)
	appendUniquePath(m.pathPerNodeHash, seedHash, normHash, p2n)
}

func computeSubgraphHash(path []int, nodeHashes map[int]string) string {
	var buf strings.Builder
	for _, id := range path {
		buf.WriteString(nodeHashes[id])
	}
	sum := sha1.Sum([]byte(buf.String()))
	return hex.EncodeToString(sum[:])
}

func appendUniquePath(store map[string]map[string][][]int, seed, sub string, path []int) {
	if store[seed] == nil {
		store[seed] = make(map[string][][]int)
	}
	bucket := store[seed][sub]
	cp := append([]int(nil), path...)
	for _, existing := range bucket {
		if intSliceEqual(existing, cp) {
			return
		}
	}
	store[seed][sub] = append(bucket, cp)
}
