// Package freqmatch implements the frequency-histogram fuzzy matcher: the
// fallback used when two blocks' H1 and H2 fingerprints differ but their
// instructions might still be "similar enough" to pair during subgraph
// growth.
package freqmatch

import "github.com/bbfold/bbfold/pkg/block"

// Match decides whether two frequency fingerprints are similar enough
// under a coverage threshold p1 and a per-bucket ratio threshold p2 (both
// percentages). It returns (ok1, ok2) exactly as spec §4.3 defines them:
// ok1 is the coverage test, ok2 is the average per-bucket ratio test. A
// caller typically requires both to hold.
//
// The threshold comparisons are literal translations of the original
// GraphSlick match_block_frequencies: ct1 is always accumulated from the
// histogram with fewer keys and divided by ft1's total, ct2 from the
// histogram with more keys divided by ft2's total — even though that
// means, when len(f1) > len(f2), ct1 is drawn from f2's values but divided
// by t1. That asymmetry is preserved deliberately (see DESIGN.md); this is
// not a bug to "fix", it is the documented behavior.
func Match(ft1, ft2 block.FreqFingerprint, p1, p2 float64) (ok1, ok2 bool) {
	fs, fb := ft1.Histogram, ft2.Histogram
	if len(ft1.Histogram) > len(ft2.Histogram) {
		fs, fb = ft2.Histogram, ft1.Histogram
	}

	var ct1, ct2 uint64
	var tp float64
	var commCount int
	for k, v1 := range fs {
		v2, ok := fb[k]
		if !ok {
			continue
		}
		commCount++
		ct1 += uint64(v1)
		ct2 += uint64(v2)

		minv, maxv := v1, v2
		if minv > maxv {
			minv, maxv = maxv, minv
		}
		tp += 100 * float64(minv) / float64(maxv)
	}

	if ft1.Total > 0 && ft2.Total > 0 {
		cp1 := 100 * float64(ct1) / float64(ft1.Total)
		cp2 := 100 * float64(ct2) / float64(ft2.Total)
		ok1 = cp1 > p1 && cp2 > p1
	}

	if commCount > 0 {
		ok2 = (tp / float64(commCount)) > p2
	}

	return ok1, ok2
}

// CoverageThreshold picks the coverage percentage (p1 for Match) from the
// smaller of two blocks' instruction counts, per spec §4.6 trial c.
func CoverageThreshold(count1, count2 uint32) float64 {
	m := count1
	if count2 < m {
		m = count2
	}
	switch {
	case m <= 4:
		return 50
	case m <= 6:
		return 60
	case m <= 8:
		return 75
	default:
		return 85
	}
}

// PerBucketThreshold is the fixed p2 threshold used throughout: 95.
const PerBucketThreshold = 95
