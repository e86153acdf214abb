package match

import "github.com/bbfold/bbfold/pkg/block"

// hashBBMatch buckets every pair of blocks that share a fingerprint of the
// given kind into m.m, keyed by that fingerprint. Grounded on bb_match.py's
// hashBBMatch, which always seeds on hash_itype2 (the operand-sensitive
// prime-product hash) before growing subgraphs from the seed pairs.
func (m *Matcher) hashBBMatch(kind block.FingerprintKind) {
	items := m.Store.Items()
	for i := 0; i < len(items); i++ {
		hi, ok := items[i].HashForKind(kind)
		if !ok {
			continue
		}
		for j := i + 1; j < len(items); j++ {
			hj, ok := items[j].HashForKind(kind)
			if !ok || hi != hj {
				continue
			}
			m.addSeedMatch(hi, items[i].ID, items[j].ID)
		}
	}
}

func (m *Matcher) addSeedMatch(hash string, i, j int) {
	existing, ok := m.m[hash]
	if !ok {
		m.m[hash] = []int{i, j}
		return
	}
	if !containsInt(existing, j) {
		m.m[hash] = append(existing, j)
	}
}
