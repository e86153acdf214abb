package match

// FindSimilar looks up every recorded matched subgraph containing the
// given node-id subset and returns the aligned subset from every sibling
// path, taken from every bucket of the first head node (candidates tried
// in the order given) that yields any match. A single-node query instead
// returns every node id sharing that node's H2 fingerprint, each wrapped
// as its own singleton slice.
//
// Grounded on bb_match.py's FindSimilar. Its Python source walks each
// bucket's match list and references a `break` whose indentation — after
// the inner per-match block, not inside it — makes it fire on the first
// match regardless of outcome, only ever consulting the bucket's first
// entry. That reads as an indentation slip rather than intended
// behavior, so this instead checks every match in a bucket and keeps the
// per-headNode early return, which is the shape the surrounding
// docstring describes.
func (m *Matcher) FindSimilar(nodeIDs []int) [][]int {
	if len(nodeIDs) == 0 {
		return nil
	}
	if len(nodeIDs) == 1 {
		head := nodeIDs[0]
		siblings := m.m[m.nodeHashes[head].H2]
		out := make([][]int, 0, len(siblings))
		for _, id := range siblings {
			out = append(out, []int{id})
		}
		return out
	}

	var result [][]int
	seen := make(map[string]bool)

	for _, headNode := range nodeIDs {
		headHash := m.nodeHashes[headNode].H2
		for _, subHash := range sortedKeys(m.pathPerNodeHashFull[headHash]) {
			matches := m.pathPerNodeHashFull[headHash][subHash]
			if len(matches) == 0 || len(nodeIDs) > len(matches[0]) {
				continue
			}
			for _, match := range matches {
				if match[0] != headNode || !isSubset(nodeIDs, match) {
					continue
				}
				matchIndex := make(map[int]int, len(nodeIDs))
				for _, node := range nodeIDs {
					matchIndex[node] = indexOf(match, node)
				}
				for _, sibling := range matches {
					subset := make([]int, len(nodeIDs))
					for i, node := range nodeIDs {
						subset[i] = sibling[matchIndex[node]]
					}
					key := intSliceKey(subset)
					if !seen[key] {
						seen[key] = true
						result = append(result, subset)
					}
				}
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return result
}

func intSliceKey(xs []int) string {
	var buf []byte
	for _, x := range xs {
		buf = append(buf, byte(x), byte(x>>8), byte(x>>16), byte(x>>24), ',')
	}
	return string(buf)
}
