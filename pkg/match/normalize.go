package match

// makeSubgraphSingleEntryPoint trims interior nodes whose predecessors
// reach outside the matched path, repeating until no such node remains
// (the head node, path1[0], is always kept regardless of its preds).
// Grounded on bb_match.py's same-named routine. path2 is trimmed at the
// same indices so the two paths stay aligned.
func (m *Matcher) makeSubgraphSingleEntryPoint(path1, path2 []int) ([]int, []int, error) {
	if len(path1) != len(path2) {
		return nil, nil, &LengthMismatchError{Len1: len(path1), Len2: len(path2)}
	}

	p1 := append([]int(nil), path1...)
	p2 := append([]int(nil), path2...)
	if len(p1) == 0 {
		return p1, p2, nil
	}
	head := p1[0]

	for {
		removeIdx := -1
		for idx, node := range p1 {
			if node == head {
				continue
			}
			b := m.Store.Get(node)
			for _, pred := range b.Preds {
				if !containsInt(p1, pred) {
					removeIdx = idx
					break
				}
			}
			if removeIdx != -1 {
				break
			}
		}
		if removeIdx == -1 {
			break
		}
		p1 = append(p1[:removeIdx], p1[removeIdx+1:]...)
		p2 = append(p2[:removeIdx], p2[removeIdx+1:]...)
	}
	return p1, p2, nil
}
