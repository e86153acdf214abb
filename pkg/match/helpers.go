package match

import "sort"

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func intSliceEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// isSubset reports whether every element of a appears in b.
func isSubset(a, b []int) bool {
	for _, v := range a {
		if !containsInt(b, v) {
			return false
		}
	}
	return true
}

func cloneIntBoolSet(s map[int]bool) map[int]bool {
	out := make(map[int]bool, len(s))
	for k := range s {
		out[k] = true
	}
	return out
}

// sortedKeys returns a map's string keys in ascending order, giving
// deterministic iteration order over the seed/subgraph-hash maps (plain Go
// map iteration is randomized, but several spec invariants depend on
// reproducible first-appearance ordering of results).
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func indexOf(s []int, v int) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
