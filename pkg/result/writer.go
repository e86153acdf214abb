package result

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bbfold/bbfold/pkg/cfgstore"
	"github.com/bbfold/bbfold/pkg/match"
)

// WriteText emits one line per class in the exact format
// ID:<subgraph_hash>;NODESET:(<id> : <start_hex> : <end_hex>, …), (…);
// resolving each node id's address range from store. Grounded on
// bb_match.py's SerializeMatchedInlineFunctions, which deduplicates
// identical node-id paths within a class a second time (independent of
// the subset-suppression pass in GetMatchedWellFormedFunctions) before
// writing — this does the same.
func WriteText(w io.Writer, classes []match.Class, store *cfgstore.Store) error {
	for _, c := range classes {
		seen := make(map[string]bool)
		var groups []string
		for _, path := range c.Paths {
			key := fmt.Sprint(path)
			if seen[key] {
				continue
			}
			seen[key] = true

			var triples []string
			for _, id := range path {
				b := store.Get(id)
				if b == nil {
					continue
				}
				triples = append(triples, fmt.Sprintf("%d : %#x : %#x", id, b.Start, b.End))
			}
			groups = append(groups, "("+join(triples, ", ")+")")
		}
		line := fmt.Sprintf("ID:%s;NODESET:%s;\n", c.SubgraphHash, join(groups, ", "))
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

func join(parts []string, sep string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}

// jsonClass is the wire shape for WriteJSON/ReadJSON — match.Class
// exported as-is but under stable lowercase field names.
type jsonClass struct {
	SeedHash     string  `json:"seed_hash"`
	SubgraphHash string  `json:"subgraph_hash"`
	Paths        [][]int `json:"paths"`
}

// WriteJSON emits classes as a JSON array, mirroring the teacher's
// cmd/z80opt use of result.WriteJSON for its own rule table.
func WriteJSON(w io.Writer, classes []match.Class) error {
	out := make([]jsonClass, len(classes))
	for i, c := range classes {
		out[i] = jsonClass{SeedHash: c.SeedHash, SubgraphHash: c.SubgraphHash, Paths: c.Paths}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// ReadJSON parses classes previously written by WriteJSON.
func ReadJSON(r io.Reader) ([]match.Class, error) {
	var in []jsonClass
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, err
	}
	out := make([]match.Class, len(in))
	for i, c := range in {
		out[i] = match.Class{SeedHash: c.SeedHash, SubgraphHash: c.SubgraphHash, Paths: c.Paths}
	}
	return out, nil
}
