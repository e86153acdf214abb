package result

import (
	"encoding/gob"
	"os"

	"github.com/bbfold/bbfold/pkg/match"
)

// SaveState gob-encodes a Matcher snapshot to path. Grounded on
// bb_match.py's SaveState/bb_types.py's BBMan.save, which wrote multiple
// pickle segments separated by magic headers; gob is self-describing, so
// the five segments become one named struct with five fields instead.
func SaveState(path string, snap match.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(snap)
}

// LoadState decodes a Matcher snapshot previously written by SaveState.
func LoadState(path string) (match.Snapshot, error) {
	var snap match.Snapshot
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return match.Snapshot{}, err
	}
	return snap, nil
}
