package cfgstore

import (
	"encoding/gob"
	"os"

	"github.com/bbfold/bbfold/pkg/block"
)

// snapshot is the gob-encodable form of a Store — block.Def is exported
// and gob-friendly directly, so this just preserves insertion order
// alongside the blocks.
type snapshot struct {
	Blocks []*block.Def
}

// SaveCache gob-encodes the store to path, mirroring BBMan.save's
// cache-by-filename behavior so a repeated analysis of the same function
// can skip CFG-builder invocation.
func (s *Store) SaveCache(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	snap := snapshot{Blocks: s.Items()}
	return gob.NewEncoder(f).Encode(snap)
}

// LoadCache loads a previously cached store from path.
func LoadCache(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, err
	}

	s := New()
	for _, b := range snap.Blocks {
		s.Insert(b)
	}
	return s, nil
}
