package cfgstore

import (
	"path/filepath"
	"testing"

	"github.com/bbfold/bbfold/pkg/block"
)

func TestInsertIsIdempotentByID(t *testing.T) {
	s := New()
	s.Insert(&block.Def{ID: 1, Start: 0, End: 4})
	s.Insert(&block.Def{ID: 1, Start: 100, End: 200}) // should be ignored

	got := s.Get(1)
	if got.Start != 0 || got.End != 4 {
		t.Fatalf("second insert of id 1 should be ignored, got Start=%d End=%d", got.Start, got.End)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
}

func TestFirstAppearanceOrder(t *testing.T) {
	s := New()
	s.Insert(&block.Def{ID: 3})
	s.Insert(&block.Def{ID: 1})
	s.Insert(&block.Def{ID: 2})

	items := s.Items()
	ids := []int{items[0].ID, items[1].ID, items[2].ID}
	want := []int{3, 1, 2}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("Items() order = %v, want %v", ids, want)
		}
	}
}

func TestFindByAddr(t *testing.T) {
	s := New()
	s.Insert(&block.Def{ID: 0, Start: 0, End: 10})
	s.Insert(&block.Def{ID: 1, Start: 10, End: 20})

	if b := s.FindByAddr(15); b == nil || b.ID != 1 {
		t.Fatalf("FindByAddr(15) = %v, want block 1", b)
	}
	if b := s.FindByAddr(100); b != nil {
		t.Fatalf("FindByAddr(100) = %v, want nil", b)
	}
}

func TestAddSuccKeepsBidirectionalInvariant(t *testing.T) {
	s := New()
	s.Insert(&block.Def{ID: 0})
	s.Insert(&block.Def{ID: 1})
	s.AddSucc(0, 1, true)

	if !containsInt(s.Get(0).Succs, 1) {
		t.Fatal("block 0 should have block 1 as a successor")
	}
	if !containsInt(s.Get(1).Preds, 0) {
		t.Fatal("block 1 should have block 0 as a predecessor")
	}
	if !s.Consistent() {
		t.Fatal("store should be consistent after AddSucc(linkPred=true)")
	}
}

func TestSaveLoadCacheRoundTrip(t *testing.T) {
	s := New()
	s.Insert(&block.Def{ID: 0, Start: 0, End: 4, Ctx: &block.Context{HashItype1: "abc", InstCount: 2}})
	s.Insert(&block.Def{ID: 1, Start: 4, End: 8})
	s.AddSucc(0, 1, true)

	path := filepath.Join(t.TempDir(), "cfg.cache")
	if err := s.SaveCache(path); err != nil {
		t.Fatalf("SaveCache: %v", err)
	}

	loaded, err := LoadCache(path)
	if err != nil {
		t.Fatalf("LoadCache: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("loaded.Len() = %d, want 2", loaded.Len())
	}
	if loaded.Get(0).Ctx.HashItype1 != "abc" {
		t.Fatalf("loaded context mismatch: %+v", loaded.Get(0).Ctx)
	}
	if !loaded.Consistent() {
		t.Fatal("round-tripped store should remain consistent")
	}
}
