package result

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/bbfold/bbfold/pkg/block"
	"github.com/bbfold/bbfold/pkg/cfgstore"
	"github.com/bbfold/bbfold/pkg/match"
)

func TestTableClassesSortedBySizeDescending(t *testing.T) {
	tbl := NewTable()
	tbl.Add(match.Class{SubgraphHash: "small", Paths: [][]int{{1, 2}, {3, 4}}})
	tbl.Add(match.Class{SubgraphHash: "big", Paths: [][]int{{1, 2, 3}, {4, 5, 6}}})

	classes := tbl.Classes()
	if len(classes) != 2 {
		t.Fatalf("len = %d, want 2", len(classes))
	}
	if classes[0].SubgraphHash != "big" {
		t.Fatalf("classes[0] = %+v, want the size-3 class first", classes[0])
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tbl.Len())
	}
}

func TestWriteTextFormat(t *testing.T) {
	s := cfgstore.New()
	s.Insert(&block.Def{ID: 0, Start: 0x1000, End: 0x1010})
	s.Insert(&block.Def{ID: 1, Start: 0x2000, End: 0x2010})

	classes := []match.Class{{SubgraphHash: "abc123", Paths: [][]int{{0}, {1}}}}

	var buf bytes.Buffer
	if err := WriteText(&buf, classes, s); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	want := "ID:abc123;NODESET:(0 : 0x1000 : 0x1010), (1 : 0x2000 : 0x2010);\n"
	if buf.String() != want {
		t.Fatalf("WriteText output = %q, want %q", buf.String(), want)
	}
}

func TestWriteTextDeduplicatesIdenticalPaths(t *testing.T) {
	s := cfgstore.New()
	s.Insert(&block.Def{ID: 0, Start: 0, End: 2})

	classes := []match.Class{{SubgraphHash: "x", Paths: [][]int{{0}, {0}}}}
	var buf bytes.Buffer
	if err := WriteText(&buf, classes, s); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	want := "ID:x;NODESET:(0 : 0x0 : 0x2);\n"
	if buf.String() != want {
		t.Fatalf("WriteText output = %q, want %q", buf.String(), want)
	}
}

func TestWriteJSONReadJSONRoundTrip(t *testing.T) {
	classes := []match.Class{
		{SeedHash: "seed1", SubgraphHash: "sub1", Paths: [][]int{{1, 2}, {3, 4}}},
	}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, classes); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if len(got) != 1 || got[0].SeedHash != "seed1" || got[0].SubgraphHash != "sub1" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if len(got[0].Paths) != 2 {
		t.Fatalf("Paths = %+v, want 2 entries", got[0].Paths)
	}
}

func TestSaveLoadStateRoundTrip(t *testing.T) {
	snap := match.Snapshot{
		M: map[string][]int{"h": {1, 2}},
	}
	path := filepath.Join(t.TempDir(), "state.gob")
	if err := SaveState(path, snap); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	loaded, err := LoadState(path)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if len(loaded.M["h"]) != 2 {
		t.Fatalf("loaded.M = %+v, want len 2", loaded.M)
	}
}
