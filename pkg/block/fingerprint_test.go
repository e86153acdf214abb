package block

import (
	"crypto/sha1"
	"encoding/hex"
	"testing"

	"github.com/bbfold/bbfold/pkg/inst"
	"github.com/bbfold/bbfold/pkg/prime"
)

// fakeDecoder decodes a fixed in-memory program, one instruction per
// address step of 1, and fails past the program's length.
type fakeDecoder struct {
	prog []inst.Instruction
}

func (d fakeDecoder) Decode(addr uint64) (inst.Instruction, bool) {
	if addr >= uint64(len(d.prog)) {
		return inst.Instruction{}, false
	}
	in := d.prog[addr]
	in.Size = 1
	return in, true
}

func testTable(t *testing.T) *prime.Table {
	t.Helper()
	tbl, err := prime.NewTable(prime.Sieve(prime.N))
	if err != nil {
		t.Fatalf("prime.NewTable: %v", err)
	}
	return tbl
}

func TestEmptyBlockBoundary(t *testing.T) {
	dec := fakeDecoder{}
	f := NewFingerprinter(dec, testTable(t))

	h1 := f.HashItype1(10, 10)
	want1 := sha1.Sum([]byte(""))
	if h1 != hex.EncodeToString(want1[:]) {
		t.Errorf("empty H1 = %s, want sha1(\"\")", h1)
	}

	h2 := f.HashItype2(10, 10)
	want2 := sha1.Sum([]byte("1"))
	if h2 != hex.EncodeToString(want2[:]) {
		t.Errorf("empty H2 = %s, want sha1(\"1\")", h2)
	}

	fr := f.Frequency(10, 10)
	if fr.Total != 0 || len(fr.Histogram) != 0 {
		t.Errorf("empty FREQ = %+v, want (0, {})", fr)
	}
}

func TestHashItype1OrderSensitive(t *testing.T) {
	dec1 := fakeDecoder{prog: []inst.Instruction{{IType: 1}, {IType: 2}}}
	dec2 := fakeDecoder{prog: []inst.Instruction{{IType: 2}, {IType: 1}}}
	tbl := testTable(t)

	h1 := NewFingerprinter(dec1, tbl).HashItype1(0, 2)
	h2 := NewFingerprinter(dec2, tbl).HashItype1(0, 2)
	if h1 == h2 {
		t.Fatal("H1 should be order-sensitive, got identical hashes for reordered instructions")
	}
}

func TestHashDeterministic(t *testing.T) {
	prog := []inst.Instruction{
		{IType: 5, Operands: []inst.Operand{{Index: 0, Type: 2}}},
		{IType: 9},
	}
	tbl := testTable(t)
	f1 := NewFingerprinter(fakeDecoder{prog: prog}, tbl)
	f2 := NewFingerprinter(fakeDecoder{prog: prog}, tbl)

	if f1.HashItype1(0, 2) != f2.HashItype1(0, 2) {
		t.Error("H1 not deterministic across identical inputs")
	}
	if f1.HashItype2(0, 2) != f2.HashItype2(0, 2) {
		t.Error("H2 not deterministic across identical inputs")
	}
}

func TestHashItype2DistinguishesOperands(t *testing.T) {
	tbl := testTable(t)
	progA := []inst.Instruction{{IType: 3, Operands: []inst.Operand{{Index: 0, Type: 1}}}}
	progB := []inst.Instruction{{IType: 3, Operands: []inst.Operand{{Index: 0, Type: 2}}}}

	hA := NewFingerprinter(fakeDecoder{prog: progA}, tbl).HashItype2(0, 1)
	hB := NewFingerprinter(fakeDecoder{prog: progB}, tbl).HashItype2(0, 1)
	if hA == hB {
		t.Fatal("H2 should distinguish different operand types on an otherwise identical instruction")
	}

	// But H1 does not consider operands at all.
	h1A := NewFingerprinter(fakeDecoder{prog: progA}, tbl).HashItype1(0, 1)
	h1B := NewFingerprinter(fakeDecoder{prog: progB}, tbl).HashItype1(0, 1)
	if h1A != h1B {
		t.Fatal("H1 should be identical when only operand types differ")
	}
}

func TestFrequencyHistogram(t *testing.T) {
	tbl := testTable(t)
	prog := []inst.Instruction{{IType: 1}, {IType: 1}, {IType: 2}}
	fp := NewFingerprinter(fakeDecoder{prog: prog}, tbl).Frequency(0, 3)
	if fp.Total != 3 {
		t.Fatalf("Total = %d, want 3", fp.Total)
	}
	if len(fp.Histogram) != 2 {
		t.Fatalf("distinct buckets = %d, want 2", len(fp.Histogram))
	}
}

func TestDecodeAbortTruncates(t *testing.T) {
	tbl := testTable(t)
	prog := []inst.Instruction{{IType: 7}, {IType: 8}}
	f := NewFingerprinter(fakeDecoder{prog: prog}, tbl)

	// Ask for a range extending past the decodable program: the walk
	// should silently stop, not error.
	count := f.InstructionCount(0, 10)
	if count != 2 {
		t.Fatalf("InstructionCount = %d, want 2 (decode should truncate silently)", count)
	}
}
