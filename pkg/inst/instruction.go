// Package inst defines the decoded-instruction shape the core consumes and
// the two callback interfaces — Decoder and CFGBuilder — that bind it to
// whatever disassembler and CFG builder the caller supplies. The core never
// interprets an IType or operand Type beyond equality and table-index use.
package inst

// MaxOp is the maximum number of operands a decoded instruction may carry.
const MaxOp = 6

// OpLast is the number of distinct operand-type codes (0..OpLast-1).
const OpLast = 14

// Operand is one decoded operand: its position in the instruction (0..MaxOp-1)
// and its operand-kind code (0..OpLast-1).
type Operand struct {
	Index uint8
	Type  uint8
}

// Instruction is one decoded machine instruction. Size is always > 0.
type Instruction struct {
	IType    uint16
	Operands []Operand
	Size     uint32
}

// Decoder decodes one instruction at addr. The second return value is false
// when decoding fails (e.g. the byte stream ends or the opcode is unknown);
// callers stop walking at that point rather than treating it as an error.
type Decoder interface {
	Decode(addr uint64) (Instruction, bool)
}

// BlockSpec is one block's geometry and edges as reported by a CFGBuilder.
type BlockSpec struct {
	Start, End uint64
	Succs      []int
	Preds      []int
}

// CFGBuilder yields the basic blocks of a function, keyed by block id.
// Block ids are dense small non-negative integers; the block containing
// funcEntry is present; Succs/Preds reference only ids present in the map.
type CFGBuilder interface {
	BuildCFG(funcEntry uint64) (map[int]BlockSpec, error)
}

// Walker pulls instructions from a Decoder across [start, end), one at a
// time, stopping at end or at the first decode failure. It models the
// decode stream as an iterator rather than eagerly decoding a whole block,
// matching how a real disassembler callback is driven.
type Walker struct {
	dec  Decoder
	addr uint64
	end  uint64
}

// NewWalker returns a Walker over [start, end) using dec.
func NewWalker(dec Decoder, start, end uint64) *Walker {
	return &Walker{dec: dec, addr: start, end: end}
}

// Next returns the next instruction, or ok=false if the range is exhausted
// or the decoder could not decode the instruction at the current address.
// A decode failure truncates the walk silently; no error is raised.
func (w *Walker) Next() (Instruction, bool) {
	if w.addr >= w.end {
		return Instruction{}, false
	}
	in, ok := w.dec.Decode(w.addr)
	if !ok {
		return Instruction{}, false
	}
	w.addr += uint64(in.Size)
	return in, true
}
