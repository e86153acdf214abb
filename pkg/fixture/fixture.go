// Package fixture is a data-driven stand-in for a real disassembler and
// CFG builder: a JSON file describing one or more functions' basic
// blocks and their instructions, loaded into a Fixture that implements
// inst.Decoder and inst.CFGBuilder. Grounded on bb_ida.py's standalone
// fallback path (IDABBMan computing a CFG from data rather than a live
// IDA Pro session) — this plays the same role without a real
// disassembler in scope.
package fixture

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/bbfold/bbfold/pkg/inst"
)

type rawOperand struct {
	Index uint8 `json:"index"`
	Type  uint8 `json:"type"`
}

type rawInstruction struct {
	Addr     uint64       `json:"addr"`
	IType    uint16       `json:"itype"`
	Size     uint32       `json:"size"`
	Operands []rawOperand `json:"operands"`
}

type rawBlock struct {
	ID           int              `json:"id"`
	Start        uint64           `json:"start"`
	End          uint64           `json:"end"`
	Succs        []int            `json:"succs"`
	Instructions []rawInstruction `json:"instructions"`
}

type rawFunction struct {
	Blocks []rawBlock `json:"blocks"`
}

type rawFile struct {
	// Functions is keyed by the function's entry address as a hex or
	// decimal string (json object keys must be strings).
	Functions map[string]rawFunction `json:"functions"`
}

// Fixture implements inst.Decoder and inst.CFGBuilder against fixture
// data loaded from JSON.
type Fixture struct {
	functions  map[uint64]rawFunction
	instByAddr map[uint64]inst.Instruction
}

// Load reads a fixture file from path.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse builds a Fixture from raw JSON bytes.
func Parse(data []byte) (*Fixture, error) {
	var raw rawFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("fixture: invalid JSON: %w", err)
	}

	f := &Fixture{
		functions:  make(map[uint64]rawFunction, len(raw.Functions)),
		instByAddr: make(map[uint64]inst.Instruction),
	}
	for key, fn := range raw.Functions {
		addr, err := parseAddr(key)
		if err != nil {
			return nil, fmt.Errorf("fixture: function key %q: %w", key, err)
		}
		f.functions[addr] = fn
		for _, b := range fn.Blocks {
			for _, ri := range b.Instructions {
				ops := make([]inst.Operand, len(ri.Operands))
				for i, o := range ri.Operands {
					ops[i] = inst.Operand{Index: o.Index, Type: o.Type}
				}
				size := ri.Size
				if size == 0 {
					size = 1
				}
				f.instByAddr[ri.Addr] = inst.Instruction{IType: ri.IType, Operands: ops, Size: size}
			}
		}
	}
	return f, nil
}

func parseAddr(s string) (uint64, error) {
	var v uint64
	_, err := fmt.Sscanf(s, "0x%x", &v)
	if err == nil {
		return v, nil
	}
	_, err = fmt.Sscanf(s, "%d", &v)
	return v, err
}

// Decode implements inst.Decoder: look up the instruction recorded at
// addr, if any.
func (f *Fixture) Decode(addr uint64) (inst.Instruction, bool) {
	in, ok := f.instByAddr[addr]
	return in, ok
}

// BuildCFG implements inst.CFGBuilder: return the block specs for the
// function at funcEntry, with Preds derived by inverting Succs.
func (f *Fixture) BuildCFG(funcEntry uint64) (map[int]inst.BlockSpec, error) {
	fn, ok := f.functions[funcEntry]
	if !ok {
		return nil, fmt.Errorf("fixture: no function recorded at %#x", funcEntry)
	}

	specs := make(map[int]inst.BlockSpec, len(fn.Blocks))
	for _, b := range fn.Blocks {
		specs[b.ID] = inst.BlockSpec{
			Start: b.Start,
			End:   b.End,
			Succs: append([]int(nil), b.Succs...),
		}
	}
	for id, spec := range specs {
		for _, succID := range spec.Succs {
			target, ok := specs[succID]
			if !ok {
				continue
			}
			target.Preds = append(target.Preds, id)
			specs[succID] = target
		}
	}
	return specs, nil
}

// FunctionAddrs returns every function entry address the fixture defines,
// used by batch mode to enumerate work without the caller needing to
// parse the JSON itself.
func (f *Fixture) FunctionAddrs() []uint64 {
	out := make([]uint64, 0, len(f.functions))
	for addr := range f.functions {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
