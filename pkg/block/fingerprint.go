package block

import (
	"crypto/sha1"
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"

	"github.com/bbfold/bbfold/pkg/inst"
	"github.com/bbfold/bbfold/pkg/prime"
)

// Fingerprinter computes H1, H2 and FREQ for byte ranges, given a decoder
// and the shared prime table. It holds no per-block state and is safe to
// share across blocks within one function (it is NOT bound to one block).
type Fingerprinter struct {
	Decoder inst.Decoder
	Primes  *prime.Table
}

// NewFingerprinter returns a Fingerprinter over dec using primes.
func NewFingerprinter(dec inst.Decoder, primes *prime.Table) *Fingerprinter {
	return &Fingerprinter{Decoder: dec, Primes: primes}
}

// HashItype1 walks [start, end) and returns the SHA-1 hex of the
// concatenated decimal itype sequence. A decode failure before end simply
// truncates the walk; the hash covers the prefix actually decoded.
func (f *Fingerprinter) HashItype1(start, end uint64) string {
	var buf strings.Builder
	w := inst.NewWalker(f.Decoder, start, end)
	for {
		in, ok := w.Next()
		if !ok {
			break
		}
		buf.WriteString(strconv.FormatUint(uint64(in.IType), 10))
	}
	sum := sha1.Sum([]byte(buf.String()))
	return hex.EncodeToString(sum[:])
}

// HashItype2 walks [start, end) multiplying the prime characteristic of
// each instruction into an unbounded accumulator, and returns the SHA-1 hex
// of the accumulator's decimal string form.
func (f *Fingerprinter) HashItype2(start, end uint64) string {
	acc := big.NewInt(1)
	w := inst.NewWalker(f.Decoder, start, end)
	for {
		in, ok := w.Next()
		if !ok {
			break
		}
		acc.Mul(acc, f.PrimeCharacteristic(in))
	}
	sum := sha1.Sum([]byte(acc.String()))
	return hex.EncodeToString(sum[:])
}

// PrimeCharacteristic computes P[itype] * prod(P[OpOffset + op.Index*OpLast
// + op.Type]) in unbounded integers. The product must never be computed in
// a fixed-width integer — distinct attribute tuples would silently collide.
func (f *Fingerprinter) PrimeCharacteristic(in inst.Instruction) *big.Int {
	r := new(big.Int).SetUint64(f.Primes.At(int(in.IType)))
	for _, op := range in.Operands {
		idx := prime.OpOffset + int(op.Index)*prime.OpLast + int(op.Type)
		r.Mul(r, new(big.Int).SetUint64(f.Primes.At(idx)))
	}
	return r
}

// Frequency walks [start, end) and returns the instruction count and a
// histogram keyed by each instruction's prime characteristic (as its
// decimal string — see FreqFingerprint).
func (f *Fingerprinter) Frequency(start, end uint64) FreqFingerprint {
	hist := make(map[string]uint32)
	var total uint32
	w := inst.NewWalker(f.Decoder, start, end)
	for {
		in, ok := w.Next()
		if !ok {
			break
		}
		key := f.PrimeCharacteristic(in).String()
		hist[key]++
		total++
	}
	return FreqFingerprint{Total: total, Histogram: hist}
}

// InstructionCount walks [start, end) and returns the number of
// instructions successfully decoded.
func (f *Fingerprinter) InstructionCount(start, end uint64) uint32 {
	var n uint32
	w := inst.NewWalker(f.Decoder, start, end)
	for {
		if _, ok := w.Next(); !ok {
			break
		}
		n++
	}
	return n
}

// ComputeContext computes H1, H2 and InstCount for a block's byte range.
// Freq is left nil — it is computed on demand during matching, not here,
// matching the spec's "attached during matching" lifecycle for FREQ.
func (f *Fingerprinter) ComputeContext(start, end uint64, rawBytes []byte) *Context {
	return &Context{
		Bytes:      rawBytes,
		HashItype1: f.HashItype1(start, end),
		HashItype2: f.HashItype2(start, end),
		InstCount:  f.InstructionCount(start, end),
	}
}
