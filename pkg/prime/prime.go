// Package prime supplies the prime table used to map small integer
// instruction attributes (itype, operand index/type pairs) to distinct
// multiplicatively-combinable primes. Generation is a sieve; the table
// itself is an immutable, process-wide shareable resource once built —
// ported from the original GraphSlick plugin's GenPrimes()/CachedPrimes,
// replacing the witness-map trial sieve with a sieve of Eratosthenes over
// an estimated bound (idiomatic Go has no need for the incremental-generator trick
// Python used to avoid a fixed-size array).
package prime

import (
	"encoding/gob"
	"fmt"
	"math"
	"os"
)

// N is the total prime count the table must hold: enough to cover every
// itype plus every (operand index, operand type) pair.
const N = 8117

// MaxOp is the maximum operand count per instruction (mirrors inst.MaxOp).
const MaxOp = 6

// OpLast is the operand-type code count (mirrors inst.OpLast).
const OpLast = 14

// OpOffset is the index of the first prime reserved for operand
// characteristics: N - MaxOp*(OpLast+1).
const OpOffset = N - MaxOp*(OpLast+1)

// Table is an immutable, O(1)-indexed prime sequence.
type Table struct {
	primes []uint64
}

// NewTable wraps an externally supplied ascending prime sequence. It is an
// error for fewer than N primes to be supplied — the caller's decoder may
// use itypes or operand encodings the table cannot represent.
func NewTable(primes []uint64) (*Table, error) {
	if len(primes) < N {
		return nil, fmt.Errorf("prime: table needs at least %d primes, got %d", N, len(primes))
	}
	cp := make([]uint64, len(primes))
	copy(cp, primes)
	return &Table{primes: cp}, nil
}

// At returns the i-th prime. It panics if i is out of range — the decoder
// contract guarantees itype and operand encodings stay within the table's
// bounds (at least N primes, see NewTable); a violation is a caller bug,
// not a recoverable runtime condition.
func (t *Table) At(i int) uint64 {
	return t.primes[i]
}

// Len returns the number of primes held.
func (t *Table) Len() int {
	return len(t.primes)
}

// Sieve returns the first n primes using a sieve of Eratosthenes over one
// array, doubling the bound until it holds n primes.
func Sieve(n int) []uint64 {
	if n <= 0 {
		return nil
	}
	// Rough upper bound for the n-th prime (valid for n >= 6); pad small n.
	limit := 16
	if n >= 6 {
		fn := float64(n)
		limit = int(fn*math.Log(fn) + fn*math.Log(math.Log(fn))) + 16
	}

	for {
		primes := sieveUpTo(limit)
		if len(primes) >= n {
			return primes[:n]
		}
		limit *= 2
	}
}

// sieveUpTo returns every prime <= limit.
func sieveUpTo(limit int) []uint64 {
	if limit < 2 {
		return nil
	}
	composite := make([]bool, limit+1)
	var primes []uint64
	for i := 2; i <= limit; i++ {
		if composite[i] {
			continue
		}
		primes = append(primes, uint64(i))
		for j := i * i; j >= 0 && j <= limit; j += i {
			composite[j] = true
		}
	}
	return primes
}

// cacheFile is the gob-encoded payload LoadOrGenerate persists, mirroring
// the teacher's result.Checkpoint: one labeled struct, not a bespoke
// sentinel-delimited format.
type cacheFile struct {
	Primes []uint64
}

// LoadOrGenerate loads a cached table of at least n primes from path, or
// generates and caches one on a miss — the same cache-or-regenerate control
// flow as the original CachedPrimes, using gob instead of pickle.
func LoadOrGenerate(path string, n int) (*Table, error) {
	if f, err := os.Open(path); err == nil {
		defer f.Close()
		var cf cacheFile
		if err := gob.NewDecoder(f).Decode(&cf); err == nil && len(cf.Primes) >= n {
			return NewTable(cf.Primes)
		}
	}

	primes := Sieve(n)
	if f, err := os.Create(path); err == nil {
		_ = gob.NewEncoder(f).Encode(cacheFile{Primes: primes})
		f.Close()
	}
	return NewTable(primes)
}
