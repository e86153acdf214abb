package freqmatch

import (
	"testing"

	"github.com/bbfold/bbfold/pkg/block"
)

// TestNearIdenticalFrequencies reproduces spec §8 scenario 1 under the
// documented formula (see Match's doc comment). Every key is shared, so
// cp1 = 100*7/7 and cp2 = 100*3/3 are both 100 and ok1=true. The per-bucket
// ratios are 100*1/5 = 20, 100 and 100, averaging 73.3, which is not above
// 90, so ok2=false.
func TestNearIdenticalFrequencies(t *testing.T) {
	ft1 := block.FreqFingerprint{
		Total: 7,
		Histogram: map[string]uint32{
			"21614129":       5,
			"4790013691321":  1,
			"722682555311":   1,
		},
	}
	ft2 := block.FreqFingerprint{
		Total: 3,
		Histogram: map[string]uint32{
			"21614129":      1,
			"4790013691321": 1,
			"722682555311":  1,
		},
	}

	ok1, ok2 := Match(ft1, ft2, 90, 90)
	if ok2 {
		t.Errorf("ok2 = true, want false (average per-bucket ratio is 73.3, not above 90)")
	}
	if !ok1 {
		t.Errorf("ok1 = false, want true for this input under the documented §4.3 formula (cp1=cp2=100)")
	}
}

func TestEmptyIntersectionFails(t *testing.T) {
	ft1 := block.FreqFingerprint{Total: 3, Histogram: map[string]uint32{"1": 3}}
	ft2 := block.FreqFingerprint{Total: 3, Histogram: map[string]uint32{"2": 3}}

	ok1, ok2 := Match(ft1, ft2, 50, 50)
	if ok1 || ok2 {
		t.Errorf("Match with empty intersection = (%v, %v), want (false, false)", ok1, ok2)
	}
}

func TestZeroTotalGuardsDivision(t *testing.T) {
	ft1 := block.FreqFingerprint{Total: 0, Histogram: map[string]uint32{}}
	ft2 := block.FreqFingerprint{Total: 5, Histogram: map[string]uint32{"1": 5}}

	ok1, _ := Match(ft1, ft2, 50, 50)
	if ok1 {
		t.Error("ok1 should be false when either total is zero")
	}
}

func TestCoverageThresholdBuckets(t *testing.T) {
	cases := []struct {
		c1, c2 uint32
		want   float64
	}{
		{4, 100, 50},
		{6, 100, 60},
		{8, 100, 75},
		{9, 100, 85},
		{100, 3, 50},
	}
	for _, c := range cases {
		if got := CoverageThreshold(c.c1, c.c2); got != c.want {
			t.Errorf("CoverageThreshold(%d,%d) = %v, want %v", c.c1, c.c2, got, c.want)
		}
	}
}

func TestStrictGreaterThanBoundary(t *testing.T) {
	// Exactly at threshold must NOT pass (strict >, not >=).
	ft1 := block.FreqFingerprint{Total: 10, Histogram: map[string]uint32{"1": 9}}
	ft2 := block.FreqFingerprint{Total: 10, Histogram: map[string]uint32{"1": 9}}
	ok1, _ := Match(ft1, ft2, 90, 0) // cp1=cp2=90 exactly
	if ok1 {
		t.Error("exact threshold equality must fail strict > comparison")
	}
}
