package window

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_RejectsBelowMinSteps(t *testing.T) {
	_, err := New(HannHann, 1024, 2, false)
	require.Error(t, err)
}

func TestNew_RejectsMedianAboveFourSteps(t *testing.T) {
	_, err := New(HannHann, 1024, 8, true)
	require.Error(t, err)

	_, err = New(HannHann, 1024, 4, true)
	require.NoError(t, err)
}

func TestNew_InvHammingNeverZero(t *testing.T) {
	b, err := New(HammingInvHamming, 256, 2, false)
	require.NoError(t, err)
	for n, a := range b.Analysis {
		require.NotZero(t, a, "analysis[%d]", n)
	}
}

// overlapSum computes Sigma over all overlapping hop shifts of
// A[n] * Y[n] at the given absolute sample position, which should equal 1
// away from the leading/trailing W samples once M = 1/(P*S) is correct.
func overlapSum(b *Bank, pos int) float64 {
	h := b.Size / b.Steps
	sum := 0.0
	for shift := 0; shift*h <= pos; shift++ {
		n := pos - shift*h
		if n < 0 || n >= b.Size {
			continue
		}
		a := 1.0
		if b.Analysis != nil {
			a = b.Analysis[n]
		}
		y := 1.0
		if b.Synthesis != nil {
			y = b.Synthesis[n]
		}
		sum += a * y
	}
	return sum
}

func TestWindowNormalization(t *testing.T) {
	cases := []struct {
		t     Type
		steps int
	}{
		{NoneHann, 2}, {NoneHann, 4},
		{HannNone, 2}, {HannNone, 4},
		{HannHann, 4}, {HannHann, 8},
		{BlackmanHann, 4}, {BlackmanHann, 8},
		{HammingNone, 2}, {HammingNone, 4},
		{HammingHann, 4}, {HammingHann, 8},
		{HammingInvHamming, 2}, {HammingInvHamming, 4},
	}

	for _, c := range cases {
		b, err := New(c.t, 1024, c.steps, false)
		require.NoErrorf(t, err, "%v steps=%d", c.t, c.steps)

		for pos := b.Size; pos < 3*b.Size; pos++ {
			got := overlapSum(b, pos)
			require.InDeltaf(t, 1.0, got, 1e-6, "%v steps=%d pos=%d", c.t, c.steps, pos)
		}
	}
}
