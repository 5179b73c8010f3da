package fft

import (
	"math"
	"testing"

	"github.com/brettbuddin/fourier"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsBadSizes(t *testing.T) {
	_, err := New(3)
	require.Error(t, err)

	_, err = New(0)
	require.Error(t, err)

	_, err = New(1024)
	require.NoError(t, err)
}

func TestRealFFT_RoundTrip(t *testing.T) {
	const n = 256
	f, err := New(n)
	require.NoError(t, err)

	original := make([]float64, n)
	for i := range original {
		original[i] = math.Sin(2*math.Pi*7*float64(i)/n) + 0.3*math.Cos(2*math.Pi*31*float64(i)/n)
	}

	buf := append([]float64(nil), original...)
	f.Forward(buf)
	f.Inverse(buf)

	for i := range original {
		require.InDelta(t, original[i], buf[i], 1e-9, "sample %d", i)
	}
}

func TestRealFFT_MatchesFourierMagnitudes(t *testing.T) {
	const n = 128
	f, err := New(n)
	require.NoError(t, err)

	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * 5 * float64(i) / n)
	}

	buf := append([]float64(nil), samples...)
	f.Forward(buf)

	reference := make([]complex128, n)
	for i, v := range samples {
		reference[i] = complex(v, 0)
	}
	require.NoError(t, fourier.Forward(reference))

	require.InDelta(t, real(reference[0]), buf[0], 1e-6, "DC bin")
	require.InDelta(t, real(reference[n/2]), buf[1], 1e-6, "Nyquist bin")
	for k := 1; k < n/2; k++ {
		gotMag := math.Hypot(buf[2*k], buf[2*k+1])
		wantMag := math.Hypot(real(reference[k]), imag(reference[k]))
		require.InDelta(t, wantMag, gotMag, 1e-6, "bin %d magnitude", k)
	}
}

func TestRealFFT_BitReversalIsPermutation(t *testing.T) {
	const n = 64
	f, err := New(n)
	require.NoError(t, err)

	table := f.BitReversal()
	require.Len(t, table, n)

	seen := make(map[int]bool, n)
	for _, idx := range table {
		require.False(t, seen[idx], "index %d repeated in bit-reversal table", idx)
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, n)
		seen[idx] = true
	}
}

func TestRealFFT_PureToneIsolatesBin(t *testing.T) {
	const n = 512
	const bin = 40
	f, err := New(n)
	require.NoError(t, err)

	buf := make([]float64, n)
	for i := range buf {
		buf[i] = math.Cos(2 * math.Pi * bin * float64(i) / n)
	}
	f.Forward(buf)

	energy := func(k int) float64 {
		if k == 0 {
			return math.Abs(buf[0])
		}
		if k == n/2 {
			return math.Abs(buf[1])
		}
		return math.Hypot(buf[2*k], buf[2*k+1])
	}

	peak := energy(bin)
	for k := 0; k <= n/2; k++ {
		if k == bin {
			continue
		}
		require.Less(t, energy(k), peak*0.05, "bin %d leaked energy from bin %d", k, bin)
	}
}
