package file

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/noisereduce/pkg/track"
	"github.com/xaionaro-go/noisereduce/pkg/track/memory"
)

func TestWAV_RoundTripMono(t *testing.T) {
	const rate = 8000
	samples := make([]float32, 500)
	for i := range samples {
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/rate))
	}
	src := memory.New(rate, samples)

	path := filepath.Join(t.TempDir(), "mono.wav")
	require.NoError(t, SaveWAV(path, rate, []track.Source{src}))

	sources, gotRate, err := OpenWAV(path)
	require.NoError(t, err)
	require.Equal(t, rate, gotRate)
	require.Len(t, sources, 1)

	out := make([]float32, len(samples))
	n, err := sources[0].Get(out, 0, len(out))
	require.NoError(t, err)
	require.Equal(t, len(samples), n)

	for i := range samples {
		// 16-bit quantization introduces a small amount of error.
		require.InDelta(t, float64(samples[i]), float64(out[i]), 1e-3, "sample %d", i)
	}
}

func TestWAV_RoundTripStereoChannelsIndependent(t *testing.T) {
	const rate = 8000
	left := make([]float32, 200)
	right := make([]float32, 200)
	for i := range left {
		left[i] = float32(0.3 * math.Sin(2*math.Pi*220*float64(i)/rate))
		right[i] = float32(-0.3 * math.Sin(2*math.Pi*220*float64(i)/rate))
	}

	path := filepath.Join(t.TempDir(), "stereo.wav")
	require.NoError(t, SaveWAV(path, rate, []track.Source{
		memory.New(rate, left),
		memory.New(rate, right),
	}))

	sources, _, err := OpenWAV(path)
	require.NoError(t, err)
	require.Len(t, sources, 2)

	outL := make([]float32, len(left))
	outR := make([]float32, len(right))
	_, err = sources[0].Get(outL, 0, len(outL))
	require.NoError(t, err)
	_, err = sources[1].Get(outR, 0, len(outR))
	require.NoError(t, err)

	for i := range left {
		require.InDelta(t, float64(left[i]), float64(outL[i]), 1e-3, "left sample %d", i)
		require.InDelta(t, float64(right[i]), float64(outR[i]), 1e-3, "right sample %d", i)
	}
}
