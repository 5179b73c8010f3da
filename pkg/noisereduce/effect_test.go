package noisereduce

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/noisereduce/pkg/track"
	"github.com/xaionaro-go/noisereduce/pkg/track/memory"
)

const testRate = 8000

func sineTrack(rate int, seconds float64, freq, amp float64) *memory.Track {
	n := int(float64(rate) * seconds)
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return memory.New(rate, samples)
}

func cloneTrack(t *memory.Track) *memory.Track {
	samples := make([]float32, len(t.Samples))
	copy(samples, t.Samples)
	return memory.New(t.RateValue, samples)
}

func smallSettings() *Settings {
	s := NewDefaultSettings()
	s.WindowSize = 5 // W = 256
	s.StepsPerWindow = 1
	return s
}

func TestEffect_ProfileThenReduce_AllZeroInput(t *testing.T) {
	ctx := context.Background()
	settings := smallSettings()

	noise := sineTrack(testRate, 1.0, 0, 0) // all zero
	effect := NewEffect()
	require.NoError(t, effect.Profile(ctx, noise, 0, noise.EndTime(), settings))

	signal := sineTrack(testRate, 1.0, 0, 0)
	sink := memory.NewEmpty(testRate)
	require.NoError(t, effect.Reduce(ctx, signal, sink, 0, signal.EndTime(), settings))

	out := make([]float32, len(signal.Samples))
	_, err := signal.Get(out, 0, len(out))
	require.NoError(t, err)
	for i, v := range out {
		require.InDelta(t, 0, float64(v), 1e-6, "sample %d", i)
	}
}

func TestEffect_PureToneSurvivesAboveProfiledNoiseFloor(t *testing.T) {
	ctx := context.Background()
	settings := smallSettings()

	noise := sineTrack(testRate, 2.0, 0, 0.01)
	effect := NewEffect()
	require.NoError(t, effect.Profile(ctx, noise, 0, noise.EndTime(), settings))

	tone := sineTrack(testRate, 1.0, 440, 0.8)
	sink := memory.NewEmpty(testRate)
	require.NoError(t, effect.Reduce(ctx, tone, sink, 0, tone.EndTime(), settings))

	out := make([]float32, len(tone.Samples))
	_, err := tone.Get(out, 0, len(out))
	require.NoError(t, err)

	// Skip the attack region; in steady state the tone's energy should
	// survive close to its original amplitude.
	var sumSq float64
	start := len(out) / 2
	for _, v := range out[start:] {
		sumSq += float64(v) * float64(v)
	}
	rms := math.Sqrt(sumSq / float64(len(out)-start))
	require.Greater(t, rms, 0.3)
}

func TestEffect_SilenceInSignalRegionIsHeavilyAttenuated(t *testing.T) {
	ctx := context.Background()
	settings := smallSettings()

	noise := sineTrack(testRate, 2.0, 440, 0.05)
	effect := NewEffect()
	require.NoError(t, effect.Profile(ctx, noise, 0, noise.EndTime(), settings))

	// A low-level residual that never exceeds the profiled noise floor.
	quiet := sineTrack(testRate, 1.0, 440, 0.02)
	sink := memory.NewEmpty(testRate)
	require.NoError(t, effect.Reduce(ctx, quiet, sink, 0, quiet.EndTime(), settings))

	out := make([]float32, len(quiet.Samples))
	_, err := quiet.Get(out, 0, len(out))
	require.NoError(t, err)

	var sumSq float64
	start := len(out) / 2
	for _, v := range out[start:] {
		sumSq += float64(v) * float64(v)
	}
	rms := math.Sqrt(sumSq / float64(len(out)-start))
	require.Less(t, rms, 0.02)
}

func TestEffect_ReduceAndResidueSumToOriginal(t *testing.T) {
	ctx := context.Background()
	settings := smallSettings()

	noise := sineTrack(testRate, 2.0, 0, 0.05)
	mixed := sineTrack(testRate, 1.0, 440, 0.5)

	effectReduce := NewEffect()
	require.NoError(t, effectReduce.Profile(ctx, cloneTrack(noise), 0, noise.EndTime(), settings))
	reduceSrc := cloneTrack(mixed)
	reduceSink := memory.NewEmpty(testRate)
	require.NoError(t, effectReduce.Reduce(ctx, reduceSrc, reduceSink, 0, reduceSrc.EndTime(), settings))

	residueSettings := smallSettings()
	residueSettings.ReductionChoice = ReductionResidue
	effectResidue := NewEffect()
	require.NoError(t, effectResidue.Profile(ctx, cloneTrack(noise), 0, noise.EndTime(), residueSettings))
	residueSrc := cloneTrack(mixed)
	residueSink := memory.NewEmpty(testRate)
	require.NoError(t, effectResidue.Reduce(ctx, residueSrc, residueSink, 0, residueSrc.EndTime(), residueSettings))

	reduced := make([]float32, len(mixed.Samples))
	_, err := reduceSrc.Get(reduced, 0, len(reduced))
	require.NoError(t, err)
	residue := make([]float32, len(mixed.Samples))
	_, err = residueSrc.Get(residue, 0, len(residue))
	require.NoError(t, err)

	original := make([]float32, len(mixed.Samples))
	_, err = mixed.Get(original, 0, len(original))
	require.NoError(t, err)

	for i := range original {
		require.InDelta(t, float64(original[i]), float64(reduced[i]+residue[i]), 0.05, "sample %d", i)
	}
}

func TestEffect_ProfileTooShortIsRejected(t *testing.T) {
	ctx := context.Background()
	settings := smallSettings()

	tiny := memory.New(testRate, make([]float32, 10))
	effect := NewEffect()
	err := effect.Profile(ctx, tiny, 0, tiny.EndTime(), settings)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrProfileEmpty)
}

func TestEffect_ReduceRejectsRateMismatch(t *testing.T) {
	ctx := context.Background()
	settings := smallSettings()

	noise := sineTrack(testRate, 1.0, 0, 0.05)
	effect := NewEffect()
	require.NoError(t, effect.Profile(ctx, noise, 0, noise.EndTime(), settings))

	other := sineTrack(testRate*2, 1.0, 440, 0.5)
	sink := memory.NewEmpty(testRate * 2)
	err := effect.Reduce(ctx, other, sink, 0, other.EndTime(), settings)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrRateMismatch)
}

func TestEffect_ReduceWithoutPriorProfileIsRejected(t *testing.T) {
	ctx := context.Background()
	settings := smallSettings()

	signal := sineTrack(testRate, 1.0, 440, 0.5)
	var sink track.Sink = memory.NewEmpty(testRate)
	effect := NewEffect()
	err := effect.Reduce(ctx, signal, sink, 0, signal.EndTime(), settings)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrProfileEmpty)
}

func TestEffect_ProfileDiscardsPartialStatisticsOnMidStreamFailure(t *testing.T) {
	ctx := context.Background()
	settings := smallSettings()

	// Several windows' worth of samples (all zero: frequency 0), so
	// accumulation genuinely starts before the source runs dry.
	noise := sineTrack(testRate, 1.0, 0, 0.05)
	effect := NewEffect()

	// Asking for more than the track holds drives memory.Track.Get to
	// return (0, nil) once pos reaches the end, which pumpSource turns
	// into ErrSourceUnavailable after plenty of frames were ingested.
	overrun := noise.EndTime() + time.Second
	err := effect.Profile(ctx, noise, 0, overrun, settings)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrSourceUnavailable)

	require.NotNil(t, effect.Statistics)
	require.Equal(t, 0, effect.Statistics.TrackWindows)
	require.Equal(t, 0, effect.Statistics.TotalWindows)

	signal := sineTrack(testRate, 1.0, 440, 0.5)
	sink := memory.NewEmpty(testRate)
	err = effect.Reduce(ctx, signal, sink, 0, signal.EndTime(), settings)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrProfileEmpty)
}
