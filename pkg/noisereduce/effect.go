package noisereduce

import (
	"context"
	"fmt"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/noisereduce/pkg/fft"
	"github.com/xaionaro-go/noisereduce/pkg/noisereduce/classify"
	"github.com/xaionaro-go/noisereduce/pkg/noisereduce/stft"
	"github.com/xaionaro-go/noisereduce/pkg/noisereduce/window"
	"github.com/xaionaro-go/noisereduce/pkg/track"
)

// Effect is the two-entry-point facade: Profile accumulates noise
// statistics over a region presumed to be pure noise, Reduce consumes
// those statistics to clean a (possibly different) region. Statistics
// survive across calls until the Effect is discarded; a Profile call with a
// different rate or window size is rejected and leaves them unchanged.
type Effect struct {
	Statistics *Statistics
}

// NewEffect returns a facade with no accumulated statistics.
func NewEffect() *Effect {
	return &Effect{}
}

// Profile accumulates per-band noise power over [from, to) of src into the
// facade's Statistics, allocating it on first use and reusing it
// (continuing to accumulate) on subsequent calls, provided the rate and
// window size stay compatible with what was already accumulated.
func (e *Effect) Profile(ctx context.Context, src track.Source, from, to time.Duration, settings *Settings) (_err error) {
	logger.Tracef(ctx, "Profile: from=%v to=%v settings=%s", from, to, spew.Sdump(settings))
	defer func() { logger.Tracef(ctx, "/Profile: %v", _err) }()

	if err := settings.Validate(); err != nil {
		return wrapError(err)
	}

	w := settings.WindowSizeSamples()
	s := settings.StepsPerWindowCount()
	k := w/2 + 1

	if e.Statistics == nil {
		e.Statistics = NewStatistics(src.Rate(), w, int(settings.WindowTypes), k)
	} else if err := e.Statistics.validateForProfile(src.Rate(), w); err != nil {
		return wrapError(err)
	}

	fftEngine, err := fft.New(w)
	if err != nil {
		return wrapError(fmt.Errorf("%w: %v", ErrConfigInvalid, err))
	}
	win, err := window.New(settings.WindowTypes, w, s, settings.Method == classify.Median)
	if err != nil {
		return wrapError(fmt.Errorf("%w: %v", ErrConfigInvalid, err))
	}

	driver, err := stft.New(stft.Config{
		FFT:         fftEngine,
		Window:      win,
		SampleRate:  src.Rate(),
		GainDB:      settings.Gain,
		Mode:        stft.ModeProfile,
		ProfileSink: e.Statistics,
	})
	if err != nil {
		return wrapError(fmt.Errorf("%w: %v", ErrConfigInvalid, err))
	}

	if err := pumpSource(driver, src, from, to); err != nil {
		e.Statistics.discardPartialTrack()
		return wrapError(err)
	}
	_ = driver.Output() // profiling mode only emits silence; discard it

	if e.Statistics.TrackWindows == 0 {
		e.Statistics.discardPartialTrack()
		return wrapError(fmt.Errorf("%w", ErrProfileEmpty))
	}
	e.Statistics.FinishTrack()
	return nil
}

// Reduce runs the driver in reduction mode over [from, to) of src, using
// the facade's previously accumulated Statistics, and splices the result
// back into src over the same region via sink.
func (e *Effect) Reduce(ctx context.Context, src track.Source, sink track.Sink, from, to time.Duration, settings *Settings) (_err error) {
	logger.Tracef(ctx, "Reduce: from=%v to=%v settings=%s", from, to, spew.Sdump(settings))
	defer func() { logger.Tracef(ctx, "/Reduce: %v", _err) }()

	if err := settings.Validate(); err != nil {
		return wrapError(err)
	}
	if e.Statistics == nil {
		return wrapError(fmt.Errorf("%w: Reduce called with no prior Profile", ErrProfileEmpty))
	}

	w := settings.WindowSizeSamples()
	s := settings.StepsPerWindowCount()

	if err := e.Statistics.Validate(src.Rate(), w); err != nil {
		return wrapError(err)
	}
	if int(settings.WindowTypes) != e.Statistics.WindowTypes {
		logger.Warnf(ctx, "profile window type %v differs from reduction window type %v; proceeding anyway",
			window.Type(e.Statistics.WindowTypes), settings.WindowTypes)
	}

	fftEngine, err := fft.New(w)
	if err != nil {
		return wrapError(fmt.Errorf("%w: %v", ErrConfigInvalid, err))
	}
	win, err := window.New(settings.WindowTypes, w, s, settings.Method == classify.Median)
	if err != nil {
		return wrapError(fmt.Errorf("%w: %v", ErrConfigInvalid, err))
	}

	driver, err := stft.New(stft.Config{
		FFT:            fftEngine,
		Window:         win,
		SampleRate:     src.Rate(),
		GainDB:         settings.Gain,
		AttackSeconds:  settings.AttackTime,
		ReleaseSeconds: settings.ReleaseTime,
		Mode:           stft.ModeReduce,
		Choice:         settings.ReductionChoice.toDriver(),
		Method:         settings.Method,
		Sigma:          settings.Sensitivity,
		FreqSmoothing:  settings.FreqSmoothingBins(),
		Means:          e.Statistics.Means,
		OldSensitivity: settings.OldSensitivity,
	})
	if err != nil {
		return wrapError(fmt.Errorf("%w: %v", ErrConfigInvalid, err))
	}

	if err := pumpReduce(driver, src, sink, from, to); err != nil {
		return wrapError(err)
	}

	requiredSamples := src.TimeToSample(to) - src.TimeToSample(from)
	requiredDuration := src.SampleToTime(requiredSamples)
	overrunAllowance := src.SampleToTime(int64(driver.HopSize()))
	if err := sink.ClearTail(requiredDuration, requiredDuration+overrunAllowance+time.Second); err != nil {
		return wrapError(err)
	}

	if err := sink.SpliceInto(src, from, to); err != nil {
		return wrapError(err)
	}
	return nil
}

// validateForProfile is Statistics.Validate's counterpart used when
// Profile reuses an already-accumulated record for a new track: unlike
// Validate, an empty-so-far Statistics (TotalWindows == 0, freshly
// allocated but not yet finalized) is not an error.
func (s *Statistics) validateForProfile(rate, windowSize int) error {
	if s.Rate != rate {
		return fmt.Errorf("%w: profile rate %d, new track rate %d", ErrRateMismatch, s.Rate, rate)
	}
	if s.WindowSize != windowSize {
		return fmt.Errorf("%w: profile window size %d, new track window size %d", ErrWindowSizeMismatch, s.WindowSize, windowSize)
	}
	return nil
}

func pumpSource(driver *stft.Driver, src track.Source, from, to time.Duration) error {
	pos := src.TimeToSample(from)
	end := src.TimeToSample(to)

	maxBlock := src.MaxBlockSize()
	buf32 := make([]float32, maxBlock)
	bufF64 := make([]float64, maxBlock)

	for pos < end {
		n := src.BestBlockSize(pos)
		if remaining := end - pos; int64(n) > remaining {
			n = int(remaining)
		}
		if n <= 0 {
			break
		}
		if n > maxBlock {
			n = maxBlock
		}
		read, err := src.Get(buf32[:n], pos, n)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
		if read == 0 {
			return fmt.Errorf("%w: source returned no samples at position %d", ErrSourceUnavailable, pos)
		}
		for i := 0; i < read; i++ {
			bufF64[i] = float64(buf32[i])
		}
		driver.Ingest(bufF64[:read])
		pos += int64(read)
	}
	return nil
}

func pumpReduce(driver *stft.Driver, src track.Source, sink track.Sink, from, to time.Duration) error {
	pos := src.TimeToSample(from)
	end := src.TimeToSample(to)

	maxBlock := src.MaxBlockSize()
	buf32 := make([]float32, maxBlock)
	bufF64 := make([]float64, maxBlock)

	for pos < end {
		n := src.BestBlockSize(pos)
		if remaining := end - pos; int64(n) > remaining {
			n = int(remaining)
		}
		if n <= 0 {
			break
		}
		if n > maxBlock {
			n = maxBlock
		}
		read, err := src.Get(buf32[:n], pos, n)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
		if read == 0 {
			return fmt.Errorf("%w: source returned no samples at position %d", ErrSourceUnavailable, pos)
		}
		for i := 0; i < read; i++ {
			bufF64[i] = float64(buf32[i])
		}
		driver.Ingest(bufF64[:read])
		if out := driver.Output(); len(out) > 0 {
			if err := sink.Append(out); err != nil {
				return err
			}
		}
		pos += int64(read)
	}

	driver.Flush()
	if out := driver.Output(); len(out) > 0 {
		if err := sink.Append(out); err != nil {
			return err
		}
	}
	return sink.Flush()
}
