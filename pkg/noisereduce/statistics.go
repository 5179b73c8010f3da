package noisereduce

import "fmt"

// Statistics is the noise profile accumulated by Profile and consumed by
// Reduce. It is a plain value record: callers own it and pass it explicitly
// across calls rather than relying on process-wide state.
type Statistics struct {
	Rate         int
	WindowSize   int
	WindowTypes  int
	TotalWindows int
	TrackWindows int
	Sums         []float64
	Means        []float64
}

// NewStatistics allocates an empty statistics record for the given rate,
// window size, and window-type preset, sized for bins frequency bands.
func NewStatistics(rate, windowSize, windowTypes, bins int) *Statistics {
	return &Statistics{
		Rate:        rate,
		WindowSize:  windowSize,
		WindowTypes: windowTypes,
		Sums:        make([]float64, bins),
		Means:       make([]float64, bins),
	}
}

// ProfileFrame folds one frame's per-band power into the running sums.
func (s *Statistics) ProfileFrame(power []float64) {
	for k, p := range power {
		s.Sums[k] += p
	}
	s.TrackWindows++
}

// FinishTrack folds the current track's sums into the weighted running
// mean and resets the per-track counters. It is a no-op if the track
// contributed no frames, so calling it unconditionally after a track is
// safe.
func (s *Statistics) FinishTrack() {
	w := s.TrackWindows
	m := s.TotalWindows
	if w > 0 {
		for k := range s.Means {
			s.Means[k] = (s.Means[k]*float64(m) + s.Sums[k]) / float64(w+m)
			s.Sums[k] = 0
		}
	}
	s.TotalWindows = w + m
	s.TrackWindows = 0
}

// discardPartialTrack drops whatever the current, not-yet-finished track
// contributed so a failed Profile call cannot leave a subsequent Reduce
// averaging in partial sums. Previously finished tracks (Means,
// TotalWindows) are untouched.
func (s *Statistics) discardPartialTrack() {
	for k := range s.Sums {
		s.Sums[k] = 0
	}
	s.TrackWindows = 0
}

// Validate checks that stats can back a reduction with the given rate and
// window size.
func (s *Statistics) Validate(rate, windowSize int) error {
	if s.TotalWindows == 0 {
		return fmt.Errorf("%w: statistics have no accumulated profile frames", ErrProfileEmpty)
	}
	if s.Rate != rate {
		return fmt.Errorf("%w: profile rate %d, reduction rate %d", ErrRateMismatch, s.Rate, rate)
	}
	if s.WindowSize != windowSize {
		return fmt.Errorf("%w: profile window size %d, reduction window size %d", ErrWindowSizeMismatch, s.WindowSize, windowSize)
	}
	return nil
}
