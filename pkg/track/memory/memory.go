// Package memory implements track.Source and track.Sink over a plain
// in-process float32 slice; it backs the core package's own tests and the
// residue/identity property checks, where no file or device I/O is wanted.
package memory

import (
	"fmt"
	"time"

	"github.com/xaionaro-go/noisereduce/pkg/audio"
	"github.com/xaionaro-go/noisereduce/pkg/track"
)

const defaultBlockSize = 1 << 16

// Track is a fixed sample-rate, single-channel float32 buffer.
type Track struct {
	RateValue int
	Samples   []float32
}

var (
	_ track.Source = (*Track)(nil)
	_ track.Sink   = (*Track)(nil)
)

// New wraps samples as a track.Source/Sink pair at the given sample rate.
func New(rate int, samples []float32) *Track {
	return &Track{RateValue: rate, Samples: samples}
}

// NewEmpty creates a zero-length track at the given rate, ready to Append.
func NewEmpty(rate int) *Track {
	return &Track{RateValue: rate}
}

func (t *Track) Rate() int {
	return t.RateValue
}

func (t *Track) SampleFormat() audio.PCMFormat {
	return audio.PCMFormatFloat32LE
}

func (t *Track) StartTime() time.Duration {
	return 0
}

func (t *Track) EndTime() time.Duration {
	return t.SampleToTime(int64(len(t.Samples)))
}

func (t *Track) TimeToSample(d time.Duration) int64 {
	return int64(d.Seconds() * float64(t.RateValue))
}

func (t *Track) SampleToTime(n int64) time.Duration {
	return time.Duration(float64(n) / float64(t.RateValue) * float64(time.Second))
}

func (t *Track) MaxBlockSize() int {
	return defaultBlockSize
}

func (t *Track) BestBlockSize(pos int64) int {
	remaining := int64(len(t.Samples)) - pos
	if remaining <= 0 {
		return defaultBlockSize
	}
	if remaining < int64(defaultBlockSize) {
		return int(remaining)
	}
	return defaultBlockSize
}

func (t *Track) Get(dst []float32, pos int64, n int) (int, error) {
	if pos < 0 {
		return 0, fmt.Errorf("memory: negative position %d", pos)
	}
	if pos >= int64(len(t.Samples)) {
		return 0, nil
	}
	end := pos + int64(n)
	if end > int64(len(t.Samples)) {
		end = int64(len(t.Samples))
	}
	copied := copy(dst, t.Samples[pos:end])
	return copied, nil
}

func (t *Track) Append(src []float32) error {
	t.Samples = append(t.Samples, src...)
	return nil
}

func (t *Track) Flush() error {
	return nil
}

func (t *Track) ClearTail(from, to time.Duration) error {
	start := t.TimeToSample(from)
	end := t.TimeToSample(to)
	if start < 0 {
		start = 0
	}
	if end > int64(len(t.Samples)) {
		end = int64(len(t.Samples))
	}
	if start >= end {
		return nil
	}
	t.Samples = t.Samples[:start]
	return nil
}

// SpliceInto replaces dst's samples over [from, to) with this sink's
// accumulated content. dst must itself be a *Track.
func (t *Track) SpliceInto(dst track.Source, from, to time.Duration) error {
	target, ok := dst.(*Track)
	if !ok {
		return fmt.Errorf("memory: SpliceInto target must be *Track, got %T", dst)
	}
	start := target.TimeToSample(from)
	end := target.TimeToSample(to)
	if start < 0 || end > int64(len(target.Samples)) || start > end {
		return fmt.Errorf("memory: splice range [%d,%d) out of bounds for track of length %d", start, end, len(target.Samples))
	}

	replaced := make([]float32, 0, int(start)+len(t.Samples)+(len(target.Samples)-int(end)))
	replaced = append(replaced, target.Samples[:start]...)
	replaced = append(replaced, t.Samples...)
	replaced = append(replaced, target.Samples[end:]...)
	target.Samples = replaced
	return nil
}
