// Package track defines the sample source/sink abstractions the effect
// facade drives: a block-wise float32 reader with time/sample conversion
// hints, and a block-wise writer that can splice its content back into a
// source's timeline.
package track

import (
	"time"

	"github.com/xaionaro-go/noisereduce/pkg/audio"
)

// Source is a block-wise reader of floating-point PCM samples.
type Source interface {
	Rate() int
	SampleFormat() audio.PCMFormat
	StartTime() time.Duration
	EndTime() time.Duration
	TimeToSample(t time.Duration) int64
	SampleToTime(n int64) time.Duration
	MaxBlockSize() int
	BestBlockSize(pos int64) int
	// Get reads up to n samples into dst starting at sample position pos,
	// returning the number of samples actually read.
	Get(dst []float32, pos int64, n int) (int, error)
}

// Sink is a block-wise writer that accumulates processed samples and can
// later replace a time range of a Source's timeline with its content.
type Sink interface {
	Append(src []float32) error
	Flush() error
	ClearTail(from, to time.Duration) error
	SpliceInto(dst Source, from, to time.Duration) error
}
