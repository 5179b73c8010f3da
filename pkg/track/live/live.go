// Package live plays a track.Source through the host's audio output via
// pkg/audio's player registry. It is playback-only: there is no
// live.Source, since Profile and Reduce always consume an already-captured
// region of an existing track.Source (§2 of the facade) and never record
// audio themselves.
package live

import (
	"context"
	"encoding/binary"
	"io"
	"math"

	"github.com/xaionaro-go/noisereduce/pkg/audio"
	"github.com/xaionaro-go/noisereduce/pkg/track"
)

// Play streams src (treated as one mono channel) through the best
// available PCM player and blocks until playback drains.
func Play(ctx context.Context, src track.Source) error {
	player := audio.NewPlayerAuto(ctx)

	stream, err := player.PlayPCM(
		ctx,
		audio.SampleRate(src.Rate()),
		1,
		audio.PCMFormatFloat32LE,
		audio.BufferSize,
		&sourceReader{src: src},
	)
	if err != nil {
		return err
	}
	defer stream.Close()

	return stream.Drain()
}

// sourceReader adapts a track.Source to an io.Reader of little-endian
// Float32LE PCM bytes, the same byte-packing loop the audio package's
// device backend expects from any PlayPCM reader.
type sourceReader struct {
	src track.Source
	pos int64
	buf []float32
}

func (r *sourceReader) Read(p []byte) (int, error) {
	samples := len(p) / 4
	if samples == 0 {
		return 0, nil
	}
	if cap(r.buf) < samples {
		r.buf = make([]float32, samples)
	}
	buf := r.buf[:samples]

	n, err := r.src.Get(buf, r.pos, samples)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(buf[i]))
	}
	r.pos += int64(n)
	return n * 4, nil
}
