package file

import (
	"fmt"
	"io"
	"os"

	"github.com/jfreymuth/oggvorbis"
	"github.com/xaionaro-go/noisereduce/pkg/track"
	"github.com/xaionaro-go/noisereduce/pkg/track/memory"
)

// OpenOGG decodes path into one mono track.Source per channel, plus the
// stream's sample rate.
func OpenOGG(path string) ([]track.Source, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("file: %w", err)
	}
	defer f.Close()

	dec, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, 0, fmt.Errorf("file: decoding ogg header: %w", err)
	}

	channels := dec.Channels()
	rate := dec.SampleRate()
	if channels <= 0 {
		return nil, 0, fmt.Errorf("file: ogg stream reports %d channels", channels)
	}

	var interleaved []float32
	buf := make([]float32, 4096*channels)
	for {
		n, err := dec.Read(buf)
		interleaved = append(interleaved, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("file: decoding ogg: %w", err)
		}
		if n == 0 {
			break
		}
	}

	frames := len(interleaved) / channels
	perChannel := make([][]float32, channels)
	for c := range perChannel {
		perChannel[c] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			perChannel[c][i] = interleaved[i*channels+c]
		}
	}

	sources := make([]track.Source, channels)
	for c := range sources {
		sources[c] = memory.New(rate, perChannel[c])
	}
	return sources, rate, nil
}
