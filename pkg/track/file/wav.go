// Package file implements track.Source/track.Sink against on-disk audio
// containers: WAV (read/write, via the adapted resampler's PCM-format
// switch) and Ogg Vorbis (read-only, via jfreymuth/oggvorbis). Each
// channel of a multi-channel file is exposed as an independent mono
// track.Source/Sink backed by pkg/track/memory, since the core pipeline
// never couples bands across channels.
package file

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/xaionaro-go/noisereduce/pkg/audio"
	"github.com/xaionaro-go/noisereduce/pkg/audio/resampler"
	"github.com/xaionaro-go/noisereduce/pkg/audio/types"
	"github.com/xaionaro-go/noisereduce/pkg/track"
	"github.com/xaionaro-go/noisereduce/pkg/track/memory"
)

// WAV "fmt " chunk format codes.
const (
	wavFormatPCM       = 1
	wavFormatIEEEFloat = 3
)

type wavHeader struct {
	formatCode    int
	channels      int
	sampleRate    int
	bitsPerSample int
	data          []byte
}

func parseWAV(r io.Reader) (wavHeader, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return wavHeader{}, fmt.Errorf("file: reading WAV: %w", err)
	}
	if len(raw) < 12 || string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		return wavHeader{}, fmt.Errorf("file: not a RIFF/WAVE stream")
	}

	var h wavHeader
	haveFmt := false
	pos := 12
	for pos+8 <= len(raw) {
		id := string(raw[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(raw[pos+4 : pos+8]))
		body := raw[pos+8:]
		if size > len(body) {
			size = len(body)
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return wavHeader{}, fmt.Errorf("file: fmt chunk too small (%d bytes)", size)
			}
			h.formatCode = int(binary.LittleEndian.Uint16(body[0:2]))
			h.channels = int(binary.LittleEndian.Uint16(body[2:4]))
			h.sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			h.bitsPerSample = int(binary.LittleEndian.Uint16(body[14:16]))
			haveFmt = true
		case "data":
			h.data = body[:size]
		}
		pos += 8 + size
		if size%2 == 1 {
			pos++ // chunks are word-aligned
		}
	}
	if !haveFmt || h.data == nil {
		return wavHeader{}, fmt.Errorf("file: WAV stream is missing a fmt or data chunk")
	}
	return h, nil
}

func (h wavHeader) pcmFormat() (types.PCMFormat, error) {
	switch {
	case h.formatCode == wavFormatPCM && h.bitsPerSample == 8:
		return types.PCMFormatU8, nil
	case h.formatCode == wavFormatPCM && h.bitsPerSample == 16:
		return types.PCMFormatS16LE, nil
	case h.formatCode == wavFormatPCM && h.bitsPerSample == 24:
		return types.PCMFormatS24LE, nil
	case h.formatCode == wavFormatPCM && h.bitsPerSample == 32:
		return types.PCMFormatS32LE, nil
	case h.formatCode == wavFormatIEEEFloat && h.bitsPerSample == 32:
		return types.PCMFormatFloat32LE, nil
	case h.formatCode == wavFormatIEEEFloat && h.bitsPerSample == 64:
		return types.PCMFormatFloat64LE, nil
	default:
		return 0, fmt.Errorf("file: unsupported WAV encoding (format code %d, %d bits)", h.formatCode, h.bitsPerSample)
	}
}

// OpenWAV decodes path into one mono track.Source per interleaved channel,
// plus the file's sample rate. The byte-level PCM decode is delegated to
// resampler.Resampler configured with matching channel counts on both
// sides (a pure format conversion, no mixing); deinterleaving is a plain
// stride copy.
func OpenWAV(path string) ([]track.Source, int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("file: %w", err)
	}
	h, err := parseWAV(bytes.NewReader(raw))
	if err != nil {
		return nil, 0, err
	}
	srcFormat, err := h.pcmFormat()
	if err != nil {
		return nil, 0, err
	}

	shared := resampler.Format{Channels: audio.Channel(h.channels), SampleRate: audio.SampleRate(h.sampleRate)}
	inFmt, outFmt := shared, shared
	inFmt.PCMFormat = srcFormat
	outFmt.PCMFormat = types.PCMFormatFloat32LE

	conv, err := resampler.NewResampler(inFmt, bytes.NewReader(h.data), outFmt)
	if err != nil {
		return nil, 0, fmt.Errorf("file: %w", err)
	}
	decoded, err := io.ReadAll(conv)
	if err != nil {
		return nil, 0, fmt.Errorf("file: decoding WAV PCM: %w", err)
	}

	frames := len(decoded) / (4 * h.channels)
	perChannel := make([][]float32, h.channels)
	for c := range perChannel {
		perChannel[c] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for c := 0; c < h.channels; c++ {
			off := (i*h.channels + c) * 4
			perChannel[c][i] = math.Float32frombits(binary.LittleEndian.Uint32(decoded[off : off+4]))
		}
	}

	sources := make([]track.Source, h.channels)
	for c := range sources {
		sources[c] = memory.New(h.sampleRate, perChannel[c])
	}
	return sources, h.sampleRate, nil
}

// SaveWAV writes channels (one track.Source per interleaved output
// channel, all sharing rate) to path as 16-bit PCM WAV.
func SaveWAV(path string, rate int, channels []track.Source) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("file: %w", err)
	}
	defer f.Close()
	return EncodeWAV(f, rate, channels)
}

// EncodeWAV writes channels to w as 16-bit PCM WAV. The byte-level PCM
// encode is delegated to resampler.Resampler the same way OpenWAV delegates
// decode; interleaving is a plain stride copy.
func EncodeWAV(w io.Writer, rate int, channels []track.Source) error {
	if len(channels) == 0 {
		return fmt.Errorf("file: EncodeWAV requires at least one channel")
	}

	frames := int64(0)
	for _, ch := range channels {
		if n := ch.TimeToSample(ch.EndTime()); n > frames {
			frames = n
		}
	}

	interleaved := make([]float32, frames*int64(len(channels)))
	buf := make([]float32, 1<<16)
	for c, ch := range channels {
		var pos int64
		for pos < frames {
			n := len(buf)
			if remaining := frames - pos; int64(n) > remaining {
				n = int(remaining)
			}
			read, err := ch.Get(buf[:n], pos, n)
			if err != nil {
				return fmt.Errorf("file: reading channel %d: %w", c, err)
			}
			if read == 0 {
				break
			}
			for i := 0; i < read; i++ {
				interleaved[(pos+int64(i))*int64(len(channels))+int64(c)] = buf[i]
			}
			pos += int64(read)
		}
	}

	raw := make([]byte, len(interleaved)*4)
	for i, v := range interleaved {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}

	shared := resampler.Format{Channels: audio.Channel(len(channels)), SampleRate: audio.SampleRate(rate)}
	inFmt, outFmt := shared, shared
	inFmt.PCMFormat = types.PCMFormatFloat32LE
	outFmt.PCMFormat = types.PCMFormatS16LE

	conv, err := resampler.NewResampler(inFmt, bytes.NewReader(raw), outFmt)
	if err != nil {
		return fmt.Errorf("file: %w", err)
	}
	encoded, err := io.ReadAll(conv)
	if err != nil {
		return fmt.Errorf("file: encoding WAV PCM: %w", err)
	}

	return writeWAVHeader(w, rate, len(channels), 16, encoded)
}

func writeWAVHeader(w io.Writer, rate, channels, bitsPerSample int, data []byte) error {
	var buf bytes.Buffer
	blockAlign := channels * bitsPerSample / 8
	byteRate := rate * blockAlign

	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+len(data)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(wavFormatPCM))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(rate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)

	_, err := w.Write(buf.Bytes())
	return err
}
