package types

import "fmt"

// Channel is the number of interleaved channels in a PCM stream.
type Channel uint

// SampleRate is a PCM sample rate in Hz.
type SampleRate uint

// PCMFormat identifies the on-the-wire sample encoding used by the
// player/recorder backends and the resampler.
type PCMFormat int

const (
	PCMFormatUnknown PCMFormat = iota
	PCMFormatU8
	PCMFormatS16LE
	PCMFormatS16BE
	PCMFormatS24LE
	PCMFormatS24BE
	PCMFormatS32LE
	PCMFormatS32BE
	PCMFormatS64LE
	PCMFormatS64BE
	PCMFormatFloat32LE
	PCMFormatFloat32BE
	PCMFormatFloat64LE
	PCMFormatFloat64BE
)

// Size returns the number of bytes a single sample of this format occupies.
func (f PCMFormat) Size() int {
	switch f {
	case PCMFormatU8:
		return 1
	case PCMFormatS16LE, PCMFormatS16BE:
		return 2
	case PCMFormatS24LE, PCMFormatS24BE:
		return 3
	case PCMFormatS32LE, PCMFormatS32BE, PCMFormatFloat32LE, PCMFormatFloat32BE:
		return 4
	case PCMFormatS64LE, PCMFormatS64BE, PCMFormatFloat64LE, PCMFormatFloat64BE:
		return 8
	default:
		panic(fmt.Sprintf("unknown format: %d", int(f)))
	}
}

func (f PCMFormat) String() string {
	switch f {
	case PCMFormatU8:
		return "U8"
	case PCMFormatS16LE:
		return "S16LE"
	case PCMFormatS16BE:
		return "S16BE"
	case PCMFormatS24LE:
		return "S24LE"
	case PCMFormatS24BE:
		return "S24BE"
	case PCMFormatS32LE:
		return "S32LE"
	case PCMFormatS32BE:
		return "S32BE"
	case PCMFormatS64LE:
		return "S64LE"
	case PCMFormatS64BE:
		return "S64BE"
	case PCMFormatFloat32LE:
		return "Float32LE"
	case PCMFormatFloat32BE:
		return "Float32BE"
	case PCMFormatFloat64LE:
		return "Float64LE"
	case PCMFormatFloat64BE:
		return "Float64BE"
	default:
		return "Unknown"
	}
}
