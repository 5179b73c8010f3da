// Package fft provides the real-valued FFT primitive used by the STFT
// pipeline: a packed layout compatible with Audacity's RealFFTf, backed by
// a general-purpose complex FFT engine.
package fft

import (
	"fmt"
	"math/bits"

	godspfft "github.com/mjibson/go-dsp/fft"
)

// RealFFT transforms real sample buffers of a fixed size in place, using the
// packed layout: buf[0] holds the DC bin, buf[1] holds the Nyquist bin, and
// buf[2*k]/buf[2*k+1] hold the real/imaginary parts of bin k for
// 1 <= k < Size()/2.
type RealFFT interface {
	// Size returns the number of real samples the transform operates on.
	Size() int

	// BitReversal returns the bit-reversal permutation table for Size(),
	// mirroring the table Audacity's RealFFTf exposes alongside its FFT
	// tables. Callers that need to walk bins in natural frequency order
	// while the underlying engine produces bit-reversed order use this;
	// this adapter's own Forward/Inverse do not depend on it.
	BitReversal() []int

	// Forward computes the forward real FFT of buf in place. len(buf) must
	// equal Size().
	Forward(buf []float64)

	// Inverse computes the inverse real FFT of buf in place, undoing
	// Forward up to floating point error. len(buf) must equal Size().
	Inverse(buf []float64)
}

type realFFT struct {
	size        int
	bitReversal []int
}

// New returns a RealFFT for the given size, which must be a power of two of
// at least 4.
func New(size int) (RealFFT, error) {
	if size < 4 {
		return nil, fmt.Errorf("fft size must be at least 4: got %d", size)
	}
	if size&(size-1) != 0 {
		return nil, fmt.Errorf("fft size must be a power of two: got %d", size)
	}
	return &realFFT{
		size:        size,
		bitReversal: bitReversalTable(size),
	}, nil
}

func bitReversalTable(n int) []int {
	bitsN := bits.Len(uint(n)) - 1
	table := make([]int, n)
	for i := 0; i < n; i++ {
		table[i] = int(bits.Reverse(uint(i)) >> (bits.UintSize - bitsN)) //nolint:gosec // n is small and a power of two
	}
	return table
}

func (r *realFFT) Size() int {
	return r.size
}

func (r *realFFT) BitReversal() []int {
	return r.bitReversal
}

func (r *realFFT) Forward(buf []float64) {
	if len(buf) != r.size {
		panic(fmt.Sprintf("fft: Forward expects a buffer of length %d, got %d", r.size, len(buf)))
	}

	spectrum := godspfft.FFTReal(buf)

	n := r.size
	buf[0] = real(spectrum[0])
	buf[1] = real(spectrum[n/2])
	for k := 1; k < n/2; k++ {
		buf[2*k] = real(spectrum[k])
		buf[2*k+1] = imag(spectrum[k])
	}
}

func (r *realFFT) Inverse(buf []float64) {
	if len(buf) != r.size {
		panic(fmt.Sprintf("fft: Inverse expects a buffer of length %d, got %d", r.size, len(buf)))
	}

	n := r.size
	spectrum := make([]complex128, n)
	spectrum[0] = complex(buf[0], 0)
	spectrum[n/2] = complex(buf[1], 0)
	for k := 1; k < n/2; k++ {
		re, im := buf[2*k], buf[2*k+1]
		spectrum[k] = complex(re, im)
		spectrum[n-k] = complex(re, -im)
	}

	timeDomain := godspfft.IFFT(spectrum)
	for i := 0; i < n; i++ {
		buf[i] = real(timeDomain[i])
	}
}
