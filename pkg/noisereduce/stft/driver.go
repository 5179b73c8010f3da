// Package stft drives the short-time Fourier transform pipeline: framing
// with overlap, the forward/inverse real FFT, the frame ring, and (in
// reduction mode) the classifier and gain envelope, producing correctly
// aligned overlap-add output.
package stft

import (
	"fmt"
	"math"

	"github.com/xaionaro-go/noisereduce/pkg/fft"
	"github.com/xaionaro-go/noisereduce/pkg/noisereduce/classify"
	"github.com/xaionaro-go/noisereduce/pkg/noisereduce/envelope"
	"github.com/xaionaro-go/noisereduce/pkg/noisereduce/spectrum"
	"github.com/xaionaro-go/noisereduce/pkg/noisereduce/window"
)

// Mode selects whether the driver accumulates noise statistics (profiling)
// or classifies bands and shapes a gain envelope (reduction).
type Mode int

const (
	ModeProfile Mode = iota
	ModeReduce
)

// ReductionChoice selects which signal the driver emits in reduction mode.
type ReductionChoice int

const (
	ChoiceReduce ReductionChoice = iota
	ChoiceIsolate
	ChoiceResidue
)

// ProfileSink receives each profiling frame's per-band power.
// *noisereduce.Statistics satisfies this with its ProfileFrame method.
type ProfileSink interface {
	ProfileFrame(power []float64)
}

// Config fully parameterizes one Driver. Mode-specific fields (Choice,
// Method, Sigma, FreqSmoothing, Means) are only consulted when Mode is
// ModeReduce; ProfileSink is only consulted when Mode is ModeProfile.
type Config struct {
	FFT            fft.RealFFT
	Window         *window.Bank
	SampleRate     int
	GainDB         float64
	AttackSeconds  float64
	ReleaseSeconds float64

	Mode Mode

	ProfileSink ProfileSink

	Choice        ReductionChoice
	Method        classify.Method
	Sigma         float64
	FreqSmoothing int
	Means         []float64

	// OldSensitivity only applies when Method is classify.MethodOld.
	OldSensitivity float64
}

// Driver is the STFT state machine for one profile/reduce invocation. It
// owns its ring, scratch buffers, and window bank exclusively; it is not
// safe for concurrent use.
type Driver struct {
	mode   Mode
	choice ReductionChoice

	fftEngine fft.RealFFT
	win       *window.Bank
	ring      *spectrum.Ring

	w, h, s, k int
	n, c, l    int

	ibuf []float64
	p    int
	obuf []float64

	inN  int64
	outC int64

	scratchGain  []float64
	scratchPower []float64
	verdicts     []bool
	timeBuf      []float64

	profileSink ProfileSink

	method        classify.Method
	means         []float64
	sigmaNat      float64
	freqF         int
	oldClassifier *classify.OldClassifier
	oldFactor     float64

	alphaAttack  float64
	alphaRelease float64

	output []float32
}

// New constructs a driver for one profile or reduce invocation.
func New(cfg Config) (*Driver, error) {
	if cfg.FFT == nil {
		return nil, fmt.Errorf("stft: FFT engine is required")
	}
	if cfg.Window == nil {
		return nil, fmt.Errorf("stft: window bank is required")
	}
	w := cfg.FFT.Size()
	if w != cfg.Window.Size {
		return nil, fmt.Errorf("stft: FFT size %d does not match window size %d", w, cfg.Window.Size)
	}
	s := cfg.Window.Steps
	h := w / s
	k := w/2 + 1
	n := 1 + s
	c := n / 2

	gainFloor := math.Pow(10, -cfg.GainDB/20)

	d := &Driver{
		mode:         cfg.Mode,
		choice:       cfg.Choice,
		fftEngine:    cfg.FFT,
		win:          cfg.Window,
		w:            w,
		h:            h,
		s:            s,
		k:            k,
		n:            n,
		c:            c,
		ibuf:         make([]float64, w),
		obuf:         make([]float64, w),
		scratchGain:  make([]float64, k),
		scratchPower: make([]float64, n),
		verdicts:     make([]bool, k),
		timeBuf:      make([]float64, w),
		profileSink:  cfg.ProfileSink,
		method:       cfg.Method,
		means:        cfg.Means,
		sigmaNat:     classify.NaturalSensitivity(cfg.Sigma),
		freqF:        cfg.FreqSmoothing,
	}

	if cfg.Mode == ModeProfile {
		d.l = 1
		d.c = 0
		d.ring = spectrum.New(1, k, gainFloor, 0)
		d.p = 0
		d.outC = -(int64(d.l) - 1)
		return d, nil
	}

	if c < 1 {
		return nil, fmt.Errorf("stft: ring center %d must be at least 1 for reduction mode", c)
	}
	if cfg.Method == classify.Median && n != 3 && n != 5 {
		return nil, fmt.Errorf("stft: median classifier requires a 3- or 5-wide neighborhood, got %d (steps per window %d)", n, s)
	}
	if len(cfg.Means) != k {
		return nil, fmt.Errorf("stft: Means must have %d bins, got %d", k, len(cfg.Means))
	}
	if cfg.Method == classify.MethodOld {
		d.oldClassifier = classify.NewOldClassifier(k)
		d.oldFactor = classify.OldSensitivityFactor(cfg.OldSensitivity)
	}

	attackFrames := 1 + int(cfg.AttackSeconds*float64(cfg.SampleRate)/float64(h))
	releaseFrames := 1 + int(cfg.ReleaseSeconds*float64(cfg.SampleRate)/float64(h))

	d.l = n
	if c+attackFrames > d.l {
		d.l = c + attackFrames
	}
	d.ring = spectrum.New(d.l, k, gainFloor, c)
	d.alphaAttack = envelope.AttackAlpha(cfg.GainDB, attackFrames)
	d.alphaRelease = envelope.ReleaseAlpha(cfg.GainDB, releaseFrames)
	d.p = w - h
	d.outC = -(int64(d.l-1) + int64(s-1))

	return d, nil
}
