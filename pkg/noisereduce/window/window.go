// Package window precomputes the analysis/synthesis window pair and the
// overlap-normalization constant used by the STFT driver.
package window

import (
	"fmt"
	"math"
)

// Type selects one of the fixed analysis/synthesis window-pair presets.
type Type int

const (
	NoneHann Type = iota
	HannNone
	HannHann
	BlackmanHann
	HammingNone
	HammingHann
	HammingInvHamming
)

func (t Type) String() string {
	switch t {
	case NoneHann:
		return "none+Hann"
	case HannNone:
		return "Hann+none"
	case HannHann:
		return "Hann+Hann"
	case BlackmanHann:
		return "Blackman+Hann"
	case HammingNone:
		return "Hamming+none"
	case HammingHann:
		return "Hamming+Hann"
	case HammingInvHamming:
		return "Hamming+invHamming"
	default:
		return fmt.Sprintf("window.Type(%d)", int(t))
	}
}

func (t *Type) Set(s string) error {
	for candidate := NoneHann; candidate <= HammingInvHamming; candidate++ {
		if candidate.String() == s {
			*t = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown window type %q", s)
}

func (t Type) Type() string {
	return "windowType"
}

type coeffs struct {
	c0, c1, c2 float64
}

type entry struct {
	analysis  coeffs
	synthesis coeffs
	// analysisRect and synthesisRect mark a side as rectangular
	// ("do not multiply") rather than a raised-cosine family.
	analysisRect, synthesisRect bool
	invHamming                  bool
	minSteps                    int
	p                           float64
}

var catalog = map[Type]entry{
	NoneHann:          {analysisRect: true, synthesis: coeffs{0.5, -0.5, 0}, minSteps: 2, p: 0.5},
	HannNone:          {analysis: coeffs{0.5, -0.5, 0}, synthesisRect: true, minSteps: 2, p: 0.5},
	HannHann:          {analysis: coeffs{0.5, -0.5, 0}, synthesis: coeffs{0.5, -0.5, 0}, minSteps: 4, p: 0.375},
	BlackmanHann:      {analysis: coeffs{0.42, -0.5, 0.08}, synthesis: coeffs{0.5, -0.5, 0}, minSteps: 4, p: 0.335},
	HammingNone:       {analysis: coeffs{0.54, -0.46, 0}, synthesisRect: true, minSteps: 2, p: 0.54},
	HammingHann:       {analysis: coeffs{0.54, -0.46, 0}, synthesis: coeffs{0.5, -0.5, 0}, minSteps: 4, p: 0.385},
	HammingInvHamming: {analysis: coeffs{0.54, -0.46, 0}, invHamming: true, minSteps: 2, p: 1.0},
}

// MinSteps returns the minimum steps-per-window supported by t.
func MinSteps(t Type) (int, error) {
	e, ok := catalog[t]
	if !ok {
		return 0, fmt.Errorf("unknown window type %v", t)
	}
	return e.minSteps, nil
}

// Bank holds the analysis and synthesis vectors for a given window size and
// step count, along with the overlap-normalization constant baked in.
type Bank struct {
	Type      Type
	Size      int
	Steps     int
	Analysis  []float64 // nil means rectangular (no-op multiply)
	Synthesis []float64 // nil means rectangular (no-op multiply)
}

// New builds the window bank for the given type, window size W and
// steps-per-window S. It rejects configurations the spectral pipeline
// cannot support: S below the pair's minimum, S above W, or (when
// medianMethod is true) S above 4, since the classifier's median rule only
// supports a 3- or 5-wide neighborhood.
func New(t Type, size, steps int, medianMethod bool) (*Bank, error) {
	e, ok := catalog[t]
	if !ok {
		return nil, fmt.Errorf("unknown window type %v", t)
	}
	if size <= 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("window size must be a power of two: got %d", size)
	}
	if steps <= 0 || steps&(steps-1) != 0 {
		return nil, fmt.Errorf("steps per window must be a power of two: got %d", steps)
	}
	if steps < e.minSteps {
		return nil, fmt.Errorf("window type %v requires at least %d steps per window, got %d", t, e.minSteps, steps)
	}
	if steps > size {
		return nil, fmt.Errorf("steps per window (%d) cannot exceed window size (%d)", steps, size)
	}
	if medianMethod && steps > 4 {
		return nil, fmt.Errorf("median classifier requires steps per window <= 4, got %d", steps)
	}

	m := 1.0 / (e.p * float64(steps))

	var analysis, synthesis []float64
	switch {
	case e.invHamming:
		analysis = raisedCosine(size, e.analysis)
		synthesis = make([]float64, size)
		for n := range synthesis {
			if analysis[n] == 0 {
				return nil, fmt.Errorf("analysis window has a zero at sample %d, cannot invert for invHamming synthesis", n)
			}
			synthesis[n] = m / analysis[n]
		}
	case e.analysisRect && e.synthesisRect:
		// cannot happen for any catalog entry, but keep the case total
		return nil, fmt.Errorf("window type %v has no analysis or synthesis component", t)
	case e.analysisRect:
		synthesis = raisedCosine(size, e.synthesis)
		scale(synthesis, m)
	case e.synthesisRect:
		analysis = raisedCosine(size, e.analysis)
		scale(analysis, m)
	default:
		analysis = raisedCosine(size, e.analysis)
		synthesis = raisedCosine(size, e.synthesis)
		scale(synthesis, m)
	}

	return &Bank{
		Type:      t,
		Size:      size,
		Steps:     steps,
		Analysis:  analysis,
		Synthesis: synthesis,
	}, nil
}

func raisedCosine(size int, c coeffs) []float64 {
	w := make([]float64, size)
	denom := float64(size)
	for n := range w {
		w[n] = c.c0 + c.c1*math.Cos(2*math.Pi*float64(n)/denom) + c.c2*math.Cos(4*math.Pi*float64(n)/denom)
	}
	return w
}

func scale(w []float64, m float64) {
	for i := range w {
		w[i] *= m
	}
}

// ApplyAnalysis multiplies src by the analysis window into dst, or copies
// src into dst unchanged when the analysis side is rectangular.
func (b *Bank) ApplyAnalysis(dst, src []float64) {
	if b.Analysis == nil {
		copy(dst, src)
		return
	}
	for i, v := range src {
		dst[i] = v * b.Analysis[i]
	}
}

// ApplySynthesis multiplies buf in place by the synthesis window, or leaves
// it unchanged when the synthesis side is rectangular.
func (b *Bank) ApplySynthesis(buf []float64) {
	if b.Synthesis == nil {
		return
	}
	for i := range buf {
		buf[i] *= b.Synthesis[i]
	}
}
