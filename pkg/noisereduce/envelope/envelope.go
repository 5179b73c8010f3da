// Package envelope writes and propagates the per-band gain across the
// frame ring: the center frame's gain is committed from the classifier's
// verdict, then (in reduction mode) exponential attack and release curves
// and geometric frequency smoothing are applied.
package envelope

import (
	"math"

	"github.com/xaionaro-go/noisereduce/pkg/noisereduce/spectrum"
)

// Mode selects how the center gain is computed from a noise/signal verdict.
type Mode int

const (
	// ModeReduce and ModeResidue share the same envelope: floor for noise,
	// unity for signal, shaped by attack/release and frequency smoothing.
	// Residue only differs at emission time, substituting gain-1 per bin.
	ModeReduce Mode = iota
	ModeIsolate
)

// AttackAlpha returns the per-hop attack decay factor alpha_a for a
// configured attenuation gainDB and attack frame count attackFrames.
func AttackAlpha(gainDB float64, attackFrames int) float64 {
	return math.Pow(10, (-gainDB/float64(attackFrames))/20)
}

// ReleaseAlpha returns the per-hop release decay factor alpha_r for a
// configured attenuation gainDB and release frame count releaseFrames.
func ReleaseAlpha(gainDB float64, releaseFrames int) float64 {
	return math.Pow(10, (-gainDB/float64(releaseFrames))/20)
}

// CommitCenter writes the center frame's per-band gain from the
// classifier's verdicts, then, in ModeReduce, propagates exponential attack
// backward in time across the older frames (indices above Center) and
// exponential release one step forward in time into the newer frame at
// index Center-1.
func CommitCenter(ring *spectrum.Ring, verdicts []bool, mode Mode, alphaAttack, alphaRelease float64) {
	center := ring.At(ring.Center)
	for b, isNoise := range verdicts {
		switch mode {
		case ModeReduce:
			if isNoise {
				center.Gain[b] = ring.GainFloor
			} else {
				center.Gain[b] = 1.0
			}
		case ModeIsolate:
			if isNoise {
				center.Gain[b] = 1.0
			} else {
				center.Gain[b] = 0.0
			}
		}
	}

	if mode != ModeReduce {
		return
	}

	attack(ring, alphaAttack)
	release(ring, alphaRelease)
}

// attack propagates each bin's center gain backward in time (toward higher
// ring indices, i.e. frames that haven't been emitted yet) so that noise
// bursts ramp up smoothly rather than snapping to the floor.
func attack(ring *spectrum.Ring, alphaAttack float64) {
	bins := ring.Bins
	for b := 0; b < bins; b++ {
		for i := ring.Center + 1; i < ring.Len(); i++ {
			prev := ring.At(i - 1).Gain[b]
			m := prev * alphaAttack
			if m < ring.GainFloor {
				m = ring.GainFloor
			}
			cur := ring.At(i)
			if cur.Gain[b] < m {
				cur.Gain[b] = m
			} else {
				break
			}
		}
	}
}

// release lets each bin's gain decay for one hop into the immediately
// preceding ring frame; further decay is picked up on subsequent hops as
// that frame becomes the new center.
func release(ring *spectrum.Ring, alphaRelease float64) {
	if ring.Center == 0 {
		return
	}
	bins := ring.Bins
	center := ring.At(ring.Center)
	prev := ring.At(ring.Center - 1)
	for b := 0; b < bins; b++ {
		decayed := center.Gain[b] * alphaRelease
		if decayed < ring.GainFloor {
			decayed = ring.GainFloor
		}
		if decayed > prev.Gain[b] {
			prev.Gain[b] = decayed
		}
	}
}

// SmoothFrequency applies geometric frequency smoothing in place to gain,
// averaging ln(gain) over a +/-f bin neighborhood and exponentiating back.
// It is a no-op when f is 0. scratch must have the same length as gain; the
// caller owns and reuses it across hops so smoothing never allocates.
func SmoothFrequency(gain, scratch []float64, f int) {
	if f <= 0 {
		return
	}
	k := len(gain)
	for b := 0; b < k; b++ {
		lo := b - f
		if lo < 0 {
			lo = 0
		}
		hi := b + f
		if hi > k-1 {
			hi = k - 1
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += math.Log(gain[j])
		}
		scratch[b] = math.Exp(sum / float64(hi-lo+1))
	}
	copy(gain, scratch)
}
