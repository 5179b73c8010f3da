package stft

import (
	"github.com/xaionaro-go/noisereduce/pkg/noisereduce/classify"
	"github.com/xaionaro-go/noisereduce/pkg/noisereduce/envelope"
)

// Ingest feeds len(x) real input samples into the driver, driving as many
// hops as become ready.
func (d *Driver) Ingest(x []float64) {
	d.ingest(x, true)
}

// Flush drains the driver's remaining lookahead by feeding zero-valued
// hops until it has produced as many hops as the real input justifies.
// The samples fed during flush do not count toward the input counter, so
// the loop is guaranteed to close the gap opened by the ring's lookahead.
func (d *Driver) Flush() {
	zeros := make([]float64, d.h)
	for d.outC*int64(d.h) < d.inN {
		d.ingest(zeros, false)
	}
}

// Output returns the samples emitted so far and clears the internal
// buffer.
func (d *Driver) Output() []float32 {
	out := d.output
	d.output = nil
	return out
}

func (d *Driver) ingest(x []float64, countInN bool) {
	for len(x) > 0 {
		n := d.w - d.p
		if n > len(x) {
			n = len(x)
		}
		copy(d.ibuf[d.p:d.p+n], x[:n])
		d.p += n
		if countInN {
			d.inN += int64(n)
		}
		x = x[n:]
		if d.p == d.w {
			d.processFrame()
		}
	}
}

func (d *Driver) processFrame() {
	scratch := d.timeBuf
	d.win.ApplyAnalysis(scratch, d.ibuf)
	d.fftEngine.Forward(scratch)
	d.populateFrame0(scratch)

	if d.mode == ModeProfile {
		d.profileSink.ProfileFrame(d.ring.At(0).Power)
	} else {
		d.classifyAndEnvelope()
	}

	d.outC++
	d.ring.Rotate()

	copy(d.ibuf, d.ibuf[d.h:])
	d.p = d.w - d.h

	d.emitHop()
}

func (d *Driver) populateFrame0(packed []float64) {
	f := d.ring.At(0)
	nyquist := d.k - 1

	f.Re[0] = packed[0]
	f.Im[0] = 0
	f.Power[0] = f.Re[0] * f.Re[0]

	f.Re[nyquist] = packed[1]
	f.Im[nyquist] = 0
	f.Power[nyquist] = f.Re[nyquist] * f.Re[nyquist]

	for k := 1; k < nyquist; k++ {
		re, im := packed[2*k], packed[2*k+1]
		f.Re[k] = re
		f.Im[k] = im
		f.Power[k] = re*re + im*im
	}
}

func (d *Driver) classifyAndEnvelope() {
	// The classifier's N-wide neighborhood is exactly ring slots [0, N),
	// since the ring length L >= N and slot C sits at its middle.
	for b := 0; b < d.k; b++ {
		for i := 0; i < d.n; i++ {
			d.scratchPower[i] = d.ring.At(i).Power[b]
		}

		if d.method == classify.MethodOld {
			minPower := d.scratchPower[0]
			for _, p := range d.scratchPower[1:d.n] {
				if p < minPower {
					minPower = p
				}
			}
			d.verdicts[b] = d.oldClassifier.IsNoise(b, minPower, d.means[b], d.oldFactor)
			continue
		}

		isNoise, err := classify.IsNoise(d.method, d.scratchPower, d.means[b], d.sigmaNat)
		if err != nil {
			panic(err)
		}
		d.verdicts[b] = isNoise
	}

	mode := envelope.ModeReduce
	if d.choice == ChoiceIsolate {
		mode = envelope.ModeIsolate
	}
	envelope.CommitCenter(d.ring, d.verdicts, mode, d.alphaAttack, d.alphaRelease)
}

// emitHop reuses timeBuf as the packed spectrum/time-domain buffer for the
// inverse transform; by this point in the hop, timeBuf's forward-FFT use
// earlier in processFrame is long done.
func (d *Driver) emitHop() {
	threshold := -(int64(d.s) - 1)
	if d.outC < threshold {
		return
	}

	tail := d.ring.At(d.l - 1)
	envelope.SmoothFrequency(tail.Gain, d.scratchGain, d.freqF)

	buf := d.timeBuf
	nyquist := d.k - 1
	residue := d.choice == ChoiceResidue

	gainAt := func(k int) float64 {
		if residue {
			return tail.Gain[k] - 1.0
		}
		return tail.Gain[k]
	}

	buf[0] = tail.Re[0] * gainAt(0)
	buf[1] = tail.Re[nyquist] * gainAt(nyquist)
	for k := 1; k < nyquist; k++ {
		g := gainAt(k)
		buf[2*k] = tail.Re[k] * g
		buf[2*k+1] = tail.Im[k] * g
	}

	d.fftEngine.Inverse(buf)
	d.win.ApplySynthesis(buf)

	for i := range d.obuf {
		d.obuf[i] += buf[i]
	}

	if d.outC >= 0 {
		out := make([]float32, d.h)
		for i := range out {
			out[i] = float32(d.obuf[i])
		}
		d.output = append(d.output, out...)
	}

	copy(d.obuf, d.obuf[d.h:])
	for i := d.w - d.h; i < d.w; i++ {
		d.obuf[i] = 0
	}
}
