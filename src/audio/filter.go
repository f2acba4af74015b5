package audio

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
)

const (
	minFilterFreq = 10.0
	maxFilterFreq = SampleRate * 0.45
	minFilterQ    = 0.0001
)

// ----- Biquad Filter ----- //

// BiquadFilter is a second order lowpass filter.
type BiquadFilter struct {
	*node
	frequency *Param
	q         *Param
	section   *biquad.Section
	lastFreq  float64
	lastQ     float64
}

// NewBiquadFilter creates a lowpass filter with a 350 Hz cutoff and Q of 1.
func (c *Context) NewBiquadFilter(name string) *BiquadFilter {
	f := &BiquadFilter{
		section:  biquad.NewSection(biquad.Coefficients{}),
		lastFreq: math.NaN(),
	}
	f.node = c.newNode(name, f, true)
	f.frequency = f.node.newParam("frequency", 350)
	f.q = f.node.newParam("Q", 1)
	return f
}

// Frequency returns the cutoff frequency param, in Hz.
func (f *BiquadFilter) Frequency() *Param {
	return f.frequency
}

// Q returns the resonance param.
func (f *BiquadFilter) Q() *Param {
	return f.q
}

func (f *BiquadFilter) process(in []float64, out []float64) {
	freq := f.frequency.render(len(in))
	q := f.q.render(len(in))
	for i := range in {
		fc := clampFinite(freq[i], minFilterFreq, maxFilterFreq)
		fq := clampFinite(q[i], minFilterQ, math.MaxFloat64)
		if fc != f.lastFreq || fq != f.lastQ {
			f.lastFreq = fc
			f.lastQ = fq
			f.section.Coefficients = design.Lowpass(fc, fq, SampleRate)
		}
		out[i] = f.section.ProcessSample(in[i])
	}
}

// clampFinite clamps v to [lo, hi]. NaN maps to lo.
func clampFinite(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
