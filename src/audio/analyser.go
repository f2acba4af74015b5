package audio

import (
	"sync"

	"github.com/cwbudde/algo-dsp/dsp/window"
	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

const fftSize = 2048 // multiple of samplesPerCycle

// SpectrumBinWidth is the width of one Spectrum bin, in Hz.
const SpectrumBinWidth = float64(SampleRate) / fftSize

// analyser owns the FFT plan and its buffers. Spectrum may be called from
// a goroutine other than the one mutating the graph, so it has its own lock.
type analyser struct {
	mu     sync.Mutex
	plan   *algofft.Plan[complex128]
	frame  []float64
	input  []complex128
	output []complex128
	re, im []float64
}

func newAnalyser() *analyser {
	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		panic(err) // fftSize is a power of two
	}
	return &analyser{
		plan:   plan,
		frame:  make([]float64, fftSize),
		input:  make([]complex128, fftSize),
		output: make([]complex128, fftSize),
		re:     make([]float64, fftSize/2),
		im:     make([]float64, fftSize/2),
	}
}

// Spectrum returns the magnitude spectrum of the most recent fftSize
// rendered samples, fftSize/2 bins of SpectrumBinWidth Hz each.
func (c *Context) Spectrum() []float64 {
	a := c.analyser
	a.mu.Lock()
	defer a.mu.Unlock()

	c.mu.Lock()
	// history: | 4 | 1 | 2 | 3 |
	// offset:      ^
	// frame:   | 1 | 2 | 3 | 4 |
	offset := c.historyPos
	copy(a.frame, c.history[offset:])
	copy(a.frame[fftSize-offset:], c.history[:offset])
	c.mu.Unlock()

	window.Apply(window.TypeHann, a.frame, window.WithPeriodic())
	for i, v := range a.frame {
		a.input[i] = complex(v, 0)
	}
	result := make([]float64, fftSize/2)
	if err := a.plan.Forward(a.output, a.input); err != nil {
		return result
	}
	for i := range result {
		a.re[i] = real(a.output[i]) * 2 / fftSize
		a.im[i] = imag(a.output[i]) * 2 / fftSize
	}
	vecmath.Magnitude(result, a.re, a.im)
	return result
}
