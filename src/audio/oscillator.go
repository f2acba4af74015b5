package audio

import (
	"errors"
	"fmt"
	"math"
)

// ----- Waveform ----- //

// Waveform is the shape an Oscillator produces.
type Waveform int

const (
	WaveformSine Waveform = iota
	WaveformSquare
	WaveformSawtooth
	WaveformTriangle
)

var waveformNames = [...]string{
	WaveformSine:     "sine",
	WaveformSquare:   "square",
	WaveformSawtooth: "sawtooth",
	WaveformTriangle: "triangle",
}

// ParseWaveform returns the waveform with the given name.
func ParseWaveform(s string) (Waveform, error) {
	for i, name := range waveformNames {
		if name == s {
			return Waveform(i), nil
		}
	}
	return WaveformSine, fmt.Errorf("audio: unknown waveform %q", s)
}

func (w Waveform) String() string {
	if w < 0 || int(w) >= len(waveformNames) {
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
	return waveformNames[w]
}

// MarshalText implements encoding.TextMarshaler.
func (w Waveform) MarshalText() ([]byte, error) {
	if w < 0 || int(w) >= len(waveformNames) {
		return nil, fmt.Errorf("audio: unknown waveform %d", int(w))
	}
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *Waveform) UnmarshalText(text []byte) error {
	v, err := ParseWaveform(string(text))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// valueAt returns the waveform at phase p in [0, 1).
func (w Waveform) valueAt(p float64) float64 {
	switch w {
	case WaveformSquare:
		if p < 0.5 {
			return 1
		}
		return -1
	case WaveformSawtooth:
		return p*2 - 1
	case WaveformTriangle:
		if p < 0.5 {
			return p*4 - 1
		}
		return p*(-4) + 3
	default:
		return math.Sin(2 * math.Pi * p)
	}
}

// ----- Oscillator ----- //

// ErrAlreadyStarted is returned when an Oscillator is started twice.
var ErrAlreadyStarted = errors.New("audio: oscillator already started")

const (
	oscIdle = iota
	oscRunning
	oscEnded
)

// Oscillator is a periodic source. It is silent until started, and once
// stopped it stays silent; a new note needs a new Oscillator.
type Oscillator struct {
	*node
	frequency *Param
	kind      Waveform
	phase     float64 // 0 ~ 1
	state     int
}

// NewOscillator creates a stopped sine oscillator at 440 Hz.
func (c *Context) NewOscillator(name string) *Oscillator {
	o := &Oscillator{kind: WaveformSine}
	o.node = c.newNode(name, o, false)
	o.frequency = o.node.newParam("frequency", 440)
	return o
}

// Frequency returns the frequency param, in Hz.
func (o *Oscillator) Frequency() *Param {
	return o.frequency
}

// Type returns the current waveform.
func (o *Oscillator) Type() Waveform {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	return o.kind
}

// SetType changes the waveform.
func (o *Oscillator) SetType(kind Waveform) {
	o.ctx.acquire()
	defer o.ctx.mu.Unlock()
	o.kind = kind
}

// Start makes the oscillator sound from the next rendered block.
func (o *Oscillator) Start() error {
	o.ctx.acquire()
	defer o.ctx.mu.Unlock()
	if o.state != oscIdle {
		return ErrAlreadyStarted
	}
	o.state = oscRunning
	return nil
}

// Stop silences the oscillator for good. Stopping twice does nothing.
func (o *Oscillator) Stop() {
	o.ctx.acquire()
	defer o.ctx.mu.Unlock()
	o.state = oscEnded
	o.releaseIfDone()
}

// Running reports whether the oscillator has been started and not stopped.
func (o *Oscillator) Running() bool {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	return o.state == oscRunning
}

func (o *Oscillator) ended() bool {
	return o.state == oscEnded
}

func (o *Oscillator) process(_ []float64, out []float64) {
	if o.state != oscRunning {
		for i := range out {
			out[i] = 0
		}
		return
	}
	freq := o.frequency.render(len(out))
	for i := range out {
		out[i] = o.kind.valueAt(o.phase)
		o.phase += freq[i] / SampleRate
		o.phase -= math.Floor(o.phase)
	}
}
