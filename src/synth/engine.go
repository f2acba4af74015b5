package synth

import (
	"context"
	"fmt"
	"log"

	"github.com/jinjor/desktop-synth/src/audio"
)

// ----- Engine ----- //

// Engine is a monophonic subtractive synthesizer:
//
//	oscillators -> gain stages -> lowpass filter -> master -> destination
//
// with an LFO routed either to the filter cutoff or to the pitch of the
// oscillators. Engine is not safe for concurrent use; callers drive it from
// a single goroutine while the audio context renders in the background.
type Engine struct {
	ctx         *audio.Context
	master      *audio.Gain
	filter      *audio.BiquadFilter
	stages      [numKinds]*audio.Gain
	mod         *modulation
	voice       *voice
	voicing     Voicing
	oscWaveform audio.Waveform
	sub         bool
}

// New builds the signal graph described by c. A nil sink gives an offline
// engine that renders through Render only.
func New(c Config, sink audio.Sink) (*Engine, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	ctx := audio.NewContext(sink)

	master := ctx.NewGain("master")
	master.Gain().SetValue(c.Volume)
	master.Connect(ctx.Destination())

	filter := ctx.NewBiquadFilter("filter")
	filter.Frequency().SetValue(c.FilterFrequency)
	filter.Connect(master)

	e := &Engine{
		ctx:         ctx,
		master:      master,
		filter:      filter,
		voicing:     c.Voicing,
		oscWaveform: c.OscWaveform,
		sub:         c.SubOscillator,
	}
	for kind := OscillatorKind(0); kind < numKinds; kind++ {
		stage := ctx.NewGain(kind.String() + "Gain")
		stage.Gain().SetValue(c.OscillatorVolumes.of(kind))
		stage.Connect(filter)
		e.stages[kind] = stage
	}
	e.mod = newModulation(ctx, filter, &c)
	e.mod.route(c.LFODestination, nil)
	return e, nil
}

// Run delivers the output to the sink until ctx is cancelled or Off is
// called.
func (e *Engine) Run(ctx context.Context) error {
	return e.ctx.Start(ctx)
}

// Render renders frames of mono output offline.
func (e *Engine) Render(frames int) []float64 {
	return e.ctx.Render(frames)
}

// Connections lists every edge of the signal graph.
func (e *Engine) Connections() []string {
	return e.ctx.Connections()
}

// Peak returns the peak level of the last rendered block.
func (e *Engine) Peak() float64 {
	return e.ctx.Peak()
}

// Spectrum returns the magnitude spectrum of the latest output, in bins of
// audio.SpectrumBinWidth Hz.
func (e *Engine) Spectrum() []float64 {
	return e.ctx.Spectrum()
}

// Closed reports whether Off has been called.
func (e *Engine) Closed() bool {
	return e.ctx.Closed()
}

// Play stops the current note, if any, and starts a new one. An unknown
// note leaves the current note sounding.
func (e *Engine) Play(note Note, octave int) error {
	if e.ctx.Closed() {
		return audio.ErrClosed
	}
	parts, err := e.voiceParts(note, octave)
	if err != nil {
		return err
	}
	e.Stop()
	e.voice = e.startVoice(note, octave, parts)
	return nil
}

// Stop silences the current note. It does nothing when no note is playing.
func (e *Engine) Stop() {
	if e.voice == nil || e.ctx.Closed() {
		return
	}
	e.voice.stop(e.mod)
	e.voice = nil
}

// Playing returns the note currently sounding.
func (e *Engine) Playing() (note Note, octave int, ok bool) {
	if e.voice == nil {
		return 0, 0, false
	}
	return e.voice.note, e.voice.octave, true
}

// Off tears the graph down and releases the sink. The engine cannot be used
// afterwards.
func (e *Engine) Off() error {
	if e.ctx.Closed() {
		return audio.ErrClosed
	}
	e.Stop()
	e.mod.off()
	for _, stage := range e.stages {
		stage.Disconnect()
	}
	e.filter.Disconnect()
	e.master.Disconnect()
	log.Println("synth: off")
	return e.ctx.Close()
}

// ----- Parameters ----- //

func (e *Engine) param(p Param) *audio.Param {
	switch p {
	case ParamVolume:
		return e.master.Gain()
	case ParamFilterFrequency:
		return e.filter.Frequency()
	case ParamLFOAmount:
		return e.mod.gain.Gain()
	case ParamLFOFrequency:
		return e.mod.lfo.Frequency()
	case ParamSawOscillatorVolume:
		return e.stages[KindSaw].Gain()
	case ParamTriangleOscillatorVolume:
		return e.stages[KindTriangle].Gain()
	case ParamSquareOscillatorVolume:
		return e.stages[KindSquare].Gain()
	case ParamSubOscillatorVolume:
		return e.stages[KindSub].Gain()
	}
	panic(fmt.Sprintf("synth: unknown parameter %d", int(p)))
}

// Get returns the current value of p.
func (e *Engine) Get(p Param) float64 {
	return e.param(p).Value()
}

// Set applies value to p. A refused value is logged, reported as a
// *RangeError and leaves the parameter unchanged.
func (e *Engine) Set(p Param, value float64) error {
	if err := p.check(value); err != nil {
		log.Printf("rejected: %v", err)
		return err
	}
	if e.ctx.Closed() {
		return audio.ErrClosed
	}
	e.param(p).SetValue(value)
	return nil
}

// Volume returns the master gain.
func (e *Engine) Volume() float64 {
	return e.Get(ParamVolume)
}

// SetVolume sets the master gain, within [0, 1].
func (e *Engine) SetVolume(value float64) error {
	return e.Set(ParamVolume, value)
}

// FilterFrequency returns the base cutoff of the lowpass filter, in Hz.
func (e *Engine) FilterFrequency() float64 {
	return e.Get(ParamFilterFrequency)
}

// SetFilterFrequency sets the base cutoff. Any value is accepted.
func (e *Engine) SetFilterFrequency(value float64) error {
	return e.Set(ParamFilterFrequency, value)
}

// LFOAmount returns the depth of the LFO.
func (e *Engine) LFOAmount() float64 {
	return e.Get(ParamLFOAmount)
}

// SetLFOAmount sets the depth of the LFO.
func (e *Engine) SetLFOAmount(value float64) error {
	return e.Set(ParamLFOAmount, value)
}

// LFOFrequency returns the rate of the LFO, in Hz.
func (e *Engine) LFOFrequency() float64 {
	return e.Get(ParamLFOFrequency)
}

// SetLFOFrequency sets the rate of the LFO.
func (e *Engine) SetLFOFrequency(value float64) error {
	return e.Set(ParamLFOFrequency, value)
}

// OscillatorVolume returns the gain stage level of kind.
func (e *Engine) OscillatorVolume(kind OscillatorKind) float64 {
	return e.Get(kind.Param())
}

// SetOscillatorVolume sets the gain stage level of kind, within [0, 0.25].
func (e *Engine) SetOscillatorVolume(kind OscillatorKind, value float64) error {
	return e.Set(kind.Param(), value)
}

// LFOWaveform returns the waveform of the LFO.
func (e *Engine) LFOWaveform() audio.Waveform {
	return e.mod.lfo.Type()
}

// SetLFOWaveform changes the waveform of the LFO at once.
func (e *Engine) SetLFOWaveform(w audio.Waveform) error {
	if _, err := w.MarshalText(); err != nil {
		return err
	}
	if e.ctx.Closed() {
		return audio.ErrClosed
	}
	e.mod.lfo.SetType(w)
	return nil
}

// LFODestination returns the current LFO destination.
func (e *Engine) LFODestination() Destination {
	return e.mod.destination
}

// SetLFODestination reroutes the LFO. Routing to pitch takes effect from the
// next Play; routing to the filter takes effect at once.
func (e *Engine) SetLFODestination(d Destination) error {
	if !d.valid() {
		return fmt.Errorf("synth: unknown lfo destination %d", int(d))
	}
	if e.ctx.Closed() {
		return audio.ErrClosed
	}
	e.mod.route(d, e.voice)
	return nil
}

// OscWaveform returns the waveform used by the single voicing.
func (e *Engine) OscWaveform() audio.Waveform {
	return e.oscWaveform
}

// SetOscWaveform selects the waveform of the single voicing. It takes effect
// from the next Play.
func (e *Engine) SetOscWaveform(w audio.Waveform) error {
	if _, err := w.MarshalText(); err != nil {
		return err
	}
	e.oscWaveform = w
	return nil
}

// Voicing returns how the next note is voiced.
func (e *Engine) Voicing() Voicing {
	return e.voicing
}

// SetVoicing selects how notes are voiced. It takes effect from the next
// Play.
func (e *Engine) SetVoicing(v Voicing) error {
	if !v.valid() {
		return fmt.Errorf("synth: unknown voicing %d", int(v))
	}
	e.voicing = v
	return nil
}

// SubOscillator reports whether the sine sub is enabled.
func (e *Engine) SubOscillator() bool {
	return e.sub
}

// SetSubOscillator enables the sine sub. It takes effect from the next Play.
func (e *Engine) SetSubOscillator(enabled bool) {
	e.sub = enabled
}
