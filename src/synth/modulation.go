package synth

import (
	"github.com/jinjor/desktop-synth/src/audio"
)

// ----- LFO ----- //

// modulation owns the LFO and keeps its routing consistent. The LFO runs
// for the whole life of the engine, silent when the amount is 0.
type modulation struct {
	lfo         *audio.Oscillator
	gain        *audio.Gain
	filter      *audio.BiquadFilter
	destination Destination
}

func newModulation(ctx *audio.Context, filter *audio.BiquadFilter, c *Config) *modulation {
	lfo := ctx.NewOscillator("lfo")
	lfo.SetType(c.LFOWaveform)
	lfo.Frequency().SetValue(c.LFOFrequency)
	gain := ctx.NewGain("lfoGain")
	gain.Gain().SetValue(c.LFOAmount)
	lfo.Connect(gain)
	if err := lfo.Start(); err != nil {
		panic(err)
	}
	return &modulation{
		lfo:         lfo,
		gain:        gain,
		filter:      filter,
		destination: c.LFODestination,
	}
}

// route points the LFO at dest without trusting the previous routing.
// Switching to pitch only detaches the filter: the sounding voice stays
// unmodulated and the next voice is attached when it starts.
func (m *modulation) route(dest Destination, v *voice) {
	switch dest {
	case DestinationFilterFrequency:
		if v != nil {
			for _, o := range v.oscs {
				m.detach(o)
			}
		}
		m.gain.ConnectParam(m.filter.Frequency())
	case DestinationPitch:
		m.gain.DisconnectParam(m.filter.Frequency())
	}
	m.destination = dest
}

// attach connects the LFO to every oscillator of a voice that is about to
// start, when pitch is the destination.
func (m *modulation) attach(v *voice) {
	if m.destination != DestinationPitch {
		return
	}
	for _, o := range v.oscs {
		m.gain.ConnectParam(o.Frequency())
	}
}

func (m *modulation) detach(o *audio.Oscillator) {
	m.gain.DisconnectParam(o.Frequency())
}

func (m *modulation) off() {
	m.lfo.Stop()
	m.lfo.Disconnect()
	m.gain.Disconnect()
}
