package synth

import (
	"github.com/jinjor/desktop-synth/src/audio"
)

// ----- Voice ----- //

// voice is the set of oscillators sounding for one note.
type voice struct {
	note   Note
	octave int
	oscs   []*audio.Oscillator
}

type voicePart struct {
	name   string
	kind   audio.Waveform
	freq   float64
	target audio.Node
}

// voiceParts resolves the oscillators a note is made of. It fails before
// anything is touched when the note is not in the table.
func (e *Engine) voiceParts(note Note, octave int) ([]voicePart, error) {
	freq, err := Frequency(note, octave)
	if err != nil {
		return nil, err
	}
	if e.voicing == VoicingSingle {
		return []voicePart{{name: "osc", kind: e.oscWaveform, freq: freq, target: e.filter}}, nil
	}
	parts := make([]voicePart, 0, numKinds)
	for kind := KindSaw; kind < KindSub; kind++ {
		parts = append(parts, voicePart{
			name:   kind.String(),
			kind:   kindWaveforms[kind],
			freq:   freq,
			target: e.stages[kind],
		})
	}
	if e.sub {
		subFreq, err := Frequency(note, subOctave(octave))
		if err != nil {
			return nil, err
		}
		parts = append(parts, voicePart{
			name:   KindSub.String(),
			kind:   kindWaveforms[KindSub],
			freq:   subFreq,
			target: e.stages[KindSub],
		})
	}
	return parts, nil
}

func (e *Engine) startVoice(note Note, octave int, parts []voicePart) *voice {
	v := &voice{note: note, octave: octave}
	for _, p := range parts {
		o := e.ctx.NewOscillator(p.name)
		o.SetType(p.kind)
		o.Frequency().SetValue(p.freq)
		o.Connect(p.target)
		v.oscs = append(v.oscs, o)
	}
	e.mod.attach(v)
	for _, o := range v.oscs {
		if err := o.Start(); err != nil {
			panic(err)
		}
	}
	return v
}

// stop halts the voice and removes every edge touching its oscillators.
func (v *voice) stop(m *modulation) {
	for _, o := range v.oscs {
		o.Stop()
		m.detach(o)
		o.Disconnect()
	}
}
