package synth

import "fmt"

// ----- Destination ----- //

// Destination is where the LFO output is routed.
type Destination int

const (
	DestinationFilterFrequency Destination = iota
	DestinationPitch
)

var destinationNames = [...]string{
	DestinationFilterFrequency: "filterFrequency",
	DestinationPitch:           "pitch",
}

// ParseDestination returns the destination with the given name.
func ParseDestination(s string) (Destination, error) {
	for i, name := range destinationNames {
		if name == s {
			return Destination(i), nil
		}
	}
	return DestinationFilterFrequency, fmt.Errorf("synth: unknown lfo destination %q", s)
}

func (d Destination) valid() bool {
	return d >= 0 && int(d) < len(destinationNames)
}

func (d Destination) String() string {
	if !d.valid() {
		return fmt.Sprintf("Destination(%d)", int(d))
	}
	return destinationNames[d]
}

// MarshalText implements encoding.TextMarshaler.
func (d Destination) MarshalText() ([]byte, error) {
	if !d.valid() {
		return nil, fmt.Errorf("synth: unknown lfo destination %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Destination) UnmarshalText(text []byte) error {
	v, err := ParseDestination(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ----- Voicing ----- //

// Voicing selects which oscillators a note is made of.
type Voicing int

const (
	// VoicingBank plays sawtooth, triangle and square together, each through
	// its own gain stage, plus the sine sub when enabled.
	VoicingBank Voicing = iota
	// VoicingSingle plays one oscillator of the selected waveform.
	VoicingSingle
)

var voicingNames = [...]string{
	VoicingBank:   "bank",
	VoicingSingle: "single",
}

// ParseVoicing returns the voicing with the given name.
func ParseVoicing(s string) (Voicing, error) {
	for i, name := range voicingNames {
		if name == s {
			return Voicing(i), nil
		}
	}
	return VoicingBank, fmt.Errorf("synth: unknown voicing %q", s)
}

func (v Voicing) valid() bool {
	return v >= 0 && int(v) < len(voicingNames)
}

func (v Voicing) String() string {
	if !v.valid() {
		return fmt.Sprintf("Voicing(%d)", int(v))
	}
	return voicingNames[v]
}

// MarshalText implements encoding.TextMarshaler.
func (v Voicing) MarshalText() ([]byte, error) {
	if !v.valid() {
		return nil, fmt.Errorf("synth: unknown voicing %d", int(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Voicing) UnmarshalText(text []byte) error {
	parsed, err := ParseVoicing(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
