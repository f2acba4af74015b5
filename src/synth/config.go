package synth

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jinjor/desktop-synth/src/audio"
)

// ----- Config ----- //

// Config is the construction-time record of an Engine.
type Config struct {
	Volume            float64           `json:"volume"`
	FilterFrequency   float64           `json:"filterFrequency"`
	LFODestination    Destination       `json:"lfoDestination"`
	LFOAmount         float64           `json:"lfoAmount"`
	LFOFrequency      float64           `json:"lfoFrequency"`
	LFOWaveform       audio.Waveform    `json:"lfoWaveform"`
	Voicing           Voicing           `json:"voicing"`
	OscWaveform       audio.Waveform    `json:"oscWaveform"`
	SubOscillator     bool              `json:"subOscillator"`
	OscillatorVolumes OscillatorVolumes `json:"oscillatorVolumes"`
}

// OscillatorVolumes holds the initial gain of each oscillator stage.
type OscillatorVolumes struct {
	Saw      float64 `json:"saw"`
	Triangle float64 `json:"triangle"`
	Square   float64 `json:"square"`
	Sub      float64 `json:"sub"`
}

func (v *OscillatorVolumes) of(kind OscillatorKind) float64 {
	switch kind {
	case KindSaw:
		return v.Saw
	case KindTriangle:
		return v.Triangle
	case KindSquare:
		return v.Square
	default:
		return v.Sub
	}
}

// DefaultConfig returns the configuration the daemon starts with.
func DefaultConfig() Config {
	return Config{
		Volume:          0.5,
		FilterFrequency: 1000,
		LFODestination:  DestinationFilterFrequency,
		LFOAmount:       0,
		LFOFrequency:    5,
		LFOWaveform:     audio.WaveformSine,
		Voicing:         VoicingBank,
		OscWaveform:     audio.WaveformSawtooth,
		SubOscillator:   false,
		OscillatorVolumes: OscillatorVolumes{
			Saw:      maxOscillatorVolume,
			Triangle: maxOscillatorVolume,
			Square:   maxOscillatorVolume,
			Sub:      maxOscillatorVolume,
		},
	}
}

// LoadConfig reads a JSON file over DefaultConfig. Keys missing from the
// file keep their default.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	bytes, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(bytes, &c); err != nil {
		return c, fmt.Errorf("synth: failed to parse %s: %w", path, err)
	}
	return c, nil
}

func (c *Config) values() [numParams]float64 {
	return [numParams]float64{
		ParamVolume:                   c.Volume,
		ParamFilterFrequency:          c.FilterFrequency,
		ParamLFOAmount:                c.LFOAmount,
		ParamLFOFrequency:             c.LFOFrequency,
		ParamSawOscillatorVolume:      c.OscillatorVolumes.Saw,
		ParamTriangleOscillatorVolume: c.OscillatorVolumes.Triangle,
		ParamSquareOscillatorVolume:   c.OscillatorVolumes.Square,
		ParamSubOscillatorVolume:      c.OscillatorVolumes.Sub,
	}
}

// Validate checks every parameter against its policy. Any refused value
// makes the whole configuration invalid.
func (c *Config) Validate() error {
	for p, value := range c.values() {
		if err := Param(p).check(value); err != nil {
			return fmt.Errorf("synth: invalid config: %w", err)
		}
	}
	if !c.LFODestination.valid() {
		return fmt.Errorf("synth: invalid config: unknown lfo destination %d", int(c.LFODestination))
	}
	if !c.Voicing.valid() {
		return fmt.Errorf("synth: invalid config: unknown voicing %d", int(c.Voicing))
	}
	if _, err := c.LFOWaveform.MarshalText(); err != nil {
		return fmt.Errorf("synth: invalid config: %w", err)
	}
	if _, err := c.OscWaveform.MarshalText(); err != nil {
		return fmt.Errorf("synth: invalid config: %w", err)
	}
	return nil
}
