package synth

import (
	"errors"
	"fmt"
	"math"

	"github.com/jinjor/desktop-synth/src/audio"
)

// ErrOutOfRange is wrapped by every range violation.
var ErrOutOfRange = errors.New("out of range")

// RangeError reports a value refused by a validated parameter.
type RangeError struct {
	Param Param
	Value float64
	Min   float64
	Max   float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("synth: %v=%v: %v [%v, %v]", e.Param, e.Value, ErrOutOfRange, e.Min, e.Max)
}

func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}

// ----- Param ----- //

// Param names a numeric parameter of the Engine.
type Param int

const (
	ParamVolume Param = iota
	ParamFilterFrequency
	ParamLFOAmount
	ParamLFOFrequency
	ParamSawOscillatorVolume
	ParamTriangleOscillatorVolume
	ParamSquareOscillatorVolume
	ParamSubOscillatorVolume
	numParams
)

type policy int

const (
	// passThrough applies any value; the range is advisory for callers.
	passThrough policy = iota
	// reject refuses values outside the range and keeps the previous value.
	reject
)

type paramSpec struct {
	name     string
	min, max float64
	policy   policy
}

var paramSpecs = [numParams]paramSpec{
	ParamVolume:                   {"volume", 0, 1, reject},
	ParamFilterFrequency:          {"filterFrequency", 0, audio.SampleRate / 2, passThrough},
	ParamLFOAmount:                {"lfoAmount", 0, 100, passThrough},
	ParamLFOFrequency:             {"lfoFrequency", 0.1, 100, passThrough},
	ParamSawOscillatorVolume:      {"sawOscillatorVolume", 0, maxOscillatorVolume, reject},
	ParamTriangleOscillatorVolume: {"triangleOscillatorVolume", 0, maxOscillatorVolume, reject},
	ParamSquareOscillatorVolume:   {"squareOscillatorVolume", 0, maxOscillatorVolume, reject},
	ParamSubOscillatorVolume:      {"subOscillatorVolume", 0, maxOscillatorVolume, reject},
}

const maxOscillatorVolume = 0.25

// ParseParam returns the parameter with the given name.
func ParseParam(s string) (Param, error) {
	for i, spec := range paramSpecs {
		if spec.name == s {
			return Param(i), nil
		}
	}
	return 0, fmt.Errorf("synth: unknown parameter %q", s)
}

func (p Param) String() string {
	if p < 0 || p >= numParams {
		return fmt.Sprintf("Param(%d)", int(p))
	}
	return paramSpecs[p].name
}

// Range returns the documented range of the parameter.
func (p Param) Range() (min, max float64) {
	spec := paramSpecs[p]
	return spec.min, spec.max
}

// Validated reports whether out-of-range values are refused.
func (p Param) Validated() bool {
	return paramSpecs[p].policy == reject
}

func (p Param) check(value float64) error {
	if p < 0 || p >= numParams {
		return fmt.Errorf("synth: unknown parameter %d", int(p))
	}
	spec := paramSpecs[p]
	if spec.policy == passThrough {
		return nil
	}
	if math.IsNaN(value) || value < spec.min || value > spec.max {
		return &RangeError{Param: p, Value: value, Min: spec.min, Max: spec.max}
	}
	return nil
}

// ----- Oscillator Kind ----- //

// OscillatorKind identifies one oscillator of the bank.
type OscillatorKind int

const (
	KindSaw OscillatorKind = iota
	KindTriangle
	KindSquare
	KindSub
	numKinds
)

var kindNames = [numKinds]string{"saw", "triangle", "square", "sub"}

var kindWaveforms = [numKinds]audio.Waveform{
	KindSaw:      audio.WaveformSawtooth,
	KindTriangle: audio.WaveformTriangle,
	KindSquare:   audio.WaveformSquare,
	KindSub:      audio.WaveformSine,
}

var kindParams = [numKinds]Param{
	KindSaw:      ParamSawOscillatorVolume,
	KindTriangle: ParamTriangleOscillatorVolume,
	KindSquare:   ParamSquareOscillatorVolume,
	KindSub:      ParamSubOscillatorVolume,
}

func (k OscillatorKind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("OscillatorKind(%d)", int(k))
	}
	return kindNames[k]
}

// Param returns the volume parameter of the kind's gain stage.
func (k OscillatorKind) Param() Param {
	return kindParams[k]
}
