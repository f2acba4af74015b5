package synth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ----- Note ----- //

// Note is one of the 12 chromatic pitch classes.
type Note int

const (
	C Note = iota
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
)

const (
	MinOctave = 1
	MaxOctave = 7
)

// ErrUnknownNote is returned for a note name outside the chromatic scale.
var ErrUnknownNote = errors.New("synth: unknown note")

var noteNames = [...]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// ParseNote returns the note with the given name, e.g. "C#".
func ParseNote(s string) (Note, error) {
	for i, name := range noteNames {
		if name == s {
			return Note(i), nil
		}
	}
	return C, fmt.Errorf("%w: %q", ErrUnknownNote, s)
}

// ParsePitch parses a note followed by its octave, e.g. "A4" or "C#3".
func ParsePitch(s string) (Note, int, error) {
	i := strings.IndexAny(s, "0123456789-")
	if i <= 0 {
		return C, 0, fmt.Errorf("synth: invalid pitch %q", s)
	}
	note, err := ParseNote(s[:i])
	if err != nil {
		return C, 0, err
	}
	octave, err := strconv.Atoi(s[i:])
	if err != nil {
		return C, 0, fmt.Errorf("synth: invalid pitch %q: %v", s, err)
	}
	return note, octave, nil
}

func (n Note) String() string {
	if n < 0 || int(n) >= len(noteNames) {
		return fmt.Sprintf("Note(%d)", int(n))
	}
	return noteNames[n]
}

// ----- Frequency Table ----- //

// Equal tempered, A4 = 440 Hz, rounded to 2 decimals. Indexed by note, then octave-1.
var keyboardFrequencies = [12][7]float64{
	C:      {32.70, 65.41, 130.81, 261.63, 523.25, 1046.50, 2093.00},
	CSharp: {34.65, 69.30, 138.59, 277.18, 554.37, 1108.73, 2217.50},
	D:      {36.71, 73.42, 146.83, 293.66, 587.33, 1174.66, 2349.32},
	DSharp: {38.89, 77.78, 155.56, 311.13, 622.25, 1244.51, 2489.02},
	E:      {41.20, 82.41, 164.81, 329.63, 659.25, 1318.51, 2637.02},
	F:      {43.65, 87.31, 174.61, 349.23, 698.46, 1396.91, 2793.83},
	FSharp: {46.25, 92.50, 185.00, 369.99, 739.99, 1479.98, 2959.96},
	G:      {49.00, 98.00, 196.00, 392.00, 783.99, 1567.98, 3135.97},
	GSharp: {51.90, 103.83, 207.65, 415.30, 830.61, 1661.22, 3322.44},
	A:      {55.00, 110.00, 220.00, 440.00, 880.00, 1760.00, 3520.00},
	ASharp: {58.27, 116.54, 233.08, 466.16, 932.33, 1864.66, 3729.31},
	B:      {61.74, 123.47, 246.94, 493.88, 987.77, 1975.53, 3951.07},
}

// Frequency looks up the frequency of note in octave, in Hz.
func Frequency(note Note, octave int) (float64, error) {
	if note < C || note > B {
		return 0, fmt.Errorf("%w: %v", ErrUnknownNote, note)
	}
	if octave < MinOctave || octave > MaxOctave {
		return 0, fmt.Errorf("synth: octave %d: %w [%d, %d]", octave, ErrOutOfRange, MinOctave, MaxOctave)
	}
	return keyboardFrequencies[note][octave-1], nil
}

// subOctave is the octave the sub oscillator plays at for a note in octave.
// It is one octave down, except at the ends of the table where it stays put.
func subOctave(octave int) int {
	if octave <= MinOctave || octave >= MaxOctave {
		return octave
	}
	return octave - 1
}
