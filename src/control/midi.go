package control

import (
	"log"
	"strconv"

	"github.com/jinjor/desktop-synth/src/synth"
)

// FromMIDI converts a raw MIDI message into a note_on or note_off command.
// Other messages, and notes outside the keyboard, are dropped.
func FromMIDI(data []byte) ([]string, bool) {
	if len(data) < 3 {
		return nil, false
	}
	var name string
	if data[0]>>4 == 8 || data[0]>>4 == 9 && data[2] == 0 {
		name = "note_off"
	} else if data[0]>>4 == 9 && data[2] > 0 {
		name = "note_on"
	} else {
		return nil, false
	}
	number := int(data[1])
	note := synth.Note(number % 12)
	octave := number/12 - 1
	if octave < synth.MinOctave || octave > synth.MaxOctave {
		log.Printf("ignored %s: note number %d is out of the keyboard\n", name, number)
		return nil, false
	}
	return []string{name, note.String(), strconv.Itoa(octave)}, true
}
