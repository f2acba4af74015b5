package control

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/jinjor/desktop-synth/src/audio"
	"github.com/jinjor/desktop-synth/src/synth"
)

// DefaultOctave is the octave the keyboard starts at.
const DefaultOctave = 3

type key struct {
	note   synth.Note
	octave int
}

// ----- Controller ----- //

// Controller translates commands into Engine calls. It plays the part of
// the user interface: it debounces held keys and owns the octave selector.
// Like the Engine, it must be driven from a single goroutine.
type Controller struct {
	engine *synth.Engine
	octave int
	held   map[key]struct{}
}

// NewController returns a Controller with the octave selector at octave,
// clamped to the playable range.
func NewController(engine *synth.Engine, octave int) *Controller {
	return &Controller{
		engine: engine,
		octave: clampOctave(octave),
		held:   make(map[key]struct{}),
	}
}

func clampOctave(octave int) int {
	if octave < synth.MinOctave {
		return synth.MinOctave
	}
	if octave > synth.MaxOctave {
		return synth.MaxOctave
	}
	return octave
}

// Octave returns the selected octave.
func (c *Controller) Octave() int {
	return c.octave
}

// SetOctave moves the octave selector, clamped to [1, 7]. Notes already
// sounding are not affected.
func (c *Controller) SetOctave(octave int) {
	c.octave = clampOctave(octave)
}

// KeyDown plays note at the selected octave unless the key is already held.
func (c *Controller) KeyDown(note synth.Note) error {
	return c.press(key{note, c.octave})
}

// KeyUp releases the key and stops the sound.
func (c *Controller) KeyUp(note synth.Note) {
	for k := range c.held {
		if k.note == note {
			delete(c.held, k)
		}
	}
	c.engine.Stop()
}

// NoteOn plays note at octave unless it is already held.
func (c *Controller) NoteOn(note synth.Note, octave int) error {
	return c.press(key{note, octave})
}

// NoteOff releases the key. The sound stops only when the released key is
// the note currently playing.
func (c *Controller) NoteOff(note synth.Note, octave int) {
	delete(c.held, key{note, octave})
	if playing, playingOctave, ok := c.engine.Playing(); ok && playing == note && playingOctave == octave {
		c.engine.Stop()
	}
}

func (c *Controller) press(k key) error {
	if _, ok := c.held[k]; ok {
		return nil
	}
	if err := c.engine.Play(k.note, k.octave); err != nil {
		return err
	}
	c.held[k] = struct{}{}
	return nil
}

// Panic forgets every held key and stops the sound. It is what a window
// losing focus triggers.
func (c *Controller) Panic() {
	c.held = make(map[key]struct{})
	c.engine.Stop()
}

// ----- Commands ----- //

// Apply runs one command and returns the reply to send back, if any.
func (c *Controller) Apply(command []string) (string, error) {
	if len(command) == 0 {
		return "", errors.New("control: empty command")
	}
	args := command[1:]
	switch command[0] {
	case "play":
		if len(args) != 2 {
			return "", fmt.Errorf("control: usage: play <note> <octave>")
		}
		note, octave, err := parseNoteOctave(args[0], args[1])
		if err != nil {
			return "", err
		}
		return "", c.engine.Play(note, octave)
	case "stop":
		c.engine.Stop()
	case "panic":
		c.Panic()
	case "off":
		c.held = make(map[key]struct{})
		return "", c.engine.Off()
	case "key_down", "key_up":
		if len(args) != 1 {
			return "", fmt.Errorf("control: usage: %s <note>", command[0])
		}
		note, err := synth.ParseNote(args[0])
		if err != nil {
			return "", err
		}
		if command[0] == "key_up" {
			c.KeyUp(note)
			return "", nil
		}
		return "", c.KeyDown(note)
	case "note_on", "note_off":
		if len(args) != 2 {
			return "", fmt.Errorf("control: usage: %s <note> <octave>", command[0])
		}
		note, octave, err := parseNoteOctave(args[0], args[1])
		if err != nil {
			return "", err
		}
		if command[0] == "note_off" {
			c.NoteOff(note, octave)
			return "", nil
		}
		return "", c.NoteOn(note, octave)
	case "octave_up":
		c.SetOctave(c.octave + 1)
		return "octave " + strconv.Itoa(c.octave), nil
	case "octave_down":
		c.SetOctave(c.octave - 1)
		return "octave " + strconv.Itoa(c.octave), nil
	case "set":
		if len(args) != 2 {
			return "", fmt.Errorf("invalid key-value pair %v", args)
		}
		return "", c.set(args[0], args[1])
	case "get":
		if len(args) != 1 {
			return "", fmt.Errorf("control: usage: get <param>")
		}
		value, err := c.get(args[0])
		if err != nil {
			return "", err
		}
		return Format(args[0], value), nil
	case "graph":
		return Format(append([]string{"graph"}, c.engine.Connections()...)...), nil
	case "peak":
		return "peak " + strconv.FormatFloat(c.engine.Peak(), 'f', 6, 64), nil
	case "spectrum":
		return FormatSpectrum(c.engine.Spectrum()), nil
	default:
		return "", fmt.Errorf("unknown command %v", command[0])
	}
	return "", nil
}

func parseNoteOctave(noteStr string, octaveStr string) (synth.Note, int, error) {
	note, err := synth.ParseNote(noteStr)
	if err != nil {
		return 0, 0, err
	}
	octave, err := strconv.Atoi(octaveStr)
	if err != nil {
		return 0, 0, fmt.Errorf("control: invalid octave %q", octaveStr)
	}
	return note, octave, nil
}

func (c *Controller) set(name string, value string) error {
	e := c.engine
	switch name {
	case "lfoWaveform":
		w, err := audio.ParseWaveform(value)
		if err != nil {
			return err
		}
		return e.SetLFOWaveform(w)
	case "oscWaveform":
		w, err := audio.ParseWaveform(value)
		if err != nil {
			return err
		}
		return e.SetOscWaveform(w)
	case "lfoDestination":
		d, err := synth.ParseDestination(value)
		if err != nil {
			return err
		}
		return e.SetLFODestination(d)
	case "voicing":
		v, err := synth.ParseVoicing(value)
		if err != nil {
			return err
		}
		return e.SetVoicing(v)
	case "subOscillator":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		e.SetSubOscillator(enabled)
		return nil
	}
	p, err := synth.ParseParam(name)
	if err != nil {
		return err
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	if err := e.Set(p, v); err != nil {
		return err
	}
	log.Printf("%v = %v", p, v)
	return nil
}

func (c *Controller) get(name string) (string, error) {
	e := c.engine
	switch name {
	case "lfoWaveform":
		return e.LFOWaveform().String(), nil
	case "oscWaveform":
		return e.OscWaveform().String(), nil
	case "lfoDestination":
		return e.LFODestination().String(), nil
	case "voicing":
		return e.Voicing().String(), nil
	case "subOscillator":
		return strconv.FormatBool(e.SubOscillator()), nil
	case "octave":
		return strconv.Itoa(c.octave), nil
	}
	p, err := synth.ParseParam(name)
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(e.Get(p), 'g', -1, 64), nil
}
