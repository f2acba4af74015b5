package control

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/jinjor/desktop-synth/src/audio"
	"github.com/jinjor/desktop-synth/src/synth"
)

func expectNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("expected no error, but got: %v", err)
	}
}

func newTestController(t *testing.T) (*Controller, *synth.Engine) {
	t.Helper()
	e, err := synth.New(synth.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return NewController(e, DefaultOctave), e
}

func apply(t *testing.T, c *Controller, line string) string {
	t.Helper()
	command, err := Parse(line)
	expectNoError(t, err)
	reply, err := c.Apply(command)
	expectNoError(t, err)
	return reply
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func expectPlaying(t *testing.T, e *synth.Engine, note synth.Note, octave int) {
	t.Helper()
	n, o, ok := e.Playing()
	if !ok || n != note || o != octave {
		t.Errorf("expected %v%d to be playing, but got %v%d (%v)", note, octave, n, o, ok)
	}
}

func expectSilent(t *testing.T, e *synth.Engine) {
	t.Helper()
	if n, o, ok := e.Playing(); ok {
		t.Errorf("expected no note, but got %v%d", n, o)
	}
}

func TestParse(t *testing.T) {
	command, err := Parse("set lfoDestination pitch\n")
	expectNoError(t, err)
	if !reflect.DeepEqual(command, []string{"set", "lfoDestination", "pitch"}) {
		t.Errorf("unexpected command: %q", command)
	}
	command, err = Parse("play C%23 3")
	expectNoError(t, err)
	if command[1] != "C#" {
		t.Errorf("expected C#, but got %q", command[1])
	}
	if _, err := Parse("play %zz 3"); err == nil {
		t.Errorf("expected an error for a malformed token")
	}
	if _, err := Parse(""); err == nil {
		t.Errorf("expected an error for an empty line")
	}
	if line := Format("volume", "C#"); line != "volume C%23" {
		t.Errorf("unexpected line: %q", line)
	}
}

func TestPlayAndStop(t *testing.T) {
	c, e := newTestController(t)
	apply(t, c, "play C%23 3")
	expectPlaying(t, e, synth.CSharp, 3)
	apply(t, c, "stop")
	expectSilent(t, e)

	if _, err := c.Apply([]string{"play", "C", "9"}); !errors.Is(err, synth.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, but got %v", err)
	}
	if _, err := c.Apply([]string{"play", "C"}); err == nil {
		t.Errorf("expected a usage error")
	}
	if _, err := c.Apply([]string{"jump"}); err == nil {
		t.Errorf("expected an unknown command error")
	}
}

func TestHeldKeyDoesNotRetrigger(t *testing.T) {
	c, e := newTestController(t)
	expectNoError(t, c.KeyDown(synth.A))
	expectNoError(t, c.KeyDown(synth.E))
	expectPlaying(t, e, synth.E, DefaultOctave)
	// key repeat of the first key
	expectNoError(t, c.KeyDown(synth.A))
	expectNoError(t, c.KeyDown(synth.A))
	expectPlaying(t, e, synth.E, DefaultOctave)
	c.KeyUp(synth.A)
	expectSilent(t, e)
	expectNoError(t, c.KeyDown(synth.A))
	expectPlaying(t, e, synth.A, DefaultOctave)
}

func TestKeyUpStopsUnconditionally(t *testing.T) {
	c, e := newTestController(t)
	apply(t, c, "key_down C")
	apply(t, c, "key_down E")
	expectPlaying(t, e, synth.E, DefaultOctave)
	apply(t, c, "key_up C")
	expectSilent(t, e)
}

func TestNoteOffOnlyStopsSoundingNote(t *testing.T) {
	c, e := newTestController(t)
	apply(t, c, "note_on C 3")
	apply(t, c, "note_on E 3")
	apply(t, c, "note_off C 3")
	expectPlaying(t, e, synth.E, 3)
	apply(t, c, "note_off E 3")
	expectSilent(t, e)
}

func TestOctaveSelectorClamps(t *testing.T) {
	c, e := newTestController(t)
	for i := 0; i < 10; i++ {
		apply(t, c, "octave_up")
	}
	if c.Octave() != synth.MaxOctave {
		t.Errorf("expected octave %d, but got %d", synth.MaxOctave, c.Octave())
	}
	apply(t, c, "key_down B")
	expectPlaying(t, e, synth.B, 7)
	for i := 0; i < 10; i++ {
		apply(t, c, "octave_down")
	}
	if reply := apply(t, c, "octave_down"); reply != "octave 1" {
		t.Errorf("unexpected reply: %q", reply)
	}
	if NewController(e, 0).Octave() != synth.MinOctave {
		t.Errorf("expected the initial octave to be clamped")
	}
}

func TestPanic(t *testing.T) {
	c, e := newTestController(t)
	apply(t, c, "key_down G")
	apply(t, c, "panic")
	expectSilent(t, e)
	apply(t, c, "key_down G")
	expectPlaying(t, e, synth.G, DefaultOctave)
}

func TestSetAndGet(t *testing.T) {
	c, e := newTestController(t)
	apply(t, c, "set volume 0.25")
	if reply := apply(t, c, "get volume"); reply != "volume 0.25" {
		t.Errorf("unexpected reply: %q", reply)
	}
	apply(t, c, "set lfoDestination pitch")
	if e.LFODestination() != synth.DestinationPitch {
		t.Errorf("expected pitch, but got %v", e.LFODestination())
	}
	apply(t, c, "set lfoWaveform square")
	if e.LFOWaveform() != audio.WaveformSquare {
		t.Errorf("expected square, but got %v", e.LFOWaveform())
	}
	apply(t, c, "set voicing single")
	apply(t, c, "set oscWaveform triangle")
	apply(t, c, "set subOscillator true")
	if reply := apply(t, c, "get oscWaveform"); reply != "oscWaveform triangle" {
		t.Errorf("unexpected reply: %q", reply)
	}
	apply(t, c, "play C 4")
	graph, err := Parse(apply(t, c, "graph"))
	expectNoError(t, err)
	if graph[0] != "graph" || !contains(graph[1:], "osc -> filter") {
		t.Errorf("expected a single oscillator in the graph: %q", graph)
	}

	_, err = c.Apply([]string{"set", "squareOscillatorVolume", "0.3"})
	if !errors.Is(err, synth.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, but got %v", err)
	}
	if reply := apply(t, c, "get squareOscillatorVolume"); reply != "squareOscillatorVolume 0.25" {
		t.Errorf("unexpected reply: %q", reply)
	}
	for _, command := range [][]string{
		{"set", "resonance", "1"},
		{"set", "volume", "loud"},
		{"set", "lfoDestination", "volume"},
		{"set", "volume"},
		{"get", "resonance"},
	} {
		if _, err := c.Apply(command); err == nil {
			t.Errorf("%q: expected an error", command)
		}
	}
}

func TestReports(t *testing.T) {
	c, _ := newTestController(t)
	apply(t, c, "play A 4")
	if reply := apply(t, c, "peak"); !strings.HasPrefix(reply, "peak ") {
		t.Errorf("unexpected reply: %q", reply)
	}
	tokens := strings.Split(apply(t, c, "spectrum"), " ")
	if tokens[0] != "spectrum" || len(tokens) != 1025 {
		t.Errorf("expected 1024 bins, but got %d", len(tokens)-1)
	}
}

func TestOff(t *testing.T) {
	c, e := newTestController(t)
	apply(t, c, "key_down D")
	apply(t, c, "off")
	if !e.Closed() {
		t.Errorf("expected the engine to be closed")
	}
	if _, err := c.Apply([]string{"off"}); !errors.Is(err, audio.ErrClosed) {
		t.Errorf("expected ErrClosed, but got %v", err)
	}
	apply(t, c, "stop")
	apply(t, c, "panic")
}

func TestFromMIDI(t *testing.T) {
	cases := []struct {
		data     []byte
		expected []string
	}{
		{[]byte{0x90, 69, 100}, []string{"note_on", "A", "4"}},
		{[]byte{0x93, 61, 1}, []string{"note_on", "C#", "4"}},
		{[]byte{0x80, 24, 0}, []string{"note_off", "C", "1"}},
		{[]byte{0x90, 107, 0}, []string{"note_off", "B", "7"}},
	}
	for _, c := range cases {
		command, ok := FromMIDI(c.data)
		if !ok || !reflect.DeepEqual(command, c.expected) {
			t.Errorf("%v: expected %q, but got %q (%v)", c.data, c.expected, command, ok)
		}
	}
	for _, data := range [][]byte{
		{0x90, 23, 100},  // B0
		{0x90, 108, 100}, // C8
		{0xB0, 7, 100},
		{0x90, 60},
	} {
		if command, ok := FromMIDI(data); ok {
			t.Errorf("%v: expected to be dropped, but got %q", data, command)
		}
	}
}
