package synth

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jinjor/desktop-synth/src/audio"
)

func expectNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("expected no error, but got: %v", err)
	}
}

func newTestEngine(t *testing.T, c Config) *Engine {
	t.Helper()
	e, err := New(c, nil)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return e
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// upwardCrossings counts the periods of a signal.
func upwardCrossings(values []float64) int {
	n := 0
	for i := 1; i < len(values); i++ {
		if values[i-1] < 0 && values[i] >= 0 {
			n++
		}
	}
	return n
}

func TestInitialGraph(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	expected := []string{
		"filter -> master",
		"lfo -> lfoGain",
		"lfoGain -> filter.frequency",
		"master -> destination",
		"sawGain -> filter",
		"squareGain -> filter",
		"subGain -> filter",
		"triangleGain -> filter",
	}
	if actual := e.Connections(); !reflect.DeepEqual(actual, expected) {
		t.Errorf("expected %q, but got %q", expected, actual)
	}
}

func TestInitialGraphWithPitchDestination(t *testing.T) {
	c := DefaultConfig()
	c.LFODestination = DestinationPitch
	e := newTestEngine(t, c)
	if contains(e.Connections(), "lfoGain -> filter.frequency") {
		t.Errorf("lfo should not modulate the filter: %q", e.Connections())
	}
}

func TestPlayAndStopRestoreGraph(t *testing.T) {
	for _, dest := range []Destination{DestinationFilterFrequency, DestinationPitch} {
		c := DefaultConfig()
		c.LFODestination = dest
		c.SubOscillator = true
		e := newTestEngine(t, c)
		before := e.Connections()
		for note := C; note <= B; note++ {
			for octave := MinOctave; octave <= MaxOctave; octave++ {
				expectNoError(t, e.Play(note, octave))
				e.Stop()
				if actual := e.Connections(); !reflect.DeepEqual(actual, before) {
					t.Fatalf("%v: %v%d: expected %q, but got %q", dest, note, octave, before, actual)
				}
			}
		}
	}
}

func TestPlayConnectsBank(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	expectNoError(t, e.Play(C, 4))
	connections := e.Connections()
	for _, s := range []string{"saw -> sawGain", "triangle -> triangleGain", "square -> squareGain"} {
		if !contains(connections, s) {
			t.Errorf("expected %q in %q", s, connections)
		}
	}
	if contains(connections, "sub -> subGain") {
		t.Errorf("sub oscillator should be disabled: %q", connections)
	}
	for _, o := range e.voice.oscs {
		if o.Frequency().Value() != 261.63 {
			t.Errorf("%s: expected 261.63, but got %v", o.Name(), o.Frequency().Value())
		}
	}
}

func TestSubOscillatorFrequency(t *testing.T) {
	c := DefaultConfig()
	c.SubOscillator = true
	e := newTestEngine(t, c)
	cases := []struct {
		note     Note
		octave   int
		expected float64
	}{
		{C, 1, 32.70},
		{C, 4, 130.81},
		{C, 7, 2093},
		{A, 5, 440},
	}
	for _, cs := range cases {
		expectNoError(t, e.Play(cs.note, cs.octave))
		var sub *audio.Oscillator
		for _, o := range e.voice.oscs {
			if o.Name() == "sub" {
				sub = o
			}
		}
		if sub == nil {
			t.Fatalf("sub oscillator not found")
		}
		if sub.Type() != audio.WaveformSine {
			t.Errorf("expected sine sub, but got %v", sub.Type())
		}
		if f := sub.Frequency().Value(); f != cs.expected {
			t.Errorf("%v%d: expected sub at %v, but got %v", cs.note, cs.octave, cs.expected, f)
		}
	}
}

func TestPlayUnknownNoteKeepsCurrentNote(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	expectNoError(t, e.Play(E, 3))
	before := e.Connections()
	if err := e.Play(E, 8); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, but got %v", err)
	}
	if note, octave, ok := e.Playing(); !ok || note != E || octave != 3 {
		t.Errorf("expected E3 to keep playing, but got %v%d (%v)", note, octave, ok)
	}
	if actual := e.Connections(); !reflect.DeepEqual(actual, before) {
		t.Errorf("expected %q, but got %q", before, actual)
	}
}

func TestStopWithoutNote(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	before := e.Connections()
	e.Stop()
	e.Stop()
	if actual := e.Connections(); !reflect.DeepEqual(actual, before) {
		t.Errorf("expected %q, but got %q", before, actual)
	}
}

func TestSingleVoicingPitch(t *testing.T) {
	c := DefaultConfig()
	c.Voicing = VoicingSingle
	c.OscWaveform = audio.WaveformSine
	c.FilterFrequency = 10000
	e := newTestEngine(t, c)
	expectNoError(t, e.Play(A, 4))
	if !contains(e.Connections(), "osc -> filter") {
		t.Errorf("expected a single oscillator: %q", e.Connections())
	}
	e.Render(4800)
	n := upwardCrossings(e.Render(audio.SampleRate))
	if n < 438 || 442 < n {
		t.Errorf("expected about 440 periods, but got %d", n)
	}
}

func TestPitchRoutingIsLazy(t *testing.T) {
	c := DefaultConfig()
	c.LFOAmount = 10
	e := newTestEngine(t, c)
	expectNoError(t, e.Play(C, 4))
	expectNoError(t, e.SetLFODestination(DestinationPitch))

	connections := e.Connections()
	for _, s := range connections {
		if strings.HasPrefix(s, "lfoGain -> ") {
			t.Errorf("lfo should be detached until the next note: %q", connections)
		}
	}

	expectNoError(t, e.Play(D, 4))
	connections = e.Connections()
	for _, s := range []string{"lfoGain -> saw.frequency", "lfoGain -> triangle.frequency", "lfoGain -> square.frequency"} {
		if !contains(connections, s) {
			t.Errorf("expected %q in %q", s, connections)
		}
	}
}

func TestDestinationToggleNeverDoubleRoutes(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	sequence := []Destination{
		DestinationPitch, DestinationFilterFrequency, DestinationFilterFrequency,
		DestinationPitch, DestinationPitch, DestinationFilterFrequency,
	}
	for i, dest := range sequence {
		expectNoError(t, e.Play(Note(i), 4))
		expectNoError(t, e.SetLFODestination(dest))
		expectNoError(t, e.Play(Note(i+1), 4))
		toFilter, toPitch := 0, 0
		for _, s := range e.Connections() {
			switch {
			case s == "lfoGain -> filter.frequency":
				toFilter++
			case strings.HasPrefix(s, "lfoGain -> "):
				toPitch++
			}
		}
		if toFilter > 0 && toPitch > 0 {
			t.Fatalf("step %d: lfo routed to both destinations: %q", i, e.Connections())
		}
		if dest == DestinationFilterFrequency && toFilter != 1 {
			t.Fatalf("step %d: expected lfo on the filter: %q", i, e.Connections())
		}
		if dest == DestinationPitch && toPitch != 3 {
			t.Fatalf("step %d: expected lfo on 3 oscillators: %q", i, e.Connections())
		}
		if e.LFODestination() != dest {
			t.Errorf("step %d: expected %v, but got %v", i, dest, e.LFODestination())
		}
	}
	if err := e.SetLFODestination(Destination(5)); err == nil {
		t.Errorf("expected an error for an unknown destination")
	}
}

func TestSetRejectsOutOfRange(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	expectNoError(t, e.SetOscillatorVolume(KindSaw, 0.1))

	err := e.SetOscillatorVolume(KindSaw, 0.3)
	var rangeErr *RangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected *RangeError, but got %v", err)
	}
	if rangeErr.Param != ParamSawOscillatorVolume || rangeErr.Max != 0.25 {
		t.Errorf("unexpected error: %v", rangeErr)
	}
	if v := e.OscillatorVolume(KindSaw); v != 0.1 {
		t.Errorf("expected 0.1 to be kept, but got %v", v)
	}

	if err := e.SetVolume(1.5); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, but got %v", err)
	}
	if err := e.SetVolume(math.NaN()); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, but got %v", err)
	}
	if v := e.Volume(); v != 0.5 {
		t.Errorf("expected 0.5 to be kept, but got %v", v)
	}
}

func TestSetPassThrough(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	cases := []struct {
		p     Param
		value float64
	}{
		{ParamFilterFrequency, 30000},
		{ParamLFOAmount, 250},
		{ParamLFOFrequency, 0.01},
	}
	for _, c := range cases {
		expectNoError(t, e.Set(c.p, c.value))
		if v := e.Get(c.p); v != c.value {
			t.Errorf("%v: expected %v, but got %v", c.p, c.value, v)
		}
	}
	expectNoError(t, e.SetLFOWaveform(audio.WaveformSquare))
	if e.LFOWaveform() != audio.WaveformSquare {
		t.Errorf("expected square, but got %v", e.LFOWaveform())
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	c := DefaultConfig()
	c.OscillatorVolumes.Triangle = 0.5
	if _, err := New(c, nil); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, but got %v", err)
	}
	c = DefaultConfig()
	c.Volume = -0.1
	if _, err := New(c, nil); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, but got %v", err)
	}
	c = DefaultConfig()
	c.LFODestination = Destination(3)
	if _, err := New(c, nil); err == nil {
		t.Errorf("expected an error for an unknown destination")
	}
}

func TestFilterFollowsCutoff(t *testing.T) {
	level := func(cutoff float64) float64 {
		c := DefaultConfig()
		c.FilterFrequency = cutoff
		e := newTestEngine(t, c)
		expectNoError(t, e.Play(A, 6))
		e.Render(4800)
		peak := 0.0
		for _, v := range e.Render(4800) {
			peak = math.Max(peak, math.Abs(v))
		}
		return peak
	}
	open, closed := level(20000), level(100)
	if closed >= open/4 {
		t.Errorf("expected the filter to attenuate: open %v, closed %v", open, closed)
	}
}

func TestNaNCutoffDoesNotSilenceEngine(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	expectNoError(t, e.Play(A, 4))
	expectNoError(t, e.SetFilterFrequency(math.NaN()))
	e.Render(1024)
	expectNoError(t, e.SetFilterFrequency(1000))
	e.Render(48000)
	nan := 0
	peak := 0.0
	for _, v := range e.Render(1024) {
		if math.IsNaN(v) {
			nan++
		}
		peak = math.Max(peak, math.Abs(v))
	}
	if nan > 0 {
		t.Fatalf("expected no NaN samples after restoring the cutoff, but got %d", nan)
	}
	if peak == 0 {
		t.Errorf("expected the note to be audible again")
	}
	if p := e.Peak(); math.IsNaN(p) {
		t.Errorf("expected a finite peak, but got %v", p)
	}
}

func TestOff(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	expectNoError(t, e.Play(G, 2))
	expectNoError(t, e.Off())
	if !e.Closed() {
		t.Errorf("expected the engine to be closed")
	}
	if connections := e.Connections(); len(connections) != 0 {
		t.Errorf("expected no connections, but got %q", connections)
	}
	if err := e.Off(); !errors.Is(err, audio.ErrClosed) {
		t.Errorf("expected ErrClosed, but got %v", err)
	}
	if err := e.Play(C, 4); !errors.Is(err, audio.ErrClosed) {
		t.Errorf("expected ErrClosed, but got %v", err)
	}
	e.Stop()
}

func TestBenchmark(t *testing.T) {
	times := 1000

	c := DefaultConfig()
	c.SubOscillator = true
	c.LFOAmount = 20
	c.LFODestination = DestinationPitch
	e := newTestEngine(t, c)
	expectNoError(t, e.Play(A, 3))
	start := time.Now()
	for n := 0; n < times; n++ {
		e.Render(1024)
	}
	averageProcessTime := float64(time.Since(start).Microseconds()) / float64(times) / 1000
	fmt.Printf("average process time: %.2fms\n", averageProcessTime)
}
