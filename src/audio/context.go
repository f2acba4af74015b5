package audio

import (
	"context"
	"errors"
	"io"
	"log"
	"math"
	"sort"
	"sync"
)

const (
	// SampleRate is the rate every Context renders at.
	SampleRate = 48000
	// ChannelNum is the number of interleaved output channels written by Read.
	ChannelNum = 2
	// BitDepthInBytes is the sample width written by Read.
	BitDepthInBytes = 2
	samplesPerCycle = 1024
)

const bytesPerSample = BitDepthInBytes * ChannelNum

// BufferSizeInBytes is the size of one render cycle in output bytes.
const BufferSizeInBytes = samplesPerCycle * bytesPerSample // should be >= 4096

// ErrClosed is returned by operations on a Context that has been closed.
var ErrClosed = errors.New("audio: context closed")

// Sink is where a running Context delivers its signal.
type Sink interface {
	NewPlayer() io.WriteCloser
	Close() error
}

// ----- Context ----- //

// Context owns a graph of nodes and renders it. Graph mutations and
// rendering are serialized by the Context, so a mutation is never observed
// halfway by the render loop.
type Context struct {
	mu          sync.Mutex
	sink        Sink
	closed      bool
	block       int64
	nodes       map[*node]struct{}
	destination *Destination
	scratch     []float64
	peak        float64
	history     []float64 // length: fftSize
	historyPos  int
	analyser    *analyser
	runCtx      context.Context
	pumpDone    chan struct{}
}

// NewContext creates a Context delivering to sink. A nil sink gives an
// offline context that renders only through Render and Read.
func NewContext(sink Sink) *Context {
	c := &Context{
		sink:     sink,
		nodes:    make(map[*node]struct{}),
		scratch:  make([]float64, samplesPerCycle),
		history:  make([]float64, fftSize),
		analyser: newAnalyser(),
		runCtx:   context.Background(),
	}
	c.destination = newDestination(c)
	return c
}

// Destination returns the node whose input is the output of the context.
func (c *Context) Destination() *Destination {
	return c.destination
}

// acquire locks the context for a graph mutation.
func (c *Context) acquire() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		panic(ErrClosed)
	}
}

// Closed reports whether Close has been called.
func (c *Context) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Connections lists every live edge of the graph, sorted.
func (c *Context) Connections() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var list []string
	for n := range c.nodes {
		for _, dst := range n.outputs {
			list = append(list, n.name+" -> "+dst.name)
		}
		for _, p := range n.targets {
			list = append(list, n.name+" -> "+p.String())
		}
	}
	sort.Strings(list)
	return list
}

// Peak returns the peak absolute level of the last rendered block.
func (c *Context) Peak() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peak
}

// Render renders frames of mono output offline.
func (c *Context) Render(frames int) []float64 {
	out := make([]float64, frames)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return out
	}
	c.render(out)
	return out
}

func (c *Context) render(out []float64) {
	for len(out) > 0 {
		frames := len(out)
		if frames > samplesPerCycle {
			frames = samplesPerCycle
		}
		c.block++
		block := c.destination.pull(frames)
		peak := 0.0
		for i, value := range block {
			out[i] = value
			if v := math.Abs(value); v > peak {
				peak = v
			}
			c.history[c.historyPos] = value
			c.historyPos = (c.historyPos + 1) % fftSize
		}
		c.peak = peak
		out = out[frames:]
	}
}

var _ io.Reader = (*Context)(nil)

// Read renders into buf as interleaved 16-bit little-endian PCM.
func (c *Context) Read(buf []byte) (int, error) {
	select {
	case <-c.runCtx.Done():
		log.Println("Read() interrupted.")
		return 0, io.EOF
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, io.EOF
	}
	frames := len(buf) / bytesPerSample
	if cap(c.scratch) < frames {
		c.scratch = make([]float64, frames)
	}
	out := c.scratch[:frames]
	c.render(out)
	writeBuffer(out, buf, 0)
	writeBuffer(out, buf, 1)
	return frames * bytesPerSample, nil
}

func writeBuffer(out []float64, buf []byte, ch int) {
	sampleLength := len(buf) / bytesPerSample
	for i := 0; i < sampleLength; i++ {
		value := math.Max(-1, math.Min(1, out[i]))
		const max = 32767
		b := int16(value * max)
		buf[bytesPerSample*i+2*ch] = byte(b)
		buf[bytesPerSample*i+2*ch+1] = byte(b >> 8)
	}
}

// Start pumps rendered audio into a player of the sink. It blocks until ctx
// is cancelled or the context is closed.
func (c *Context) Start(ctx context.Context) error {
	if c.sink == nil {
		return errors.New("audio: offline context cannot be started")
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.pumpDone != nil {
		c.mu.Unlock()
		return errors.New("audio: context already started")
	}
	done := make(chan struct{})
	c.pumpDone = done
	c.runCtx = ctx
	c.mu.Unlock()
	defer close(done)

	p := c.sink.NewPlayer()
	defer func() {
		if err := p.Close(); err != nil {
			log.Printf("error: %v", err)
		}
	}()
	// block until cancel() or Close() called
	if _, err := io.CopyBuffer(p, c, make([]byte, BufferSizeInBytes)); err != nil {
		return err
	}
	log.Println("Start() ended.")
	return nil
}

// Close stops rendering and releases the sink. It must be called exactly
// once; later calls return ErrClosed.
func (c *Context) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	log.Println("Closing audio context...")
	c.closed = true
	done := c.pumpDone
	c.mu.Unlock()
	if done != nil {
		<-done
	}
	if c.sink == nil {
		return nil
	}
	return c.sink.Close()
}
