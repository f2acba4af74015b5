package audio

import (
	vecmath "github.com/cwbudde/algo-vecmath"
)

// ----- Gain ----- //

// Gain multiplies its input by the value of its gain param.
type Gain struct {
	*node
	gain *Param
}

// NewGain creates a Gain with unity gain.
func (c *Context) NewGain(name string) *Gain {
	g := &Gain{}
	g.node = c.newNode(name, g, true)
	g.gain = g.node.newParam("gain", 1)
	return g
}

// Gain returns the gain param.
func (g *Gain) Gain() *Param {
	return g.gain
}

func (g *Gain) process(in []float64, out []float64) {
	vecmath.MulBlock(out, in, g.gain.render(len(in)))
}

// ----- Destination ----- //

// Destination is the final node of a Context. Whatever is connected to it
// is what the context renders.
type Destination struct {
	*node
}

func newDestination(c *Context) *Destination {
	d := &Destination{}
	d.node = c.newNode("destination", d, true)
	return d
}

func (d *Destination) process(in []float64, out []float64) {
	copy(out, in)
}
