package audio

import "fmt"

// ----- Node ----- //

// Node is anything that can be wired into a Context's graph.
type Node interface {
	base() *node
}

type processor interface {
	process(in []float64, out []float64)
}

// ender is implemented by source nodes that can finish for good.
type ender interface {
	ended() bool
}

type node struct {
	ctx      *Context
	name     string
	proc     processor
	hasInput bool
	inputs   []*node
	outputs  []*node
	targets  []*Param
	params   []*Param
	in       []float64
	out      []float64
	rendered int64
}

func (c *Context) newNode(name string, proc processor, hasInput bool) *node {
	n := &node{
		ctx:      c,
		name:     name,
		proc:     proc,
		hasInput: hasInput,
		in:       make([]float64, samplesPerCycle),
		out:      make([]float64, samplesPerCycle),
	}
	c.acquire()
	c.nodes[n] = struct{}{}
	c.mu.Unlock()
	return n
}

func (n *node) base() *node {
	return n
}

func (n *node) newParam(name string, value float64) *Param {
	p := &Param{
		owner: n,
		name:  name,
		value: value,
		buf:   make([]float64, samplesPerCycle),
	}
	n.params = append(n.params, p)
	return p
}

// Name returns the name the node was created with.
func (n *node) Name() string {
	return n.name
}

func (n *node) String() string {
	return n.name
}

// Connect routes the output of the node into the input of dst.
// Connecting an existing edge does nothing.
func (n *node) Connect(dst Node) {
	d := dst.base()
	n.ctx.acquire()
	defer n.ctx.mu.Unlock()
	if d.ctx != n.ctx {
		panic(fmt.Errorf("audio: cannot connect %s to %s of another context", n.name, d.name))
	}
	if !d.hasInput {
		panic(fmt.Errorf("audio: %s has no input", d.name))
	}
	if indexOfNode(n.outputs, d) >= 0 {
		return
	}
	n.outputs = append(n.outputs, d)
	d.inputs = append(d.inputs, n)
}

// ConnectParam routes the output of the node into p, where it is added to
// the param's own value.
func (n *node) ConnectParam(p *Param) {
	n.ctx.acquire()
	defer n.ctx.mu.Unlock()
	if p.owner.ctx != n.ctx {
		panic(fmt.Errorf("audio: cannot connect %s to %s of another context", n.name, p))
	}
	if indexOfParam(n.targets, p) >= 0 {
		return
	}
	n.targets = append(n.targets, p)
	p.inputs = append(p.inputs, n)
}

// DisconnectFrom removes the edge to dst and reports whether it existed.
func (n *node) DisconnectFrom(dst Node) bool {
	d := dst.base()
	n.ctx.acquire()
	defer n.ctx.mu.Unlock()
	i := indexOfNode(n.outputs, d)
	if i < 0 {
		return false
	}
	n.outputs = removeNode(n.outputs, i)
	d.inputs = removeNode(d.inputs, indexOfNode(d.inputs, n))
	n.releaseIfDone()
	return true
}

// DisconnectParam removes the edge to p and reports whether it existed.
func (n *node) DisconnectParam(p *Param) bool {
	n.ctx.acquire()
	defer n.ctx.mu.Unlock()
	i := indexOfParam(n.targets, p)
	if i < 0 {
		return false
	}
	n.targets = removeParam(n.targets, i)
	p.inputs = removeNode(p.inputs, indexOfNode(p.inputs, n))
	p.owner.releaseIfDone()
	return true
}

// Disconnect removes every outgoing edge of the node.
func (n *node) Disconnect() {
	n.ctx.acquire()
	defer n.ctx.mu.Unlock()
	n.disconnectAll()
}

func (n *node) disconnectAll() {
	for _, d := range n.outputs {
		d.inputs = removeNode(d.inputs, indexOfNode(d.inputs, n))
	}
	for _, p := range n.targets {
		p.inputs = removeNode(p.inputs, indexOfNode(p.inputs, n))
	}
	n.outputs = nil
	n.targets = nil
	n.releaseIfDone()
}

// releaseIfDone drops a finished source from the context once nothing
// references it any more.
func (n *node) releaseIfDone() {
	e, ok := n.proc.(ender)
	if !ok || !e.ended() {
		return
	}
	if len(n.outputs) > 0 || len(n.targets) > 0 || len(n.inputs) > 0 {
		return
	}
	for _, p := range n.params {
		if len(p.inputs) > 0 {
			return
		}
	}
	delete(n.ctx.nodes, n)
}

// pull renders the node for the current block. The result is cached until
// the context advances to the next block.
func (n *node) pull(frames int) []float64 {
	out := n.out[:frames]
	if n.rendered == n.ctx.block {
		return out
	}
	n.rendered = n.ctx.block
	in := n.in[:frames]
	mixInputs(in, n.inputs, frames)
	n.proc.process(in, out)
	return out
}

func mixInputs(dst []float64, inputs []*node, frames int) {
	for i := range dst {
		dst[i] = 0
	}
	for _, src := range inputs {
		for i, v := range src.pull(frames) {
			dst[i] += v
		}
	}
}

func indexOfNode(list []*node, n *node) int {
	for i, item := range list {
		if item == n {
			return i
		}
	}
	return -1
}

func removeNode(list []*node, i int) []*node {
	if i < 0 {
		return list
	}
	return append(list[:i], list[i+1:]...)
}

func indexOfParam(list []*Param, p *Param) int {
	for i, item := range list {
		if item == p {
			return i
		}
	}
	return -1
}

func removeParam(list []*Param, i int) []*Param {
	if i < 0 {
		return list
	}
	return append(list[:i], list[i+1:]...)
}

// ----- Param ----- //

// Param is a node parameter whose value can be modulated by other nodes.
// The effective value at each sample is the param's own value plus the sum
// of everything connected to it.
type Param struct {
	owner  *node
	name   string
	value  float64
	inputs []*node
	buf    []float64
}

// Value returns the param's own value, without modulation.
func (p *Param) Value() float64 {
	p.owner.ctx.mu.Lock()
	defer p.owner.ctx.mu.Unlock()
	return p.value
}

// SetValue sets the param's own value. It takes effect from the next
// rendered block.
func (p *Param) SetValue(value float64) {
	p.owner.ctx.acquire()
	defer p.owner.ctx.mu.Unlock()
	p.value = value
}

func (p *Param) String() string {
	return p.owner.name + "." + p.name
}

func (p *Param) render(frames int) []float64 {
	buf := p.buf[:frames]
	for i := range buf {
		buf[i] = p.value
	}
	for _, src := range p.inputs {
		for i, v := range src.pull(frames) {
			buf[i] += v
		}
	}
	return buf
}
