// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"io"
	"log/slog"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
)

// DefaultStepLimit is the minimum number of micro-steps a propagation pass may
// run before being declared oscillating.
//
const DefaultStepLimit = 4096

// number of trailing micro-steps whose changed nets are reported as
// oscillating.
const oscillationWindow = 16

// Status is the outcome of a propagation pass.
//
type Status uint8

// Propagation status.
//
const (
	StatusStable Status = iota
	StatusOscillating
)

func (s Status) String() string {
	if s == StatusOscillating {
		return "oscillating"
	}
	return "stable"
}

// Report summarizes a propagation pass.
//
type Report struct {
	Status Status
	Now    uint64 // propagation time at the end of the pass
	Ticks  uint64
	Steps  int // micro-steps run
	Events int // events processed
	// Nets that changed during the last micro-steps of an oscillating pass.
	Oscillating []NetRef
	// Nets holding Error bits at the end of the pass.
	Errors []NetRef
}

// A Propagator runs the discrete-event simulation of a circuit. It owns the
// root CircuitState and the event queue shared by the whole state tree.
//
// A Propagator is not safe for concurrent use; see Simulator.
//
type Propagator struct {
	circuit     *Circuit
	root        *CircuitState
	queue       eventQueue
	seq         uint64
	now         uint64
	ticks       uint64
	stepLimit   int
	size        int
	versions    map[*Circuit]uint64
	oscillating bool
	log         *slog.Logger
}

// NewPropagator builds c and returns a new Propagator for it. All components
// are evaluated once; the resulting events are processed by the first call to
// Propagate.
//
func NewPropagator(c *Circuit) (*Propagator, error) {
	if _, err := c.netlist(); err != nil {
		return nil, err
	}
	p := &Propagator{
		circuit:  c,
		size:     c.size(),
		versions: make(map[*Circuit]uint64),
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	c.versions(p.versions)
	if err := p.init(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Propagator) init() error {
	p.root = newState(p, p.circuit, p.circuit.nl, nil, -1)
	return p.initState(p.root)
}

// initState evaluates all components of a new state. Input pins of
// sub-circuit states are left to the parent. Connectors have no behavior.
func (p *Propagator) initState(s *CircuitState) error {
	for ci, c := range s.circuit.comps {
		if pin, ok := c.(*Pin); ok && !pin.output && s.parent != nil {
			continue
		}
		if _, ok := c.(connector); ok {
			continue
		}
		if err := p.evaluate(s, ci); err != nil {
			return err
		}
	}
	return nil
}

// SetLogger sets the logger used to report pass statistics at debug level.
//
func (p *Propagator) SetLogger(l *slog.Logger) {
	if l != nil {
		p.log = l
	}
}

// SetStepLimit sets the maximum number of micro-steps of a propagation pass.
// A limit <= 0 restores the default of max(DefaultStepLimit, 16 × number of
// component instances).
//
func (p *Propagator) SetStepLimit(n int) { p.stepLimit = n }

// StepLimit returns the effective micro-step limit.
//
func (p *Propagator) StepLimit() int {
	if p.stepLimit > 0 {
		return p.stepLimit
	}
	return max(DefaultStepLimit, 16*p.size)
}

// Root returns the root state.
//
func (p *Propagator) Root() *CircuitState { return p.root }

// Circuit returns the simulated circuit.
//
func (p *Propagator) Circuit() *Circuit { return p.circuit }

// Now returns the current propagation time.
//
func (p *Propagator) Now() uint64 { return p.now }

// Ticks returns the tick count.
//
func (p *Propagator) Ticks() uint64 { return p.ticks }

// IsOscillating returns true if the last propagation pass hit the step limit.
//
func (p *Propagator) IsOscillating() bool { return p.oscillating }

// Pending returns the number of queued events.
//
func (p *Propagator) Pending() int { return len(p.queue) }

func (p *Propagator) checkStale() error {
	for c, v := range p.versions {
		if c.version != v {
			return errors.Wrapf(ErrStale, "circuit %s", c.name)
		}
	}
	return nil
}

func (p *Propagator) schedule(s *CircuitState, id NetID, src attachment, excl bool, v Value, delay uint64) {
	p.seq++
	p.queue.push(&event{
		time:  p.now + delay,
		seq:   p.seq,
		state: s,
		net:   id,
		src:   src,
		excl:  excl,
		val:   v,
	})
}

// Propagate runs micro-steps until no events remain. If the number of
// micro-steps exceeds the step limit, the pending events are discarded and
// the report status is StatusOscillating.
//
// A non nil error is returned when a component breaks its contract. The
// current micro-step is then aborted and the remaining events are kept.
//
func (p *Propagator) Propagate() (Report, error) {
	if err := p.checkStale(); err != nil {
		return Report{}, err
	}
	r := Report{Status: StatusStable}
	limit := p.StepLimit()
	var recent []NetRef
	for len(p.queue) > 0 {
		if r.Steps >= limit {
			r.Status = StatusOscillating
			r.Oscillating = dedupe(recent)
			p.queue = p.queue[:0]
			break
		}
		changed, n, err := p.step()
		r.Steps++
		r.Events += n
		if err != nil {
			r.Now, r.Ticks = p.now, p.ticks
			return r, err
		}
		if r.Steps > limit-oscillationWindow {
			recent = append(recent, changed...)
		}
	}
	p.oscillating = r.Status == StatusOscillating
	r.Now, r.Ticks = p.now, p.ticks
	r.Errors = p.root.ErrorNets()
	p.log.Debug("propagation pass",
		slog.String("circuit", p.circuit.name),
		slog.String("status", r.Status.String()),
		slog.Uint64("now", r.Now),
		slog.Int("steps", r.Steps),
		slog.Int("events", r.Events))
	return r, nil
}

// StepOnce runs a single micro-step and returns the nets whose value changed.
//
func (p *Propagator) StepOnce() ([]NetRef, error) {
	if err := p.checkStale(); err != nil {
		return nil, err
	}
	if len(p.queue) == 0 {
		return nil, nil
	}
	changed, _, err := p.step()
	return changed, err
}

type netKey struct {
	s  *CircuitState
	id NetID
}

type compKey struct {
	s  *CircuitState
	ci int
}

// step applies all events scheduled at the earliest pending time, resolves
// the nets they touched and evaluates the components attached to the nets
// that changed.
func (p *Propagator) step() (changed []NetRef, events int, err error) {
	p.now = p.queue.peek().time

	touched := mapset.NewThreadUnsafeSet[netKey]()
	var order []netKey
	for e := p.queue.peek(); e != nil && e.time == p.now; e = p.queue.peek() {
		p.queue.pop()
		events++
		e.state.setDrive(e.net, e.src, e.excl, e.val)
		k := netKey{e.state, e.net}
		if !touched.Add(k) {
			continue
		}
		order = append(order, k)
		for _, id := range e.state.nl.nets[e.net].group {
			if k := (netKey{e.state, id}); touched.Add(k) {
				order = append(order, k)
			}
		}
	}

	seen := mapset.NewThreadUnsafeSet[compKey]()
	var eval []compKey
	for _, k := range order {
		s := k.s
		n := &s.nl.nets[k.id]
		v := s.resolve(k.id)
		if v == s.values[k.id] {
			continue
		}
		s.values[k.id] = v
		changed = append(changed, s.netRef(k.id))
		for _, a := range n.attach {
			if !s.nl.port(a).reads() {
				continue
			}
			ck := compKey{s, a.comp}
			if !seen.Contains(ck) {
				seen.Add(ck)
				eval = append(eval, ck)
			}
		}
	}

	for _, ck := range eval {
		if err = p.evaluate(ck.s, ck.ci); err != nil {
			return changed, events, err
		}
	}
	return changed, events, nil
}

// Tick advances the tick counter, evaluates all tick sensitive components of
// the state tree and propagates.
//
func (p *Propagator) Tick() (Report, error) {
	if err := p.checkStale(); err != nil {
		return Report{}, err
	}
	p.ticks++
	var err error
	p.root.walk(func(s *CircuitState) {
		for _, ci := range s.nl.clocks {
			if err == nil {
				err = p.evaluate(s, ci)
			}
		}
	})
	if err != nil {
		return Report{Now: p.now, Ticks: p.ticks}, err
	}
	return p.Propagate()
}

// Reset discards all pending events and state, then evaluates all components
// again as NewPropagator does. Reset also brings a propagator up to date after
// its circuit has been modified.
//
func (p *Propagator) Reset() error {
	if _, err := p.circuit.netlist(); err != nil {
		return err
	}
	p.queue = p.queue[:0]
	p.now, p.ticks, p.seq = 0, 0, 0
	p.oscillating = false
	p.size = p.circuit.size()
	p.versions = make(map[*Circuit]uint64)
	p.circuit.versions(p.versions)
	return p.init()
}

// Clone returns an independent copy of p: state tree, pending events and
// counters.
//
func (p *Propagator) Clone() *Propagator {
	c := &Propagator{
		circuit:     p.circuit,
		seq:         p.seq,
		now:         p.now,
		ticks:       p.ticks,
		stepLimit:   p.stepLimit,
		size:        p.size,
		versions:    make(map[*Circuit]uint64, len(p.versions)),
		oscillating: p.oscillating,
		log:         p.log,
	}
	for k, v := range p.versions {
		c.versions[k] = v
	}
	m := make(map[*CircuitState]*CircuitState)
	c.root = p.root.clone(c, nil, m)
	c.queue = make(eventQueue, len(p.queue))
	for i, e := range p.queue {
		ce := *e
		ce.state = m[e.state]
		c.queue[i] = &ce
	}
	return c
}

func (p *Propagator) substate(s *CircuitState, ci int, sc *Subcircuit) (*CircuitState, error) {
	nl, err := sc.def.netlist()
	if err != nil {
		return nil, err
	}
	sub := newState(p, sc.def, nl, s, ci)
	s.addSub(ci, sub)
	return sub, p.initState(sub)
}

// enterSubcircuit copies the values of the nets attached to the input ports of
// a sub-circuit to the matching input pins of its state.
func (p *Propagator) enterSubcircuit(s *CircuitState, ci int, sc *Subcircuit) error {
	sub := s.subs[ci]
	if sub == nil {
		var err error
		if sub, err = p.substate(s, ci, sc); err != nil {
			return err
		}
	}
	for i, pin := range sc.pins {
		if pin.output {
			continue
		}
		v := s.values[s.nl.portNet[ci][i]]
		pi := sub.nl.index[pin]
		if d, ok := sub.data[pi].(*pinState); ok && d.v == v {
			continue
		}
		sub.data[pi] = &pinState{v}
		p.schedule(sub, sub.nl.portNet[pi][0], attachment{pi, 0}, true, v, 0)
	}
	return nil
}

// exitSubcircuit drives the value observed by an output pin of a sub-circuit
// state on the matching port of the sub-circuit in the parent state.
func (p *Propagator) exitSubcircuit(s *CircuitState, pin *Pin, v Value) {
	parent := s.parent
	sc := parent.circuit.comps[s.parentComp].(*Subcircuit)
	port := sc.port[pin]
	p.schedule(parent, parent.nl.portNet[s.parentComp][port], attachment{s.parentComp, port}, true, v, 0)
}

type inputs struct {
	p  *Propagator
	s  *CircuitState
	ci int
}

func (in *inputs) Value(port int) Value {
	nets := in.s.nl.portNet[in.ci]
	if port < 0 || port >= len(nets) {
		panic(errors.Wrapf(ErrBadPort, "read from port %d", port))
	}
	return in.s.values[nets[port]]
}

func (in *inputs) Data() Data     { return in.s.data[in.ci] }
func (in *inputs) Ticks() uint64 { return in.p.ticks }
func (in *inputs) Now() uint64   { return in.p.now }

// evaluate runs the propagation rule of component ci in state s and schedules
// its effects.
func (p *Propagator) evaluate(s *CircuitState, ci int) error {
	c := s.circuit.comps[ci]
	if sc, ok := c.(*Subcircuit); ok {
		return p.enterSubcircuit(s, ci, sc)
	}
	out, err := p.call(s, ci, c)
	if err != nil {
		return err
	}
	fault := func(err error) error {
		p.log.Error("component fault", slog.String("path", s.Path()), slog.String("component", c.Name()), slog.Any("error", err))
		return &FaultError{Path: s.Path(), Component: c.Name(), Err: err}
	}
	ports := s.nl.ports[ci]
	_, direct := c.(directWire)
	for _, e := range out.Effects {
		switch {
		case e.Port < 0 || e.Port >= len(ports):
			return fault(errors.Wrapf(ErrBadPort, "effect on port %d", e.Port))
		case !ports[e.Port].drives():
			return fault(errors.Wrapf(ErrBadPort, "effect on input port %d", e.Port))
		case e.Value.Width() != ports[e.Port].Width:
			return fault(errors.Wrapf(&WidthError{Op: "effect", Want: ports[e.Port].Width, Got: e.Value.Width()}, "port %d", e.Port))
		case e.Delay < 0 || e.Delay == 0 && !direct:
			return fault(errors.Wrapf(ErrBadDelay, "delay %d on port %d", e.Delay, e.Port))
		}
	}
	if out.Data != nil {
		s.data[ci] = out.Data
	}
	for _, e := range out.Effects {
		pt := ports[e.Port]
		p.schedule(s, s.nl.portNet[ci][e.Port], attachment{ci, e.Port}, pt.Exclusive, e.Value, uint64(e.Delay))
	}
	if pin, ok := c.(*Pin); ok && pin.output && s.parent != nil {
		p.exitSubcircuit(s, pin, s.values[s.nl.portNet[ci][0]])
	}
	return nil
}

func (p *Propagator) call(s *CircuitState, ci int, c Component) (out Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok {
				e = errors.Errorf("panic: %v", r)
			}
			p.log.Error("component fault", slog.String("path", s.Path()), slog.String("component", c.Name()), slog.Any("error", e))
			err = &FaultError{Path: s.Path(), Component: c.Name(), Err: e}
		}
	}()
	return c.Propagate(&inputs{p, s, ci}), nil
}

func dedupe(refs []NetRef) []NetRef {
	seen := mapset.NewThreadUnsafeSet[netKey]()
	var out []NetRef
	for i := len(refs) - 1; i >= 0; i-- {
		k := netKey{refs[i].State, refs[i].Net}
		if seen.Contains(k) {
			continue
		}
		seen.Add(k)
		out = append(out, refs[i])
	}
	return out
}
