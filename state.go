// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"encoding/binary"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// CircuitState holds the simulation state of one instance of a circuit
// definition: net values, per-driver contributions and component data.
//
// The root state belongs to a Propagator. Each sub-circuit instance in a
// state owns a child state, created on first use, so that several instances of
// the same definition never share values.
//
type CircuitState struct {
	prop       *Propagator
	circuit    *Circuit
	nl         *netlist
	parent     *CircuitState
	parentComp int // index of the Subcircuit component in parent
	values     []Value
	drives     [][]drive
	data       []Data
	subs       map[int]*CircuitState
	order      []int // keys of subs, ascending
}

func newState(p *Propagator, c *Circuit, nl *netlist, parent *CircuitState, pc int) *CircuitState {
	s := &CircuitState{
		prop:       p,
		circuit:    c,
		nl:         nl,
		parent:     parent,
		parentComp: pc,
		values:     make([]Value, len(nl.nets)),
		drives:     make([][]drive, len(nl.nets)),
		data:       make([]Data, len(c.comps)),
		subs:       make(map[int]*CircuitState),
	}
	for i := range nl.nets {
		s.values[i] = s.resolve(NetID(i))
	}
	return s
}

// resolve computes the value of net id from its drivers and, for nets joined
// by splitters, from the drivers of all the nets sharing its threads.
func (s *CircuitState) resolve(id NetID) Value {
	n := &s.nl.nets[id]
	if n.threads == nil {
		return resolve(n.width, n.pull, s.drives[id])
	}
	v := UnknownValue(n.width)
	for b, t := range n.threads {
		v = v.Set(b, s.threadBit(t))
	}
	return v
}

func (s *CircuitState) threadBit(t int) Bit {
	var ds []drive
	var pull Value
	for _, nb := range s.nl.threads[t] {
		n := &s.nl.nets[nb.net]
		for _, d := range s.drives[nb.net] {
			ds = append(ds, drive{src: d.src, excl: d.excl, val: Repeat(d.val.Get(nb.bit), 1)})
		}
		if n.pull.width == 0 {
			continue
		}
		p := Repeat(n.pull.Get(nb.bit), 1)
		if pull.width == 0 {
			pull = p
		} else {
			pull = pull.Combine(p)
		}
	}
	return resolve(1, pull, ds).Get(0)
}

// Circuit returns the circuit definition simulated by s.
//
func (s *CircuitState) Circuit() *Circuit { return s.circuit }

// Parent returns the parent state of s, or nil if s is a root state.
//
func (s *CircuitState) Parent() *CircuitState { return s.parent }

// IsRoot returns true if s is the top-level state of a propagator.
//
func (s *CircuitState) IsRoot() bool { return s.parent == nil }

// IsSubstate returns true if s is the state of a sub-circuit instance.
//
func (s *CircuitState) IsSubstate() bool { return s.parent != nil }

// Path returns a slash separated path identifying s in its state tree, like
// "main/adder#3" where 3 is the index of the sub-circuit component in its
// parent circuit.
//
func (s *CircuitState) Path() string {
	if s.parent == nil {
		return s.circuit.name
	}
	return s.parent.Path() + "/" + s.circuit.name + "#" + strconv.Itoa(s.parentComp)
}

// Value returns the value of the net at location l. It returns the zero Value
// if there is no net at l.
//
func (s *CircuitState) Value(l Location) Value {
	id, ok := s.nl.byLoc[l]
	if !ok {
		return Value{}
	}
	return s.values[id]
}

// NetValue returns the value of net id.
//
func (s *CircuitState) NetValue(id NetID) Value {
	if id < 0 || int(id) >= len(s.values) {
		return Value{}
	}
	return s.values[id]
}

// SetValue schedules v to be driven on the net at location l after delay time
// units. If source is not nil, it must be a component of the circuit with a
// port at l and v replaces the value previously driven by that port. Values set
// with a nil source act as a single non-exclusive external driver.
//
func (s *CircuitState) SetValue(l Location, v Value, source Component, delay int) error {
	if s.prop == nil {
		return ErrDetached
	}
	id, ok := s.nl.byLoc[l]
	if !ok {
		return errors.Wrapf(ErrBadPort, "%s: no net at %v", s.Path(), l)
	}
	if w := s.nl.nets[id].width; w != v.Width() {
		return errors.Wrapf(&WidthError{Op: "set value", Want: w, Got: v.Width()}, "%s at %v", s.Path(), l)
	}
	if delay < 0 {
		return errors.Wrapf(ErrBadDelay, "%s: negative delay %d", s.Path(), delay)
	}
	src, excl := external, false
	if source != nil {
		ci, ok := s.nl.index[source]
		if !ok {
			return errors.Wrapf(ErrBadPort, "%s: component %s not in circuit", s.Path(), source.Name())
		}
		src.comp = ci
		for pi, p := range s.nl.ports[ci] {
			if p.Loc == l {
				src.port, excl = pi, p.Exclusive
				break
			}
		}
		if src.port < 0 {
			return errors.Wrapf(ErrBadPort, "%s: %s has no port at %v", s.Path(), source.Name(), l)
		}
	}
	s.prop.schedule(s, id, src, excl, v, uint64(delay))
	return nil
}

// setDrive records the value driven by src on net id.
func (s *CircuitState) setDrive(id NetID, src attachment, excl bool, v Value) {
	ds := s.drives[id]
	for i := range ds {
		if ds[i].src == src {
			ds[i].val = v
			return
		}
	}
	s.drives[id] = append(ds, drive{src: src, excl: excl, val: v})
}

// Data returns the instance data of component c, or nil.
//
func (s *CircuitState) Data(c Component) Data {
	ci, ok := s.nl.index[c]
	if !ok {
		return nil
	}
	return s.data[ci]
}

// SetData replaces the instance data of component c.
//
func (s *CircuitState) SetData(c Component, d Data) error {
	ci, ok := s.nl.index[c]
	if !ok {
		return errors.Wrapf(ErrBadPort, "%s: component %s not in circuit", s.Path(), c.Name())
	}
	s.data[ci] = d
	return nil
}

// Substate returns the state of sub-circuit instance sc, creating it if
// necessary.
//
func (s *CircuitState) Substate(sc *Subcircuit) (*CircuitState, error) {
	ci, ok := s.nl.index[sc]
	if !ok {
		return nil, errors.Wrapf(ErrBadPort, "%s: sub-circuit %s not in circuit", s.Path(), sc.Name())
	}
	if sub := s.subs[ci]; sub != nil {
		return sub, nil
	}
	if s.prop == nil {
		return nil, ErrDetached
	}
	return s.prop.substate(s, ci, sc)
}

// Substates returns the sub-circuit states created so far, in component
// order.
//
func (s *CircuitState) Substates() []*CircuitState {
	subs := make([]*CircuitState, 0, len(s.order))
	for _, i := range s.order {
		subs = append(subs, s.subs[i])
	}
	return subs
}

func (s *CircuitState) addSub(ci int, sub *CircuitState) {
	s.subs[ci] = sub
	i := sort.SearchInts(s.order, ci)
	s.order = append(s.order, 0)
	copy(s.order[i+1:], s.order[i:])
	s.order[i] = ci
}

// walk calls fn for s and all its substates, depth first.
func (s *CircuitState) walk(fn func(*CircuitState)) {
	fn(s)
	for _, i := range s.order {
		s.subs[i].walk(fn)
	}
}

// ForcePin sets the value of an input pin. Only pins of a root state can be
// forced; sub-circuit pins follow the nets of their parent. The new value
// propagates on the next call to Propagate.
//
func (s *CircuitState) ForcePin(pin *Pin, v Value) error {
	if s.parent != nil {
		return errors.Wrapf(ErrNotRoot, "force pin %s in %s", pin.label, s.Path())
	}
	if s.prop == nil {
		return ErrDetached
	}
	if pin.output {
		return errors.Wrapf(ErrOutputPin, "force pin %s", pin.label)
	}
	if v.Width() != pin.width {
		return errors.Wrapf(&WidthError{Op: "force pin", Want: pin.width, Got: v.Width()}, "pin %s", pin.label)
	}
	ci, ok := s.nl.index[pin]
	if !ok {
		return errors.Wrapf(ErrBadPort, "pin %s not in circuit %s", pin.label, s.circuit.name)
	}
	s.data[ci] = &pinState{v}
	return s.prop.evaluate(s, ci)
}

// Clone returns a deep copy of the tree of states rooted at s. The copy is
// detached from any propagator: its values can be read but not modified.
//
func (s *CircuitState) Clone() *CircuitState {
	return s.clone(nil, nil, nil)
}

func (s *CircuitState) clone(p *Propagator, parent *CircuitState, m map[*CircuitState]*CircuitState) *CircuitState {
	c := &CircuitState{
		prop:       p,
		circuit:    s.circuit,
		nl:         s.nl,
		parent:     parent,
		parentComp: s.parentComp,
		values:     append([]Value(nil), s.values...),
		drives:     make([][]drive, len(s.drives)),
		data:       make([]Data, len(s.data)),
		subs:       make(map[int]*CircuitState, len(s.subs)),
		order:      append([]int(nil), s.order...),
	}
	for i, ds := range s.drives {
		c.drives[i] = append([]drive(nil), ds...)
	}
	for i, d := range s.data {
		if d != nil {
			c.data[i] = d.Clone()
		}
	}
	for i, sub := range s.subs {
		c.subs[i] = sub.clone(p, c, m)
	}
	if m != nil {
		m[s] = c
	}
	return c
}

// Fingerprint returns a hash of all net values in the tree of states rooted at
// s. Two states with the same fingerprint hold the same values with very high
// probability.
//
func (s *CircuitState) Fingerprint() uint64 {
	h := xxhash.New()
	var buf []byte
	s.walk(func(st *CircuitState) {
		buf = append(buf[:0], st.Path()...)
		buf = append(buf, 0)
		for _, v := range st.values {
			buf = append(buf, v.width)
			buf = binary.LittleEndian.AppendUint32(buf, v.err)
			buf = binary.LittleEndian.AppendUint32(buf, v.unk)
			buf = binary.LittleEndian.AppendUint32(buf, v.val)
		}
		_, _ = h.Write(buf)
	})
	return h.Sum64()
}

// A NetRef identifies a net in a state tree along with its value.
//
type NetRef struct {
	State *CircuitState
	Net   NetID
	Loc   Location // lowest location of the net
	Value Value
}

func (r NetRef) String() string {
	return r.State.Path() + r.Loc.String() + "=" + r.Value.String()
}

func (s *CircuitState) netRef(id NetID) NetRef {
	return NetRef{State: s, Net: id, Loc: s.nl.nets[id].locs[0], Value: s.values[id]}
}

// ErrorNets returns all nets holding at least one Error bit in the tree of
// states rooted at s.
//
func (s *CircuitState) ErrorNets() []NetRef {
	var refs []NetRef
	s.walk(func(st *CircuitState) {
		for i, v := range st.values {
			if v.IsError() {
				refs = append(refs, st.netRef(NetID(i)))
			}
		}
	})
	return refs
}
