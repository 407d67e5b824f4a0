// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"github.com/pkg/errors"
)

// A Wire is an axis-aligned segment connecting two locations. Any location
// lying on a wire, endpoints included, is connected to it.
//
type Wire struct {
	A, B Location
}

// W returns a wire between a and b.
//
func W(a, b Location) Wire { return Wire{a, b} }

func (w Wire) valid() bool {
	return w.A.X == w.B.X || w.A.Y == w.B.Y
}

// contains returns true if p lies on w.
func (w Wire) contains(p Location) bool {
	minX, maxX := w.A.X, w.B.X
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := w.A.Y, w.B.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	return p.X >= minX && p.X <= maxX && p.Y >= minY && p.Y <= maxY
}

// Circuit is a circuit definition: a set of components and the wires
// connecting them. A Circuit holds no simulation state; it can be simulated by
// any number of propagators and used as a sub-circuit in other circuits.
//
// Circuits are not safe for concurrent modification. Modifying a circuit
// after a Propagator has been created for it invalidates that propagator.
//
type Circuit struct {
	name    string
	comps   []Component
	wires   []Wire
	version uint64

	nl        *netlist
	nlVersion uint64
}

// NewCircuit returns a new empty circuit definition.
//
func NewCircuit(name string) *Circuit {
	return &Circuit{name: name, version: 1}
}

// Name returns the circuit name.
//
func (c *Circuit) Name() string { return c.name }

// Add adds components to the circuit.
//
func (c *Circuit) Add(comps ...Component) *Circuit {
	c.comps = append(c.comps, comps...)
	c.version++
	return c
}

// Wire adds a wire from a to b. Several locations can be given to chain
// wire segments together.
//
func (c *Circuit) Wire(a, b Location, more ...Location) *Circuit {
	c.wires = append(c.wires, Wire{a, b})
	for _, m := range more {
		c.wires = append(c.wires, Wire{b, m})
		b = m
	}
	c.version++
	return c
}

// Components returns the circuit components in insertion order.
//
func (c *Circuit) Components() []Component {
	return append([]Component(nil), c.comps...)
}

// Wires returns the circuit wires.
//
func (c *Circuit) Wires() []Wire {
	return append([]Wire(nil), c.wires...)
}

// Pins returns the circuit pins in insertion order. They form the interface of
// the circuit when used as a sub-circuit.
//
func (c *Circuit) Pins() []*Pin {
	var pins []*Pin
	for _, cc := range c.comps {
		if p, ok := cc.(*Pin); ok {
			pins = append(pins, p)
		}
	}
	return pins
}

// Build computes the circuit nets and validates the circuit and all its
// sub-circuit definitions. It is called implicitly by NewPropagator.
//
func (c *Circuit) Build() error {
	_, err := c.netlist()
	return err
}

// NetCount returns the number of nets in the circuit.
//
func (c *Circuit) NetCount() (int, error) {
	nl, err := c.netlist()
	if err != nil {
		return 0, err
	}
	return len(nl.nets), nil
}

// NetAt returns the net at location l. ok is false if no wire or port lies at l.
//
func (c *Circuit) NetAt(l Location) (id NetID, ok bool, err error) {
	nl, err := c.netlist()
	if err != nil {
		return 0, false, err
	}
	id, ok = nl.byLoc[l]
	return id, ok, nil
}

// NetLocations returns the locations that make up net id, in ascending order.
//
func (c *Circuit) NetLocations(id NetID) ([]Location, error) {
	nl, err := c.netlist()
	if err != nil {
		return nil, err
	}
	if id < 0 || int(id) >= len(nl.nets) {
		return nil, errors.Errorf("%s: no net %d", c.name, id)
	}
	return append([]Location(nil), nl.nets[id].locs...), nil
}

func (c *Circuit) netlist() (*netlist, error) {
	if c.nl != nil && c.nlVersion == c.version {
		return c.nl, nil
	}
	if err := c.checkRecursion(nil); err != nil {
		return nil, err
	}
	nl, err := newNetlist(c)
	if err != nil {
		return nil, errors.Wrapf(err, "circuit %s", c.name)
	}
	for _, si := range nl.subs {
		sc := c.comps[si].(*Subcircuit)
		if _, err := sc.def.netlist(); err != nil {
			return nil, errors.Wrapf(err, "circuit %s", c.name)
		}
	}
	c.nl, c.nlVersion = nl, c.version
	return nl, nil
}

func (c *Circuit) checkRecursion(stack []*Circuit) error {
	for _, s := range stack {
		if s == c {
			return errors.Wrapf(ErrRecursive, "circuit %s", c.name)
		}
	}
	stack = append(stack, c)
	for _, cc := range c.comps {
		if sc, ok := cc.(*Subcircuit); ok {
			if err := sc.def.checkRecursion(stack); err != nil {
				return err
			}
		}
	}
	return nil
}

// size returns the number of component instances in the tree of states rooted
// at c.
func (c *Circuit) size() int {
	n := len(c.comps)
	for _, cc := range c.comps {
		if sc, ok := cc.(*Subcircuit); ok {
			n += sc.def.size()
		}
	}
	return n
}

// versions collects the version of c and all its sub-circuit definitions.
func (c *Circuit) versions(m map[*Circuit]uint64) {
	if _, ok := m[c]; ok {
		return
	}
	m[c] = c.version
	for _, cc := range c.comps {
		if sc, ok := cc.(*Subcircuit); ok {
			sc.def.versions(m)
		}
	}
}
