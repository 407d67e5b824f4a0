// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"github.com/pkg/errors"
)

// A Subcircuit is an instance of a circuit definition used as a component in
// another circuit. Its ports map one to one to the pins of the definition, in
// the order returned by Circuit.Pins: input pins become input ports and output
// pins become output ports.
//
// Each state of the host circuit holds a distinct state for every Subcircuit
// instance.
//
// For example, a full adder built from two instances of a half adder
// definition:
//
//	ha1, _ := logicsim.NewSubcircuit(halfAdder, a, b, s1, c1)
//	ha2, _ := logicsim.NewSubcircuit(halfAdder, s1, cin, sum, c2)
//
type Subcircuit struct {
	def   *Circuit
	pins  []*Pin
	ports []Port
	port  map[*Pin]int
}

// NewSubcircuit returns a new instance of def with the ports located at the
// given locations, one per pin of def.
//
// The pins of def must not change once a Subcircuit has been created.
//
func NewSubcircuit(def *Circuit, at ...Location) (*Subcircuit, error) {
	pins := def.Pins()
	if len(at) != len(pins) {
		return nil, errors.Wrapf(ErrBadPort, "sub-circuit %s: %d locations for %d pins", def.name, len(at), len(pins))
	}
	sc := &Subcircuit{
		def:   def,
		pins:  pins,
		ports: make([]Port, len(pins)),
		port:  make(map[*Pin]int, len(pins)),
	}
	for i, p := range pins {
		if p.output {
			sc.ports[i] = OutPort(at[i], p.width)
		} else {
			sc.ports[i] = InPort(at[i], p.width)
		}
		sc.port[p] = i
	}
	return sc, nil
}

// MustSubcircuit is like NewSubcircuit but panics on error.
//
func MustSubcircuit(def *Circuit, at ...Location) *Subcircuit {
	sc, err := NewSubcircuit(def, at...)
	if err != nil {
		panic(err)
	}
	return sc
}

// Name implements Component.
//
func (sc *Subcircuit) Name() string { return sc.def.name }

// Definition returns the circuit definition instantiated by sc.
//
func (sc *Subcircuit) Definition() *Circuit { return sc.def }

// Ports implements Component.
//
func (sc *Subcircuit) Ports() []Port { return sc.ports }

// Propagate implements Component. Sub-circuit boundaries are handled by the
// propagator.
//
func (sc *Subcircuit) Propagate(Inputs) Output { return Output{} }
