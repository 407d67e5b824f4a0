// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"strconv"

	"github.com/pkg/errors"
)

// connector is implemented by components that only shape the connectivity of
// a circuit. They are resolved when the netlist is built and never evaluated.
type connector interface {
	Component
	connector()
}

// A SplitEnd is one end of a splitter fanout: the bits of the combined bus it
// carries, least significant first.
//
type SplitEnd struct {
	Loc  Location
	Bits []int
}

// End returns a splitter end at location at carrying the given bits of the
// combined bus.
//
func End(at Location, bits ...int) SplitEnd {
	return SplitEnd{Loc: at, Bits: bits}
}

// A Splitter joins a multi-bit bus with narrower buses. Every bit of an end is
// the same signal as the matching bit of the combined bus: the nets on either
// side are resolved together, without delay, in both directions. Combined bits
// not carried by any end are left unconnected.
//
type Splitter struct {
	width int
	ports []Port
	ends  []SplitEnd
}

// NewSplitter returns a splitter with its combined end at location at. It
// panics if an end carries no bits or if a bit is out of range or carried by
// more than one end.
//
func NewSplitter(width int, at Location, ends ...SplitEnd) *Splitter {
	checkWidth(width)
	s := &Splitter{width: width, ports: []Port{BothPort(at, width)}}
	used := make([]bool, width)
	for i, e := range ends {
		if len(e.Bits) == 0 {
			panic(errors.Wrapf(ErrBadPort, "splitter end %d has no bits", i))
		}
		for _, b := range e.Bits {
			if b < 0 || b >= width {
				panic(errors.Wrapf(ErrBadPort, "splitter end %d: bit %d out of range", i, b))
			}
			if used[b] {
				panic(errors.Wrapf(ErrBadPort, "splitter end %d: bit %d already split", i, b))
			}
			used[b] = true
		}
		e.Bits = append([]int(nil), e.Bits...)
		s.ends = append(s.ends, e)
		s.ports = append(s.ports, BothPort(e.Loc, len(e.Bits)))
	}
	return s
}

// Split returns a splitter that distributes the bits of the combined bus in
// order over the given ends, as evenly as possible. The first ends get the
// extra bits.
//
func Split(width int, at Location, ends ...Location) *Splitter {
	if len(ends) == 0 || len(ends) > width {
		panic(errors.Wrapf(ErrBadPort, "cannot split %d bits over %d ends", width, len(ends)))
	}
	se := make([]SplitEnd, len(ends))
	b := 0
	for i, l := range ends {
		n := width / len(ends)
		if i < width%len(ends) {
			n++
		}
		se[i].Loc = l
		for ; n > 0; n-- {
			se[i].Bits = append(se[i].Bits, b)
			b++
		}
	}
	return NewSplitter(width, at, se...)
}

// Name implements Component.
//
func (s *Splitter) Name() string { return "SPLIT" + strconv.Itoa(s.width) }

// Ports implements Component. Port 0 is the combined end, port i+1 the end i.
//
func (s *Splitter) Ports() []Port { return s.ports }

// Propagate implements Component. Splitters have no behavior of their own.
//
func (*Splitter) Propagate(Inputs) Output { return Output{} }

func (*Splitter) connector() {}

// A Tunnel connects its location to all the tunnels of the same circuit that
// carry the same label, as if they were wired together.
//
type Tunnel struct {
	label string
	port  []Port
}

// NewTunnel returns a new tunnel.
//
func NewTunnel(label string, width int, at Location) *Tunnel {
	checkWidth(width)
	return &Tunnel{label: label, port: []Port{BothPort(at, width)}}
}

// Name implements Component.
//
func (t *Tunnel) Name() string { return "tunnel:" + t.label }

// Label returns the tunnel label.
//
func (t *Tunnel) Label() string { return t.label }

// Ports implements Component.
//
func (t *Tunnel) Ports() []Port { return t.port }

// Propagate implements Component.
//
func (*Tunnel) Propagate(Inputs) Output { return Output{} }

func (*Tunnel) connector() {}

// A PullResistor settles the undriven bits of its net to a fixed level. Driven
// bits are not affected. Pull resistors with different levels on the same
// bits pull them to Error.
//
type PullResistor struct {
	pull Pull
	port []Port
}

// NewPullResistor returns a pull resistor attached at location at.
//
func NewPullResistor(pull Pull, width int, at Location) *PullResistor {
	checkWidth(width)
	return &PullResistor{pull: pull, port: []Port{BothPort(at, width)}}
}

// Name implements Component.
//
func (r *PullResistor) Name() string {
	if r.pull == PullUp {
		return "PULL1"
	}
	return "PULL0"
}

// Ports implements Component.
//
func (r *PullResistor) Ports() []Port { return r.port }

// Propagate implements Component.
//
func (*PullResistor) Propagate(Inputs) Output { return Output{} }

func (*PullResistor) connector() {}

func (r *PullResistor) value() Value {
	if r.pull == PullUp {
		return Repeat(True, r.port[0].Width)
	}
	return Repeat(False, r.port[0].Width)
}
