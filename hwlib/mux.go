// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"github.com/db47h/logicsim"
)

// Mux is a 2 to 1 multiplexer.
//
//	Ports: 0 out, 1 a, 2 b, 3 sel (1 bit)
//	Function: if sel == 0 { out = a } else if sel == 1 { out = b }
//
// An unknown selector yields an unknown output, unless a and b are equal and
// fully defined. An Error selector yields Error.
//
type Mux struct {
	width int
	ports []logicsim.Port
}

// NewMux returns a new multiplexer.
//
func NewMux(width int, a, b, sel, out logicsim.Location) *Mux {
	return &Mux{
		width: width,
		ports: []logicsim.Port{
			logicsim.OutPort(out, width),
			logicsim.InPort(a, width),
			logicsim.InPort(b, width),
			logicsim.InPort(sel, 1),
		},
	}
}

// Name implements logicsim.Component.
//
func (*Mux) Name() string { return "MUX" }

// Ports implements logicsim.Component.
//
func (m *Mux) Ports() []logicsim.Port { return m.ports }

// Propagate implements logicsim.Component.
//
func (m *Mux) Propagate(in logicsim.Inputs) (out logicsim.Output) {
	a, b := in.Value(1), in.Value(2)
	var v logicsim.Value
	switch in.Value(3).Get(0) {
	case logicsim.False:
		v = a
	case logicsim.True:
		v = b
	case logicsim.Unknown:
		if a == b && a.IsFullyDefined() {
			v = a
		} else {
			v = logicsim.UnknownValue(m.width)
		}
	default:
		v = logicsim.ErrorValue(m.width)
	}
	out.Set(0, v, logicsim.DefaultDelay)
	return out
}

// Demux is a 1 to 2 demultiplexer.
//
//	Ports: 0 a, 1 b, 2 in, 3 sel (1 bit)
//	Function: if sel == 0 { a = in; b = 0 } else { a = 0; b = in }
//
type Demux struct {
	width int
	ports []logicsim.Port
}

// NewDemux returns a new demultiplexer.
//
func NewDemux(width int, in, sel, a, b logicsim.Location) *Demux {
	return &Demux{
		width: width,
		ports: []logicsim.Port{
			logicsim.OutPort(a, width),
			logicsim.OutPort(b, width),
			logicsim.InPort(in, width),
			logicsim.InPort(sel, 1),
		},
	}
}

// Name implements logicsim.Component.
//
func (*Demux) Name() string { return "DMUX" }

// Ports implements logicsim.Component.
//
func (d *Demux) Ports() []logicsim.Port { return d.ports }

// Propagate implements logicsim.Component.
//
func (d *Demux) Propagate(in logicsim.Inputs) (out logicsim.Output) {
	v := in.Value(2)
	zero := logicsim.Known(d.width, 0)
	switch in.Value(3).Get(0) {
	case logicsim.False:
		out.Set(0, v, logicsim.DefaultDelay)
		out.Set(1, zero, logicsim.DefaultDelay)
	case logicsim.True:
		out.Set(0, zero, logicsim.DefaultDelay)
		out.Set(1, v, logicsim.DefaultDelay)
	case logicsim.Unknown:
		out.Set(0, logicsim.UnknownValue(d.width), logicsim.DefaultDelay)
		out.Set(1, logicsim.UnknownValue(d.width), logicsim.DefaultDelay)
	default:
		out.Set(0, logicsim.ErrorValue(d.width), logicsim.DefaultDelay)
		out.Set(1, logicsim.ErrorValue(d.width), logicsim.DefaultDelay)
	}
	return out
}
