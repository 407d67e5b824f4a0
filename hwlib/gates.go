// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwlib provides a library of standard components for logicsim.
//
// Copyright 2018 Denis Bernard <db047h@gmail.com>
//
// This package is licensed under the MIT license. See license text in the LICENSE file.
//
package hwlib

import (
	"strconv"

	"github.com/db47h/logicsim"
)

type binop func(a, b logicsim.Value) logicsim.Value

var (
	and binop = logicsim.Value.And
	or  binop = logicsim.Value.Or
	xor binop = logicsim.Value.Xor
)

// A Gate is a logic gate with one output and any number of inputs. All ports
// have the same width and the function is applied bitwise.
//
// Port 0 is the output, ports 1 to n are the inputs.
//
type Gate struct {
	name   string
	width  int
	ports  []logicsim.Port
	fn     binop // nil for buffers and inverters
	invert bool
	delay  int
}

func newGate(name string, fn binop, invert bool, width int, out logicsim.Location, in []logicsim.Location) *Gate {
	if len(in) == 0 {
		panic("hwlib: " + name + " gate without inputs")
	}
	g := &Gate{
		name:   name + strconv.Itoa(len(in)),
		width:  width,
		fn:     fn,
		invert: invert,
		delay:  logicsim.DefaultDelay,
	}
	g.ports = append(g.ports, logicsim.OutPort(out, width))
	for _, l := range in {
		g.ports = append(g.ports, logicsim.InPort(l, width))
	}
	return g
}

// WithDelay sets the propagation delay of g and returns g.
//
func (g *Gate) WithDelay(d int) *Gate {
	g.delay = d
	return g
}

// Name implements logicsim.Component.
//
func (g *Gate) Name() string { return g.name }

// Ports implements logicsim.Component.
//
func (g *Gate) Ports() []logicsim.Port { return g.ports }

// Propagate implements logicsim.Component.
//
func (g *Gate) Propagate(in logicsim.Inputs) (out logicsim.Output) {
	v := in.Value(1)
	for i := 2; i < len(g.ports); i++ {
		v = g.fn(v, in.Value(i))
	}
	if g.invert {
		v = v.Not()
	}
	out.Set(0, v, g.delay)
	return out
}

// And returns an AND gate.
//
//	Function: out = in[0] & in[1] & ... & in[n-1]
//
func And(width int, out logicsim.Location, in ...logicsim.Location) *Gate {
	return newGate("AND", and, false, width, out, in)
}

// Nand returns a NAND gate.
//
//	Function: out = ^(in[0] & in[1] & ... & in[n-1])
//
func Nand(width int, out logicsim.Location, in ...logicsim.Location) *Gate {
	return newGate("NAND", and, true, width, out, in)
}

// Or returns an OR gate.
//
//	Function: out = in[0] | in[1] | ... | in[n-1]
//
func Or(width int, out logicsim.Location, in ...logicsim.Location) *Gate {
	return newGate("OR", or, false, width, out, in)
}

// Nor returns a NOR gate.
//
//	Function: out = ^(in[0] | in[1] | ... | in[n-1])
//
func Nor(width int, out logicsim.Location, in ...logicsim.Location) *Gate {
	return newGate("NOR", or, true, width, out, in)
}

// Xor returns a XOR gate. With more than two inputs, it computes the odd
// parity of its inputs.
//
//	Function: out = in[0] ^ in[1] ^ ... ^ in[n-1]
//
func Xor(width int, out logicsim.Location, in ...logicsim.Location) *Gate {
	return newGate("XOR", xor, false, width, out, in)
}

// Xnor returns a XNOR gate.
//
//	Function: out = ^(in[0] ^ in[1] ^ ... ^ in[n-1])
//
func Xnor(width int, out logicsim.Location, in ...logicsim.Location) *Gate {
	return newGate("XNOR", xor, true, width, out, in)
}

// Not returns an inverter.
//
func Not(width int, in, out logicsim.Location) *Gate {
	g := newGate("NOT", nil, true, width, out, []logicsim.Location{in})
	g.name = "NOT"
	return g
}

// Buffer returns a buffer. Its output follows its input after the gate delay.
//
func Buffer(width int, in, out logicsim.Location) *Gate {
	g := newGate("BUF", nil, false, width, out, []logicsim.Location{in})
	g.name = "BUF"
	return g
}

// ControlledBuffer is a tri-state buffer.
//
//	Ports: 0 out (shared), 1 in, 2 ctrl (1 bit)
//	Function: if ctrl == 1 { out = in } else if ctrl == 0 { out = x } else { out = E }
//
// Since its output port is not exclusive, several controlled buffers can share
// a bus: only conflicting values result in Error bits.
//
type ControlledBuffer struct {
	width int
	ports []logicsim.Port
}

// NewControlledBuffer returns a new controlled buffer.
//
func NewControlledBuffer(width int, in, ctrl, out logicsim.Location) *ControlledBuffer {
	return &ControlledBuffer{
		width: width,
		ports: []logicsim.Port{
			{Loc: out, Width: width, Dir: logicsim.DirOutput},
			logicsim.InPort(in, width),
			logicsim.InPort(ctrl, 1),
		},
	}
}

// Name implements logicsim.Component.
//
func (*ControlledBuffer) Name() string { return "TRIBUF" }

// Ports implements logicsim.Component.
//
func (b *ControlledBuffer) Ports() []logicsim.Port { return b.ports }

// Propagate implements logicsim.Component.
//
func (b *ControlledBuffer) Propagate(in logicsim.Inputs) (out logicsim.Output) {
	var v logicsim.Value
	switch in.Value(2).Get(0) {
	case logicsim.True:
		v = in.Value(1)
	case logicsim.False:
		v = logicsim.UnknownValue(b.width)
	default:
		v = logicsim.ErrorValue(b.width)
	}
	out.Set(0, v, logicsim.DefaultDelay)
	return out
}
