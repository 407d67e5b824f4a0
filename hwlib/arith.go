// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/logicsim"
)

// HalfAdder returns the definition of a half adder built from a XOR and an
// AND gate, to be used with logicsim.NewSubcircuit.
//
//	Pins: a, b (inputs), s, c (outputs)
//	Function: s = lsb(a + b)
//	          c = msb(a + b)
//
func HalfAdder() *logicsim.Circuit {
	s := logicsim.NewSocket()
	a, b, sum, c := s.Loc("a"), s.Loc("b"), s.Loc("s"), s.Loc("c")
	return logicsim.NewCircuit("HalfAdder").Add(
		logicsim.NewInputPin("a", 1, a),
		logicsim.NewInputPin("b", 1, b),
		logicsim.NewOutputPin("s", 1, sum),
		logicsim.NewOutputPin("c", 1, c),
		Xor(1, sum, a, b),
		And(1, c, a, b),
	)
}

// FullAdder returns the definition of a full adder built from two half adders.
//
//	Pins: a, b, cin (inputs), s, cout (outputs)
//	Function: s = lsb(a + b + cin)
//	          cout = msb(a + b + cin)
//
func FullAdder() *logicsim.Circuit {
	ha := HalfAdder()
	s := logicsim.NewSocket()
	a, b, cin, sum, cout := s.Loc("a"), s.Loc("b"), s.Loc("cin"), s.Loc("s"), s.Loc("cout")
	s0, c0, c1 := s.Loc("s0"), s.Loc("c0"), s.Loc("c1")
	return logicsim.NewCircuit("FullAdder").Add(
		logicsim.NewInputPin("a", 1, a),
		logicsim.NewInputPin("b", 1, b),
		logicsim.NewInputPin("cin", 1, cin),
		logicsim.NewOutputPin("s", 1, sum),
		logicsim.NewOutputPin("cout", 1, cout),
		logicsim.MustSubcircuit(ha, a, b, s0, c0),
		logicsim.MustSubcircuit(ha, s0, cin, sum, c1),
		Or(1, cout, c0, c1),
	)
}

// RippleAdder returns the definition of an n bits adder built from n full
// adders. Bit i of the inputs and outputs are separate pins named a0, b0, s0
// etc.
//
//	Pins: a0..an-1, b0..bn-1, cin (inputs), s0..sn-1, cout (outputs)
//
func RippleAdder(bits int) *logicsim.Circuit {
	fa := FullAdder()
	s := logicsim.NewSocket()
	c := logicsim.NewCircuit("RippleAdder" + strconv.Itoa(bits))
	for i := 0; i < bits; i++ {
		n := strconv.Itoa(i)
		c.Add(
			logicsim.NewInputPin("a"+n, 1, s.Loc("a"+n)),
			logicsim.NewInputPin("b"+n, 1, s.Loc("b"+n)),
			logicsim.NewOutputPin("s"+n, 1, s.Loc("s"+n)),
		)
	}
	c.Add(
		logicsim.NewInputPin("cin", 1, s.Loc("cin")),
		logicsim.NewOutputPin("cout", 1, s.Loc("cout")),
	)
	carry := "cin"
	for i := 0; i < bits; i++ {
		n := strconv.Itoa(i)
		next := "c" + n
		if i == bits-1 {
			next = "cout"
		}
		c.Add(logicsim.MustSubcircuit(fa, s.Locs("a"+n, "b"+n, carry, "s"+n, next)...))
		carry = next
	}
	return c
}

// Adder is an n bits adder with carry in and carry out.
//
//	Ports: 0 sum, 1 cout (1 bit), 2 a, 3 b, 4 cin (1 bit)
//	Function: sum = lsb(a + b + cin)
//	          cout = msb(a + b + cin)
//
// If any input bit is not defined, all outputs are Unknown, or Error if any
// input bit is Error.
//
type Adder struct {
	width int
	ports []logicsim.Port
}

// NewAdder returns a new adder.
//
func NewAdder(width int, a, b, cin, sum, cout logicsim.Location) *Adder {
	return &Adder{
		width: width,
		ports: []logicsim.Port{
			logicsim.OutPort(sum, width),
			logicsim.OutPort(cout, 1),
			logicsim.InPort(a, width),
			logicsim.InPort(b, width),
			logicsim.InPort(cin, 1),
		},
	}
}

// Name implements logicsim.Component.
//
func (a *Adder) Name() string { return "ADD" + strconv.Itoa(a.width) }

// Ports implements logicsim.Component.
//
func (a *Adder) Ports() []logicsim.Port { return a.ports }

// Propagate implements logicsim.Component.
//
func (a *Adder) Propagate(in logicsim.Inputs) (out logicsim.Output) {
	va, vb, vc := in.Value(2), in.Value(3), in.Value(4)
	x, okA := va.Uint()
	y, okB := vb.Uint()
	c, okC := vc.Uint()
	if !okA || !okB || !okC {
		fill := logicsim.Unknown
		if va.IsError() || vb.IsError() || vc.IsError() {
			fill = logicsim.Error
		}
		out.Set(0, logicsim.Repeat(fill, a.width), logicsim.DefaultDelay)
		out.Set(1, logicsim.Repeat(fill, 1), logicsim.DefaultDelay)
		return out
	}
	r := uint64(x) + uint64(y) + uint64(c)
	out.Set(0, logicsim.Known(a.width, uint32(r)), logicsim.DefaultDelay)
	out.Set(1, logicsim.Bool(r>>uint(a.width)&1 != 0), logicsim.DefaultDelay)
	return out
}
