// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import "strconv"

// Pull is the level undriven bits settle to, on input pins and pull resistors.
//
type Pull uint8

// Pull policies.
//
const (
	PullDown Pull = iota
	PullUp
)

// A Pin is a circuit input or output. Input pins are forced from outside
// the simulation on root states, and follow the value of the parent net in
// sub-circuit states. Output pins expose a net to the parent circuit.
//
// Pins connect directly to their net: their effects use a zero delay.
//
type Pin struct {
	label    string
	width    int
	at       Location
	output   bool
	pull     Pull
	triState bool
}

// PinOption configures an input pin.
//
type PinOption func(*Pin)

// WithPull sets the value taken by undriven bits of an input pin.
//
func WithPull(p Pull) PinOption {
	return func(pin *Pin) { pin.pull = p }
}

// WithTriState makes undriven bits of an input pin float (Unknown) instead of
// being pulled.
//
func WithTriState() PinOption {
	return func(pin *Pin) { pin.triState = true }
}

// NewInputPin returns a new input pin. Unless forced, the pin drives all zeros
// (or ones with WithPull(PullUp)).
//
func NewInputPin(label string, width int, at Location, opts ...PinOption) *Pin {
	checkWidth(width)
	p := &Pin{label: label, width: width, at: at}
	for _, o := range opts {
		o(p)
	}
	return p
}

// NewOutputPin returns a new output pin.
//
func NewOutputPin(label string, width int, at Location) *Pin {
	checkWidth(width)
	return &Pin{label: label, width: width, at: at, output: true}
}

// Name implements Component.
//
func (p *Pin) Name() string {
	if p.output {
		return "out:" + p.label
	}
	return "in:" + p.label
}

// Label returns the pin label.
//
func (p *Pin) Label() string { return p.label }

// Width returns the pin width.
//
func (p *Pin) Width() int { return p.width }

// Loc returns the pin location.
//
func (p *Pin) Loc() Location { return p.at }

// IsOutput returns true for output pins.
//
func (p *Pin) IsOutput() bool { return p.output }

// Ports implements Component. Input pins drive their net through an exclusive
// port.
//
func (p *Pin) Ports() []Port {
	if p.output {
		return []Port{InPort(p.at, p.width)}
	}
	return []Port{OutPort(p.at, p.width)}
}

// Propagate implements Component.
//
func (p *Pin) Propagate(in Inputs) (out Output) {
	if p.output {
		out.Data = &pinState{in.Value(0)}
		return out
	}
	v := UnknownValue(p.width)
	if d, ok := in.Data().(*pinState); ok {
		v = d.v
	}
	out.Set(0, p.pulled(v), 0)
	return out
}

func (p *Pin) pulled(v Value) Value {
	if p.triState || v.unk == 0 {
		return v
	}
	if p.pull == PullUp {
		return makeValue(p.width, v.err, 0, v.val|v.unk)
	}
	return makeValue(p.width, v.err, 0, v.val)
}

func (*Pin) directWire() {}

func (p *Pin) String() string {
	return p.Name() + "[" + strconv.Itoa(p.width) + "]@" + p.at.String()
}

// pinState is the instance data of a pin: the forced value of input pins,
// the observed value of output pins.
type pinState struct {
	v Value
}

func (s *pinState) Clone() Data { c := *s; return &c }
