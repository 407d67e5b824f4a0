// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import "github.com/db47h/logicsim"

// Register is an edge triggered register.
//
//	Ports: 0 q, 1 d, 2 clk (1 bit), then en and clr (1 bit) if enabled.
//	Function: on clk rising edge, if en != 0 { q = d }. if clr == 1 { q = 0 }
//
// The register contents start at 0.
//
type Register struct {
	width int
	ports []logicsim.Port
	en    int // port index, 0 if none
	clr   int
}

// RegisterOption configures optional register ports.
//
type RegisterOption func(r *Register)

// Enable adds an enable input at location l. The register only latches its
// input on rising clock edges while enable is not 0.
//
func Enable(l logicsim.Location) RegisterOption {
	return func(r *Register) {
		r.en = len(r.ports)
		r.ports = append(r.ports, logicsim.InPort(l, 1))
	}
}

// Clear adds an asynchronous clear input at location l.
//
func Clear(l logicsim.Location) RegisterOption {
	return func(r *Register) {
		r.clr = len(r.ports)
		r.ports = append(r.ports, logicsim.InPort(l, 1))
	}
}

// NewRegister returns a new register.
//
func NewRegister(width int, d, clk, q logicsim.Location, opts ...RegisterOption) *Register {
	r := &Register{
		width: width,
		ports: []logicsim.Port{
			logicsim.OutPort(q, width),
			logicsim.InPort(d, width),
			logicsim.InPort(clk, 1),
		},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// DFF returns a 1 bit register.
//
//	Function: out(t) = in(t-1) // where t is the current clock cycle.
//
func DFF(d, clk, q logicsim.Location) *Register {
	return NewRegister(1, d, clk, q)
}

type regState struct {
	clk logicsim.Value
	q   logicsim.Value
}

func (s *regState) Clone() logicsim.Data { c := *s; return &c }

// Name implements logicsim.Component.
//
func (r *Register) Name() string {
	if r.width == 1 {
		return "DFF"
	}
	return "REG"
}

// Ports implements logicsim.Component.
//
func (r *Register) Ports() []logicsim.Port { return r.ports }

// Propagate implements logicsim.Component.
//
func (r *Register) Propagate(in logicsim.Inputs) (out logicsim.Output) {
	st := regState{clk: logicsim.UnknownValue(1), q: logicsim.Known(r.width, 0)}
	if d, ok := in.Data().(*regState); ok {
		st = *d
	}
	clk := in.Value(2)
	rising := st.clk.Get(0) == logicsim.False && clk.Get(0) == logicsim.True
	st.clk = clk
	switch {
	case r.clr != 0 && in.Value(r.clr).Get(0) == logicsim.True:
		st.q = logicsim.Known(r.width, 0)
	case rising && (r.en == 0 || in.Value(r.en).Get(0) != logicsim.False):
		st.q = in.Value(1)
	}
	out.Set(0, st.q, logicsim.DefaultDelay)
	out.Data = &st
	return out
}
