package hwlib_test

import (
	"testing"

	hw "github.com/db47h/logicsim"
)

// testPart wires a tri-state input pin to each input port of c, forces the
// given values in port order and returns the values of the output ports after
// propagation.
func testPart(t *testing.T, c hw.Component, in ...hw.Value) []hw.Value {
	t.Helper()
	p, pins := partPropagator(t, c)
	if len(in) != len(pins) {
		t.Fatalf("%s: %d values for %d inputs", c.Name(), len(in), len(pins))
	}
	for i, pin := range pins {
		if err := p.Root().ForcePin(pin, in[i]); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := p.Propagate(); err != nil {
		t.Fatal(err)
	}
	return outputs(p, c)
}

func partPropagator(t *testing.T, c hw.Component) (*hw.Propagator, []*hw.Pin) {
	t.Helper()
	circuit := hw.NewCircuit(c.Name()).Add(c)
	var pins []*hw.Pin
	for _, port := range c.Ports() {
		if port.Dir == hw.DirInput {
			pin := hw.NewInputPin(port.Loc.String(), port.Width, port.Loc, hw.WithTriState())
			pins = append(pins, pin)
			circuit.Add(pin)
		}
	}
	p, err := hw.NewPropagator(circuit)
	if err != nil {
		t.Fatal(err)
	}
	return p, pins
}

func outputs(p *hw.Propagator, c hw.Component) []hw.Value {
	var out []hw.Value
	for _, port := range c.Ports() {
		if port.Dir != hw.DirInput {
			out = append(out, p.Root().Value(port.Loc))
		}
	}
	return out
}

func values(ss ...string) []hw.Value {
	vs := make([]hw.Value, len(ss))
	for i, s := range ss {
		vs[i] = hw.MustParse(s)
	}
	return vs
}

func loc(x int) hw.Location { return hw.Loc(x, 0) }

func locs(n int) []hw.Location {
	ls := make([]hw.Location, n)
	for i := range ls {
		ls[i] = loc(10 * (i + 1))
	}
	return ls
}
