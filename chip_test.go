// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim_test

import (
	"testing"

	hw "github.com/db47h/logicsim"
	hl "github.com/db47h/logicsim/hwlib"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inverter returns a circuit definition with one input and one output pin.
func inverter() *hw.Circuit {
	return hw.NewCircuit("inv").Add(
		hw.NewInputPin("in", 1, hw.Loc(0, 0)),
		hl.Not(1, hw.Loc(0, 0), hw.Loc(10, 0)),
		hw.NewOutputPin("out", 1, hw.Loc(10, 0)),
	)
}

func TestSubcircuit_ports(t *testing.T) {
	def := hw.NewCircuit("inv").Add(
		hw.NewInputPin("in", 4, hw.Loc(0, 0)),
		hl.Not(4, hw.Loc(0, 0), hw.Loc(10, 0)),
		hw.NewOutputPin("out", 4, hw.Loc(10, 0)),
	)
	_, err := hw.NewSubcircuit(def, hw.Loc(0, 0))
	assert.True(t, errors.Is(err, hw.ErrBadPort))

	sc, err := hw.NewSubcircuit(def, hw.Loc(100, 0), hw.Loc(200, 0))
	require.NoError(t, err)
	assert.Equal(t, "inv", sc.Name())
	assert.Same(t, def, sc.Definition())
	assert.Equal(t, []hw.Port{hw.InPort(hw.Loc(100, 0), 4), hw.OutPort(hw.Loc(200, 0), 4)}, sc.Ports())

	pins := def.Pins()
	require.Len(t, pins, 2)
	assert.Equal(t, "in:in", pins[0].Name())
	assert.Equal(t, "out:out", pins[1].Name())
	assert.False(t, pins[0].IsOutput())
	assert.True(t, pins[1].IsOutput())
}

func TestSubcircuit_isolation(t *testing.T) {
	inv := inverter()
	a := hw.NewInputPin("a", 1, hw.Loc(0, 0))
	b := hw.NewInputPin("b", 1, hw.Loc(0, 10))
	s1 := hw.MustSubcircuit(inv, hw.Loc(0, 0), hw.Loc(20, 0))
	s2 := hw.MustSubcircuit(inv, hw.Loc(0, 10), hw.Loc(20, 10))
	top := hw.NewCircuit("top").Add(a, b, s1, s2)
	p, err := hw.NewPropagator(top)
	require.NoError(t, err)
	root := p.Root()

	force(t, root, a, hw.Bool(true))
	force(t, root, b, hw.Bool(false))
	propagate(t, p)
	assert.Equal(t, "0", root.Value(hw.Loc(20, 0)).String())
	assert.Equal(t, "1", root.Value(hw.Loc(20, 10)).String())

	subs := root.Substates()
	require.Len(t, subs, 2)
	assert.Equal(t, "top/inv#2", subs[0].Path())
	assert.Equal(t, "top/inv#3", subs[1].Path())
	assert.True(t, subs[0].IsSubstate())
	assert.Same(t, root, subs[0].Parent())
	assert.Same(t, inv, subs[0].Circuit())
	assert.Equal(t, "1", subs[0].Value(hw.Loc(0, 0)).String())
	assert.Equal(t, "0", subs[1].Value(hw.Loc(0, 0)).String())
	st, err := root.Substate(s2)
	require.NoError(t, err)
	assert.Same(t, subs[1], st)

	err = subs[0].ForcePin(inv.Pins()[0], hw.Bool(false))
	assert.True(t, errors.Is(err, hw.ErrNotRoot))
	err = root.ForcePin(hw.NewInputPin("z", 1, hw.Loc(0, 0)), hw.Bool(false))
	assert.True(t, errors.Is(err, hw.ErrBadPort))
	err = root.ForcePin(inv.Pins()[1], hw.Bool(false))
	assert.True(t, errors.Is(err, hw.ErrOutputPin))
	err = root.ForcePin(a, hw.Known(2, 0))
	assert.True(t, errors.Is(err, hw.ErrWidthMismatch))

	force(t, root, b, hw.Bool(true))
	propagate(t, p)
	assert.Equal(t, "0", root.Value(hw.Loc(20, 0)).String())
	assert.Equal(t, "0", root.Value(hw.Loc(20, 10)).String())
}

func TestSubcircuit_nested(t *testing.T) {
	// two inverters in a row make a buffer
	inv := inverter()
	buf := hw.NewCircuit("buf").Add(
		hw.NewInputPin("in", 1, hw.Loc(0, 0)),
		hw.MustSubcircuit(inv, hw.Loc(0, 0), hw.Loc(10, 0)),
		hw.MustSubcircuit(inv, hw.Loc(10, 0), hw.Loc(20, 0)),
		hw.NewOutputPin("out", 1, hw.Loc(20, 0)),
	)
	in := hw.NewInputPin("x", 1, hw.Loc(0, 0))
	top := hw.NewCircuit("top").Add(in, hw.MustSubcircuit(buf, hw.Loc(0, 0), hw.Loc(50, 0)))
	p, err := hw.NewPropagator(top)
	require.NoError(t, err)

	for _, v := range []bool{true, false, true} {
		force(t, p.Root(), in, hw.Bool(v))
		propagate(t, p)
		assert.Equal(t, hw.Bool(v), p.Root().Value(hw.Loc(50, 0)))
	}
	var paths []string
	for _, s := range p.Root().Substates() {
		paths = append(paths, s.Path())
		for _, ss := range s.Substates() {
			paths = append(paths, ss.Path())
		}
	}
	assert.Equal(t, []string{"top/buf#1", "top/buf#1/inv#1", "top/buf#1/inv#2"}, paths)
}

func TestSubcircuit_clone(t *testing.T) {
	inv := inverter()
	a := hw.NewInputPin("a", 1, hw.Loc(0, 0))
	top := hw.NewCircuit("top").Add(a, hw.MustSubcircuit(inv, hw.Loc(0, 0), hw.Loc(20, 0)))
	p, err := hw.NewPropagator(top)
	require.NoError(t, err)
	propagate(t, p)

	// pending events, including events of the sub-circuit state, follow the
	// copy
	force(t, p.Root(), a, hw.Bool(true))
	fork := p.Clone()
	assert.Equal(t, p.Pending(), fork.Pending())
	propagate(t, fork)
	assert.Equal(t, "0", fork.Root().Value(hw.Loc(20, 0)).String())
	assert.Equal(t, "1", p.Root().Value(hw.Loc(20, 0)).String())
	assert.Equal(t, "1", fork.Root().Substates()[0].Value(hw.Loc(0, 0)).String())
	assert.Equal(t, "0", p.Root().Substates()[0].Value(hw.Loc(0, 0)).String())
}
