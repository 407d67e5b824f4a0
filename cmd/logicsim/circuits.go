// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"context"
	"sort"
	"strconv"

	"github.com/db47h/logicsim"
	"github.com/db47h/logicsim/hwlib"
	"github.com/pkg/errors"
)

// a probe is a named location whose value is displayed after each tick.
type probe struct {
	name string
	loc  logicsim.Location
}

type sample struct {
	desc  string
	build func() (*logicsim.Circuit, []probe, setupFn)
}

// setupFn forces initial pin values before the first tick.
type setupFn func(ctx context.Context, sim *logicsim.Simulator) error

var samples = map[string]sample{
	"xor": {
		desc:  "XOR gate built from NOT, AND and OR gates, driven by two clocks",
		build: xorCircuit,
	},
	"counter": {
		desc:  "4 bits counter: registers, four instances of a half adder sub-circuit and a splitter",
		build: counterCircuit,
	},
	"oscillator": {
		desc:  "NOR gate looped on itself, enabled after the first tick",
		build: oscillatorCircuit,
	},
	"short": {
		desc:  "two input pins driving the same net",
		build: shortCircuit,
	},
}

func sampleNames() []string {
	names := make([]string, 0, len(samples))
	for n := range samples {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func lookup(name string) (sample, error) {
	s, ok := samples[name]
	if !ok {
		return sample{}, errors.Errorf("unknown circuit %q", name)
	}
	return s, nil
}

func xorCircuit() (*logicsim.Circuit, []probe, setupFn) {
	s := logicsim.NewSocket()
	c := logicsim.NewCircuit("xor").Add(
		hwlib.NewClock(1, 1, s.Loc("a")),
		hwlib.NewClock(2, 2, s.Loc("b")),
		hwlib.Not(1, s.Loc("a"), s.Loc("nota")),
		hwlib.Not(1, s.Loc("b"), s.Loc("notb")),
		hwlib.And(1, s.Loc("w1"), s.Locs("a", "notb")...),
		hwlib.And(1, s.Loc("w2"), s.Locs("b", "nota")...),
		hwlib.Or(1, s.Loc("out"), s.Locs("w1", "w2")...),
	)
	return c, probes(s, "a", "b", "out"), nil
}

func counterCircuit() (*logicsim.Circuit, []probe, setupFn) {
	ha := hwlib.HalfAdder()
	s := logicsim.NewSocket()
	c := logicsim.NewCircuit("counter").Add(
		hwlib.NewClock(1, 1, s.Loc("clk")),
		hwlib.NewConstant(logicsim.Known(1, 1), s.Loc("c-1")),
	)
	names := []string{"clk"}
	var bits []logicsim.SplitEnd
	for i := 0; i < 4; i++ {
		n := strconv.Itoa(i)
		q, d, carry, cin := "q"+n, "d"+n, "c"+n, "c"+strconv.Itoa(i-1)
		c.Add(
			logicsim.MustSubcircuit(ha, s.Locs(q, cin, d, carry)...),
			hwlib.DFF(s.Loc(d), s.Loc("clk"), s.Loc(q)),
		)
		names = append(names, q)
		bits = append(bits, logicsim.End(s.Loc(q), i))
	}
	c.Add(logicsim.NewSplitter(4, s.Loc("n"), bits...))
	return c, probes(s, append(names, "n")...), nil
}

func oscillatorCircuit() (*logicsim.Circuit, []probe, setupFn) {
	s := logicsim.NewSocket()
	en := logicsim.NewInputPin("en", 1, s.Loc("en"))
	c := logicsim.NewCircuit("oscillator").Add(
		en,
		hwlib.Nor(1, s.Loc("x"), s.Locs("en", "x")...),
	)
	setup := func(ctx context.Context, sim *logicsim.Simulator) error {
		if err := sim.Force(en, logicsim.Known(1, 1)); err != nil {
			return err
		}
		if _, err := sim.Step(ctx); err != nil {
			return err
		}
		return sim.Force(en, logicsim.Known(1, 0))
	}
	return c, probes(s, "en", "x"), setup
}

func shortCircuit() (*logicsim.Circuit, []probe, setupFn) {
	s := logicsim.NewSocket()
	a := logicsim.NewInputPin("a", 4, s.Loc("bus"))
	b := logicsim.NewInputPin("b", 4, s.Loc("bus"), logicsim.WithTriState())
	c := logicsim.NewCircuit("short").Add(a, b)
	setup := func(ctx context.Context, sim *logicsim.Simulator) error {
		if err := sim.Force(a, logicsim.MustParse("1100")); err != nil {
			return err
		}
		return sim.Force(b, logicsim.MustParse("xx00"))
	}
	return c, probes(s, "bus"), setup
}

func probes(s *logicsim.Socket, names ...string) []probe {
	ps := make([]probe, len(names))
	for i, n := range names {
		ps[i] = probe{n, s.Loc(n)}
	}
	return ps
}
