// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides utility functions for testing circuits.
//
package hwtest

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/db47h/logicsim"
	"github.com/pkg/errors"
)

// maximum number of input bits tested exhaustively.
const maxExhaustive = 12

type pinInfo struct {
	label string
	width int
}

func pinList(c *logicsim.Circuit) (ins, outs []pinInfo) {
	for _, p := range c.Pins() {
		pi := pinInfo{p.Label(), p.Width()}
		if p.IsOutput() {
			outs = append(outs, pi)
		} else {
			ins = append(ins, pi)
		}
	}
	sort.Slice(ins, func(i, j int) bool { return ins[i].label < ins[j].label })
	sort.Slice(outs, func(i, j int) bool { return outs[i].label < outs[j].label })
	return ins, outs
}

func samePins(kind string, a, b []pinInfo) error {
	if len(a) != len(b) {
		return errors.Errorf("%s pin count mismatch: %d != %d", kind, len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			return errors.Errorf("%s pin mismatch: %s[%d] != %s[%d]", kind, a[i].label, a[i].width, b[i].label, b[i].width)
		}
	}
	return nil
}

// Wrap returns a circuit definition containing component c and one pin per
// port of c, named after labels. Input ports get input pins, output ports get
// output pins. Wrap panics if c has bidirectional ports or if the number of
// labels does not match the number of ports.
//
func Wrap(name string, c logicsim.Component, labels ...string) *logicsim.Circuit {
	ps := c.Ports()
	if len(ps) != len(labels) {
		panic(errors.Errorf("%s: %d labels for %d ports", name, len(labels), len(ps)))
	}
	w := logicsim.NewCircuit(name).Add(c)
	for i, p := range ps {
		switch p.Dir {
		case logicsim.DirInput:
			w.Add(logicsim.NewInputPin(labels[i], p.Width, p.Loc, logicsim.WithTriState()))
		case logicsim.DirOutput:
			w.Add(logicsim.NewOutputPin(labels[i], p.Width, p.Loc))
		default:
			panic(errors.Errorf("%s: port %d is bidirectional", name, i))
		}
	}
	return w
}

// Compare instantiates circuit definitions a and b as sub-circuits sharing the
// same input pins and compares their outputs for a set of input values.
// Pins are matched by label. If the total number of input bits is 12 or less,
// all input combinations are tried, otherwise 4096 random inputs generated
// from seed are tried.
//
// Compare returns the number of input combinations tested and an error
// describing the first mismatch.
//
func Compare(a, b *logicsim.Circuit, seed int64) (int, error) {
	ins, outs := pinList(a)
	ins2, outs2 := pinList(b)
	if err := samePins("input", ins, ins2); err != nil {
		return 0, err
	}
	if err := samePins("output", outs, outs2); err != nil {
		return 0, err
	}

	s := logicsim.NewSocket()
	top := logicsim.NewCircuit("compare")
	pins := make([]*logicsim.Pin, len(ins))
	nbits := 0
	for i, p := range ins {
		pins[i] = logicsim.NewInputPin(p.label, p.width, s.Loc(p.label))
		top.Add(pins[i])
		nbits += p.width
	}
	for _, d := range []struct {
		def    *logicsim.Circuit
		prefix string
	}{{a, "1."}, {b, "2."}} {
		var locs []logicsim.Location
		for _, p := range d.def.Pins() {
			if p.IsOutput() {
				locs = append(locs, s.Loc(d.prefix+p.Label()))
			} else {
				locs = append(locs, s.Loc(p.Label()))
			}
		}
		sc, err := logicsim.NewSubcircuit(d.def, locs...)
		if err != nil {
			return 0, err
		}
		top.Add(sc)
	}

	sim, err := logicsim.NewSimulator(top)
	if err != nil {
		return 0, err
	}
	ctx := context.Background()

	iter := 1 << uint(maxExhaustive)
	exhaustive := nbits <= maxExhaustive
	if exhaustive {
		iter = 1 << uint(nbits)
	}
	rng := rand.New(rand.NewSource(seed))
	vals := make([]logicsim.Value, len(pins))
	for i := 0; i < iter; i++ {
		x := uint64(i)
		for k, p := range pins {
			if exhaustive {
				vals[k] = logicsim.Known(p.Width(), uint32(x))
				x >>= uint(p.Width())
			} else {
				vals[k] = logicsim.Known(p.Width(), rng.Uint32())
			}
			if err = sim.Force(p, vals[k]); err != nil {
				return i, err
			}
		}
		r, err := sim.Step(ctx)
		if err != nil {
			return i, err
		}
		if r.Status != logicsim.StatusStable {
			return i, errors.Errorf("inputs %s: circuit does not stabilize", inputString(ins, vals))
		}
		for _, o := range outs {
			v1, v2 := sim.Value(s.Loc("1."+o.label)), sim.Value(s.Loc("2."+o.label))
			if v1 != v2 {
				return i, errors.Errorf("inputs %s: %s: %s = %s, %s = %s",
					inputString(ins, vals), o.label, a.Name(), v1, b.Name(), v2)
			}
		}
	}
	return iter, nil
}

func inputString(ins []pinInfo, vals []logicsim.Value) string {
	var b strings.Builder
	for i, p := range ins {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.label)
		b.WriteRune('=')
		b.WriteString(vals[i].String())
	}
	return b.String()
}

// ComparePart compares the outputs of two circuit definitions given the same
// inputs and fails the test on the first mismatch. See Compare.
//
func ComparePart(t *testing.T, a, b *logicsim.Circuit) {
	t.Helper()
	start := time.Now()
	n, err := Compare(a, b, time.Now().UnixNano())
	if err != nil {
		t.Fatalf("%s vs. %s: %v", a.Name(), b.Name(), err)
	}
	t.Logf("%s vs. %s: %d input combinations in %v", a.Name(), b.Name(), n, time.Since(start))
}
