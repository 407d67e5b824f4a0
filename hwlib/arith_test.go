package hwlib_test

import (
	"strconv"
	"testing"
	"testing/quick"

	hw "github.com/db47h/logicsim"
	hl "github.com/db47h/logicsim/hwlib"
	"github.com/db47h/logicsim/hwtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullAdder(t *testing.T) {
	add := hl.NewAdder(1, loc(0), loc(10), loc(20), loc(30), loc(40))
	hwtest.ComparePart(t, hwtest.Wrap("ADD1", add, "s", "cout", "a", "b", "cin"), hl.FullAdder())
}

func TestHalfAdder(t *testing.T) {
	ha := hl.HalfAdder()
	s := hw.NewSocket()
	xor := hw.NewCircuit("XorAnd").Add(
		hw.NewInputPin("a", 1, s.Loc("a")),
		hw.NewInputPin("b", 1, s.Loc("b")),
		hw.NewOutputPin("s", 1, s.Loc("s")),
		hw.NewOutputPin("c", 1, s.Loc("c")),
		hl.Or(1, s.Loc("or"), s.Locs("a", "b")...),
		hl.Nand(1, s.Loc("nand"), s.Locs("a", "b")...),
		hl.And(1, s.Loc("s"), s.Locs("or", "nand")...),
		hl.Not(1, s.Loc("nand"), s.Loc("c")),
	)
	hwtest.ComparePart(t, ha, xor)
}

func TestRippleAdder(t *testing.T) {
	const bits = 4
	c := hl.RippleAdder(bits)
	pins := make(map[string]*hw.Pin)
	for _, p := range c.Pins() {
		pins[p.Label()] = p
	}
	p, err := hw.NewPropagator(c)
	require.NoError(t, err)
	root := p.Root()

	for x := uint32(0); x < 1<<(2*bits+1); x++ {
		a, b, cin := x&0xf, x>>bits&0xf, x>>(2*bits)
		for i := 0; i < bits; i++ {
			n := strconv.Itoa(i)
			require.NoError(t, root.ForcePin(pins["a"+n], hw.Known(1, a>>uint(i))))
			require.NoError(t, root.ForcePin(pins["b"+n], hw.Known(1, b>>uint(i))))
		}
		require.NoError(t, root.ForcePin(pins["cin"], hw.Known(1, cin)))
		r, err := p.Propagate()
		require.NoError(t, err)
		require.Equal(t, hw.StatusStable, r.Status)

		var sum uint32
		for i := 0; i < bits; i++ {
			v, ok := root.Value(pins["s"+strconv.Itoa(i)].Loc()).Uint()
			require.True(t, ok)
			sum |= v << uint(i)
		}
		cout, ok := root.Value(pins["cout"].Loc()).Uint()
		require.True(t, ok)
		want := a + b + cin
		if sum|cout<<bits != want {
			t.Fatalf("%d + %d + %d = %d, got %d", a, b, cin, want, sum|cout<<bits)
		}
	}
}

func TestAdder(t *testing.T) {
	add := hl.NewAdder(8, loc(10), loc(20), loc(30), loc(0), loc(40))
	assert.Equal(t, "ADD8", add.Name())
	p, pins := partPropagator(t, add)
	f := func(a, b uint8, cin bool) bool {
		c := uint32(0)
		if cin {
			c = 1
		}
		for i, v := range []hw.Value{hw.Known(8, uint32(a)), hw.Known(8, uint32(b)), hw.Known(1, c)} {
			if err := p.Root().ForcePin(pins[i], v); err != nil {
				t.Fatal(err)
			}
		}
		if _, err := p.Propagate(); err != nil {
			t.Fatal(err)
		}
		out := outputs(p, add)
		r := uint32(a) + uint32(b) + c
		return out[0] == hw.Known(8, r) && out[1] == hw.Bool(r > 0xff)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}

	out := testPart(t, add, values("0000 0001", "0000 x001", "0")...)
	assert.Equal(t, "xxxx xxxx", out[0].String())
	assert.Equal(t, "x", out[1].String())
	out = testPart(t, add, values("0000 0001", "0000 x001", "E")...)
	assert.Equal(t, "EEEE EEEE", out[0].String())
	assert.Equal(t, "E", out[1].String())
}
