// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim_test

import (
	"testing"

	hw "github.com/db47h/logicsim"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bits = []hw.Bit{hw.False, hw.True, hw.Unknown, hw.Error}

func TestValue_truthTables(t *testing.T) {
	F, T, U, E := hw.False, hw.True, hw.Unknown, hw.Error
	td := []struct {
		name  string
		op    func(a, b hw.Value) hw.Value
		table [4][4]hw.Bit // indexed by a, b in the order F, T, U, E
	}{
		{"AND", hw.Value.And, [4][4]hw.Bit{
			{F, F, F, E},
			{F, T, U, E},
			{F, U, U, E},
			{E, E, E, E},
		}},
		{"OR", hw.Value.Or, [4][4]hw.Bit{
			{F, T, U, E},
			{T, T, T, E},
			{U, T, U, E},
			{E, E, E, E},
		}},
		{"XOR", hw.Value.Xor, [4][4]hw.Bit{
			{F, T, U, E},
			{T, F, U, E},
			{U, U, U, E},
			{E, E, E, E},
		}},
		{"Combine", hw.Value.Combine, [4][4]hw.Bit{
			{F, E, F, E},
			{E, T, T, E},
			{F, T, U, E},
			{E, E, E, E},
		}},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			for i, a := range bits {
				for j, b := range bits {
					got := d.op(hw.FromBits(a), hw.FromBits(b))
					assert.Equal(t, d.table[i][j], got.Get(0), "%s %s %s", a, d.name, b)
				}
			}
		})
	}
	t.Run("NOT", func(t *testing.T) {
		want := []hw.Bit{T, F, U, E}
		for i, a := range bits {
			assert.Equal(t, want[i], hw.FromBits(a).Not().Get(0), "NOT %s", a)
		}
	})
}

func TestValue_bitwise(t *testing.T) {
	a := hw.MustParse("10x1 E010")
	b := hw.MustParse("1100 0x11")
	assert.Equal(t, "1000 E010", a.And(b).String())
	assert.Equal(t, "11x1 Ex11", a.Or(b).String())
	assert.Equal(t, "01x1 Ex01", a.Xor(b).String())
	assert.Equal(t, "01x0 E101", a.Not().String())
	assert.Equal(t, hw.Known(8, 0x5a).Not(), hw.Known(8, 0xa5))
}

func TestValue_construct(t *testing.T) {
	assert.Equal(t, hw.Known(4, 5), hw.FromBits(hw.True, hw.False, hw.True, hw.False))
	assert.Equal(t, hw.Known(4, 0xf5), hw.Known(4, 5))
	assert.Equal(t, hw.Bool(true), hw.Known(1, 1))
	assert.Equal(t, "xxxx", hw.UnknownValue(4).String())
	assert.Equal(t, "EE", hw.ErrorValue(2).String())
	assert.Equal(t, "111", hw.Repeat(hw.True, 3).String())
	assert.Equal(t, "-", hw.Value{}.String())
	assert.Equal(t, 32, hw.Known(32, 0xffffffff).Width())

	for _, w := range []int{0, -1, 33} {
		assert.Panics(t, func() { hw.Known(w, 0) }, "width %d", w)
	}
}

func TestValue_parse(t *testing.T) {
	td := []struct {
		in   string
		want string
		w    int
	}{
		{"1", "1", 1},
		{"1x0E", "1x0E", 4},
		{"10110", "1 0110", 5},
		{"1111_0000 xxxx", "1111 0000 xxxx", 12},
	}
	for _, d := range td {
		v, err := hw.ParseValue(d.in)
		require.NoError(t, err, d.in)
		assert.Equal(t, d.want, v.String())
		assert.Equal(t, d.w, v.Width())
	}
	v := hw.MustParse("1x0E")
	assert.Equal(t, []hw.Bit{hw.Error, hw.False, hw.Unknown, hw.True}, v.Bits())

	for _, s := range []string{"", "  ", "102", "111111111111111111111111111111111"} {
		_, err := hw.ParseValue(s)
		assert.Error(t, err, "%q", s)
	}
}

func TestValue_getSet(t *testing.T) {
	v := hw.Known(4, 0)
	v = v.Set(3, hw.True).Set(1, hw.Unknown).Set(0, hw.Error)
	assert.Equal(t, "10xE", v.String())
	assert.Equal(t, hw.Error, v.Get(-1))
	assert.Equal(t, hw.Error, v.Get(4))
	assert.Panics(t, func() { v.Set(4, hw.True) })
	assert.Equal(t, "1000", v.Set(1, hw.False).Set(0, hw.False).String())
}

func TestValue_extendWidth(t *testing.T) {
	v := hw.Known(2, 3)
	assert.Equal(t, "xx11", v.ExtendWidth(4, hw.Unknown).String())
	assert.Equal(t, "0011", v.ExtendWidth(4, hw.False).String())
	assert.Equal(t, "1111", v.ExtendWidth(4, hw.True).String())
	assert.Equal(t, "E11", v.ExtendWidth(3, hw.Error).String())
	assert.Equal(t, "1", v.ExtendWidth(1, hw.False).String())
	assert.Equal(t, v, v.ExtendWidth(2, hw.Error))
	assert.Equal(t, 32, v.ExtendWidth(32, hw.False).Width())
}

func TestValue_predicates(t *testing.T) {
	n, ok := hw.Known(8, 0xa5).Uint()
	assert.True(t, ok)
	assert.Equal(t, uint32(0xa5), n)
	_, ok = hw.MustParse("1x").Uint()
	assert.False(t, ok)

	assert.True(t, hw.Known(3, 1).IsFullyDefined())
	assert.False(t, hw.MustParse("1x").IsFullyDefined())
	assert.False(t, hw.Value{}.IsFullyDefined())
	assert.True(t, hw.MustParse("1E").IsError())
	assert.False(t, hw.MustParse("1x").IsError())
	assert.True(t, hw.UnknownValue(3).IsUnknown())
	assert.False(t, hw.MustParse("x1").IsUnknown())
}

func TestValue_hex(t *testing.T) {
	assert.Equal(t, "a5", hw.Known(8, 0xa5).Hex())
	assert.Equal(t, "1f", hw.Known(5, 0x1f).Hex())
	assert.Equal(t, "1", hw.Known(1, 1).Hex())
	assert.Equal(t, "x5", hw.MustParse("x000 0101").Hex())
	assert.Equal(t, "Ex", hw.MustParse("E000 x101").Hex())
}

func TestValue_widthMismatch(t *testing.T) {
	a, b := hw.Known(2, 1), hw.Known(3, 1)
	for name, op := range map[string]func(a, b hw.Value) hw.Value{
		"and":     hw.Value.And,
		"or":      hw.Value.Or,
		"xor":     hw.Value.Xor,
		"combine": hw.Value.Combine,
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				r := recover()
				require.NotNil(t, r)
				err, ok := r.(error)
				require.True(t, ok)
				assert.True(t, errors.Is(err, hw.ErrWidthMismatch))
				var we *hw.WidthError
				require.True(t, errors.As(err, &we))
				assert.Equal(t, name, we.Op)
				assert.Equal(t, 2, we.Want)
				assert.Equal(t, 3, we.Got)
			}()
			op(a, b)
		})
	}
}
