// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"strings"

	"github.com/pkg/errors"
)

// A Bit is the state of a single bit in a Value.
//
type Bit uint8

// Bit states.
//
const (
	False Bit = iota
	True
	Unknown
	Error
)

func (b Bit) String() string {
	switch b {
	case False:
		return "0"
	case True:
		return "1"
	case Unknown:
		return "x"
	}
	return "E"
}

// MaxWidth is the maximum bit width of a Value.
//
const MaxWidth = 32

// A Value is an immutable vector of 1 to MaxWidth bits. Bit 0 is the least
// significant bit.
//
// Values are comparable: two values are equal if they have the same width and
// the same bit states. The zero Value has a width of 0 and stands for "no
// value".
//
type Value struct {
	width uint8
	err   uint32 // error bits
	unk   uint32 // unknown bits, never overlaps err
	val   uint32 // true bits, never overlaps err or unk
}

func mask(width int) uint32 {
	if width >= 32 {
		return ^uint32(0)
	}
	return 1<<uint(width) - 1
}

func checkWidth(width int) {
	if width < 1 || width > MaxWidth {
		panic(&WidthError{Op: "new", Got: width})
	}
}

func makeValue(width int, err, unk, val uint32) Value {
	checkWidth(width)
	m := mask(width)
	err &= m
	unk &= m &^ err
	val &= m &^ (err | unk)
	return Value{width: uint8(width), err: err, unk: unk, val: val}
}

// Known returns a fully defined value of the given width. Bits of v above
// width are ignored.
//
func Known(width int, v uint32) Value {
	return makeValue(width, 0, 0, v)
}

// Bool returns a 1 bit value.
//
func Bool(b bool) Value {
	if b {
		return Known(1, 1)
	}
	return Known(1, 0)
}

// Repeat returns a value of the given width where all bits are set to b.
//
func Repeat(b Bit, width int) Value {
	checkWidth(width)
	m := mask(width)
	switch b {
	case False:
		return makeValue(width, 0, 0, 0)
	case True:
		return makeValue(width, 0, 0, m)
	case Unknown:
		return makeValue(width, 0, m, 0)
	}
	return makeValue(width, m, 0, 0)
}

// UnknownValue returns a value of the given width with all bits Unknown.
//
func UnknownValue(width int) Value { return Repeat(Unknown, width) }

// ErrorValue returns a value of the given width with all bits set to Error.
//
func ErrorValue(width int) Value { return Repeat(Error, width) }

// FromBits builds a value from individual bits. bits[0] is the least
// significant bit.
//
func FromBits(bits ...Bit) Value {
	checkWidth(len(bits))
	var err, unk, val uint32
	for i, b := range bits {
		m := uint32(1) << uint(i)
		switch b {
		case True:
			val |= m
		case Unknown:
			unk |= m
		case Error:
			err |= m
		}
	}
	return makeValue(len(bits), err, unk, val)
}

// ParseValue parses a string of bits, most significant bit first. Valid bit
// characters are 0, 1, x or X (Unknown) and E or e (Error). Spaces and
// underscores are ignored.
//
func ParseValue(s string) (Value, error) {
	var bits []Bit
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case '0':
			bits = append(bits, False)
		case '1':
			bits = append(bits, True)
		case 'x', 'X':
			bits = append(bits, Unknown)
		case 'e', 'E':
			bits = append(bits, Error)
		case ' ', '_':
		default:
			return Value{}, errors.Errorf("invalid bit %q in %q", s[i], s)
		}
	}
	if len(bits) == 0 || len(bits) > MaxWidth {
		return Value{}, errors.Errorf("invalid value width %d in %q", len(bits), s)
	}
	return FromBits(bits...), nil
}

// MustParse is like ParseValue but panics on error.
//
func MustParse(s string) Value {
	v, err := ParseValue(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Width returns the bit width of v.
//
func (v Value) Width() int { return int(v.width) }

func (v Value) zero() uint32 {
	return mask(int(v.width)) &^ (v.err | v.unk | v.val)
}

// Get returns the state of bit i. Out of range bits are reported as Error.
//
func (v Value) Get(i int) Bit {
	if i < 0 || i >= int(v.width) {
		return Error
	}
	m := uint32(1) << uint(i)
	switch {
	case v.err&m != 0:
		return Error
	case v.unk&m != 0:
		return Unknown
	case v.val&m != 0:
		return True
	}
	return False
}

// Set returns a copy of v with bit i set to b.
//
func (v Value) Set(i int, b Bit) Value {
	if i < 0 || i >= int(v.width) {
		panic(errors.Errorf("bit index %d out of range for width %d", i, v.width))
	}
	m := uint32(1) << uint(i)
	err, unk, val := v.err&^m, v.unk&^m, v.val&^m
	switch b {
	case True:
		val |= m
	case Unknown:
		unk |= m
	case Error:
		err |= m
	}
	return makeValue(int(v.width), err, unk, val)
}

// Bits returns the individual bits of v, least significant bit first.
//
func (v Value) Bits() []Bit {
	bits := make([]Bit, v.width)
	for i := range bits {
		bits[i] = v.Get(i)
	}
	return bits
}

func (v Value) check(op string, o Value) {
	if v.width != o.width {
		panic(&WidthError{Op: op, Want: int(v.width), Got: int(o.width)})
	}
}

// Not returns the bitwise complement of v. Unknown and Error bits are left
// unchanged.
//
func (v Value) Not() Value {
	return makeValue(int(v.width), v.err, v.unk, v.zero())
}

// And returns the bitwise AND of v and o. An Error bit on either side yields
// Error, otherwise a False bit on either side yields False.
//
func (v Value) And(o Value) Value {
	v.check("and", o)
	m := mask(int(v.width))
	err := v.err | o.err
	zero := (v.zero() | o.zero()) &^ err
	one := v.val & o.val
	return makeValue(int(v.width), err, m&^(err|zero|one), one)
}

// Or returns the bitwise OR of v and o. An Error bit on either side yields
// Error, otherwise a True bit on either side yields True.
//
func (v Value) Or(o Value) Value {
	v.check("or", o)
	m := mask(int(v.width))
	err := v.err | o.err
	one := (v.val | o.val) &^ err
	zero := v.zero() & o.zero()
	return makeValue(int(v.width), err, m&^(err|zero|one), one)
}

// Xor returns the bitwise XOR of v and o. Any Unknown bit makes the result
// Unknown, any Error bit makes it Error.
//
func (v Value) Xor(o Value) Value {
	v.check("xor", o)
	err := v.err | o.err
	unk := (v.unk | o.unk) &^ err
	return makeValue(int(v.width), err, unk, v.val^o.val)
}

// Combine merges the values asserted by two drivers on the same net. Bits
// specified by only one driver take that driver's value, bits where both
// drivers agree keep their value, bits where they disagree become Error and
// bits that neither driver specifies remain Unknown.
//
func (v Value) Combine(o Value) Value {
	v.check("combine", o)
	m := mask(int(v.width))
	kv := m &^ (v.err | v.unk)
	ko := m &^ (o.err | o.unk)
	err := v.err | o.err | (v.val^o.val)&kv&ko
	unk := v.unk & o.unk
	return makeValue(int(v.width), err, unk, v.val|o.val)
}

// ExtendWidth returns v resized to width. New high bits are set to fill.
// If width is less than v's width, v is truncated.
//
func (v Value) ExtendWidth(width int, fill Bit) Value {
	w := int(v.width)
	if width == w {
		return v
	}
	if width < w {
		return makeValue(width, v.err, v.unk, v.val)
	}
	ext := mask(width) &^ mask(w)
	err, unk, val := v.err, v.unk, v.val
	switch fill {
	case True:
		val |= ext
	case Unknown:
		unk |= ext
	case Error:
		err |= ext
	}
	return makeValue(width, err, unk, val)
}

// IsFullyDefined returns true if all bits of v are either True or False.
//
func (v Value) IsFullyDefined() bool {
	return v.width > 0 && v.err == 0 && v.unk == 0
}

// IsError returns true if any bit of v is Error.
//
func (v Value) IsError() bool { return v.err != 0 }

// IsUnknown returns true if all bits of v are Unknown.
//
func (v Value) IsUnknown() bool {
	return v.width > 0 && v.unk == mask(int(v.width))
}

// Uint returns the integer value of v. ok is false if v is not fully defined.
//
func (v Value) Uint() (n uint32, ok bool) {
	if !v.IsFullyDefined() {
		return 0, false
	}
	return v.val, true
}

// String returns the bits of v, most significant bit first, in groups of 4.
//
func (v Value) String() string {
	if v.width == 0 {
		return "-"
	}
	var b strings.Builder
	for i := int(v.width) - 1; i >= 0; i-- {
		b.WriteString(v.Get(i).String())
		if i%4 == 0 && i != 0 {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// Hex returns a hexadecimal representation of v. Nibbles containing an Error
// bit are shown as E, nibbles with Unknown bits as x.
//
func (v Value) Hex() string {
	if v.width <= 1 {
		return v.String()
	}
	const digits = "0123456789abcdef"
	n := (int(v.width) + 3) / 4
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		m := uint32(0xf) << uint(4*i) & mask(int(v.width))
		c := digits[(v.val&m)>>uint(4*i)]
		switch {
		case v.err&m != 0:
			c = 'E'
		case v.unk&m != 0:
			c = 'x'
		}
		buf[n-1-i] = c
	}
	return string(buf)
}
