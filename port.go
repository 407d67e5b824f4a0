// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import "strconv"

// A Location is a point on the circuit grid. Ports and wire endpoints sharing
// a location are connected.
//
type Location struct {
	X, Y int
}

// Loc returns the location (x, y).
//
func Loc(x, y int) Location { return Location{x, y} }

func (l Location) String() string {
	return "(" + strconv.Itoa(l.X) + "," + strconv.Itoa(l.Y) + ")"
}

// less orders locations by row, then column.
func (l Location) less(o Location) bool {
	if l.Y != o.Y {
		return l.Y < o.Y
	}
	return l.X < o.X
}

// Direction is the direction of a port relative to its component.
//
type Direction uint8

// Port directions.
//
const (
	DirInput Direction = iota
	DirOutput
	DirBoth
)

func (d Direction) String() string {
	switch d {
	case DirInput:
		return "in"
	case DirOutput:
		return "out"
	}
	return "inout"
}

// A Port is a connection point of a component.
//
// Exclusive ports must be the only active driver of the bits they drive:
// when an exclusive port and any other driver both assert a bit on the same
// net, that bit resolves to Error. Shared ports (tri-state buffers, pull
// resistors) only conflict when the values they drive disagree.
//
type Port struct {
	Loc       Location
	Width     int
	Dir       Direction
	Exclusive bool
}

// InPort returns an input port.
//
func InPort(at Location, width int) Port {
	return Port{Loc: at, Width: width, Dir: DirInput}
}

// OutPort returns an exclusive output port.
//
func OutPort(at Location, width int) Port {
	return Port{Loc: at, Width: width, Dir: DirOutput, Exclusive: true}
}

// BothPort returns a shared bidirectional port.
//
func BothPort(at Location, width int) Port {
	return Port{Loc: at, Width: width, Dir: DirBoth}
}

func (p Port) reads() bool  { return p.Dir != DirOutput }
func (p Port) drives() bool { return p.Dir != DirInput }
