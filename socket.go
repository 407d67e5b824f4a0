// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import "sort"

// A Socket maps net names to distinct locations. It allows building circuits
// by naming nets instead of laying out wires:
//
//	s := logicsim.NewSocket()
//	c := logicsim.NewCircuit("xor")
//	c.Add(
//		logicsim.NewInputPin("a", 1, s.Loc("a")),
//		logicsim.NewInputPin("b", 1, s.Loc("b")),
//		hwlib.Xor(1, s.Loc("out"), s.Locs("a", "b")...),
//		logicsim.NewOutputPin("out", 1, s.Loc("out")),
//	)
//
// Locations are allocated on the row Y = 0, 10 units apart.
//
type Socket struct {
	m map[string]Location
}

// NewSocket returns a new empty socket.
//
func NewSocket() *Socket {
	return &Socket{m: make(map[string]Location)}
}

// Loc returns the location allocated to the given net name. A new location is
// allocated on first use.
//
func (s *Socket) Loc(name string) Location {
	l, ok := s.m[name]
	if !ok {
		l = Location{X: len(s.m) * 10}
		s.m[name] = l
	}
	return l
}

// Locs returns the locations allocated to the given net names.
//
func (s *Socket) Locs(names ...string) []Location {
	ls := make([]Location, len(names))
	for i, n := range names {
		ls[i] = s.Loc(n)
	}
	return ls
}

// Has returns true if a location has been allocated to name.
//
func (s *Socket) Has(name string) bool {
	_, ok := s.m[name]
	return ok
}

// Names returns the allocated net names, sorted.
//
func (s *Socket) Names() []string {
	ns := make([]string, 0, len(s.m))
	for n := range s.m {
		ns = append(ns, n)
	}
	sort.Strings(ns)
	return ns
}
