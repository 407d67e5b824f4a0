// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

// DefaultDelay is the propagation delay of most library components.
//
const DefaultDelay = 1

// Data is per-instance component state (register contents, previous clock
// level...). It is owned by a CircuitState and cloned along with it.
//
type Data interface {
	Clone() Data
}

// Inputs gives a component read access to its instance state during
// propagation.
//
type Inputs interface {
	// Value returns the current value of the net connected to the given
	// port.
	Value(port int) Value
	// Data returns the instance data set by a previous call to Propagate,
	// or nil.
	Data() Data
	// Ticks returns the current tick count of the simulation.
	Ticks() uint64
	// Now returns the current propagation time.
	Now() uint64
}

// An Effect schedules Value on the net attached to Port after Delay time
// units.
//
type Effect struct {
	Port  int
	Value Value
	Delay int
}

// Output is the result of a component evaluation.
//
type Output struct {
	Effects []Effect
	// Data replaces the instance data if not nil.
	Data Data
}

// Set appends an effect to o.
//
func (o *Output) Set(port int, v Value, delay int) {
	o.Effects = append(o.Effects, Effect{Port: port, Value: v, Delay: delay})
}

// A Component is the description of a circuit element. A single Component can
// be simulated in any number of circuit states: all instance state must be
// kept in the Data returned by Propagate, never in the Component itself.
//
// Components are compared by identity and must therefore be pointer types.
//
// Propagate is called every time the value of a net attached to one of its
// DirInput or DirBoth ports changes. Effects must use a delay of at least 1.
//
type Component interface {
	Name() string
	Ports() []Port
	Propagate(in Inputs) Output
}

// Clock is implemented by components that must be evaluated on every tick of
// the simulation, regardless of their inputs.
//
type Clock interface {
	Component
	TickSensitive() bool
}

// directWire is implemented by components whose outputs are wired directly
// to their source and may therefore use a zero delay.
type directWire interface {
	directWire()
}
