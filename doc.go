// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

/*
Package logicsim is a discrete-event simulator for digital logic circuits.

Signals are multi-bit Values where each bit is either 0, 1, unknown (x) or
error (E). Components are connected by wires laid out on an integer grid;
ports and wire endpoints at the same Location belong to the same net. When
several components drive the same net, their values are combined and
conflicting bits resolve to Error.

Splitters join the bits of buses of different widths, tunnels join nets by
label and pull resistors give undriven bits a default level. These connectors
have no delay and are never evaluated.

A Propagator evaluates only the components whose inputs changed and schedules
their outputs after a per-component delay. Propagation runs until no events
remain, or stops once a step limit is reached on oscillating circuits.

Circuit definitions can be reused as sub-circuits in other circuits. Each
instance gets its own CircuitState so that instances of the same definition
never share values.

The Simulator type wraps a Propagator for interactive or timed use:

	sim, err := logicsim.NewSimulator(c)
	if err != nil {
		// handle error
	}
	sim.Force(pinA, logicsim.Known(1, 1))
	report, err := sim.Step(ctx)

Package hwlib provides a set of standard components: gates, buffers,
multiplexers, clocks and registers.
*/
package logicsim
