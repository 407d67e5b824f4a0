// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/logicsim"
)

// Constant drives a fixed value.
//
type Constant struct {
	v     logicsim.Value
	ports []logicsim.Port
}

// NewConstant returns a component driving v at location out.
//
func NewConstant(v logicsim.Value, out logicsim.Location) *Constant {
	return &Constant{v: v, ports: []logicsim.Port{logicsim.OutPort(out, v.Width())}}
}

// Name implements logicsim.Component.
//
func (c *Constant) Name() string { return "CONST " + c.v.Hex() }

// Ports implements logicsim.Component.
//
func (c *Constant) Ports() []logicsim.Port { return c.ports }

// Propagate implements logicsim.Component.
//
func (c *Constant) Propagate(logicsim.Inputs) (out logicsim.Output) {
	out.Set(0, c.v, logicsim.DefaultDelay)
	return out
}

// Clock is a clock source driven by the simulation tick count. Its output is
// low for lo ticks, then high for hi ticks.
//
type Clock struct {
	hi, lo uint64
	ports  []logicsim.Port
}

// NewClock returns a new clock. hi and lo are the number of ticks spent at
// each level. Values lower than 1 are set to 1.
//
func NewClock(hi, lo int, out logicsim.Location) *Clock {
	if hi < 1 {
		hi = 1
	}
	if lo < 1 {
		lo = 1
	}
	return &Clock{hi: uint64(hi), lo: uint64(lo), ports: []logicsim.Port{logicsim.OutPort(out, 1)}}
}

// Name implements logicsim.Component.
//
func (c *Clock) Name() string {
	return "CLK" + strconv.FormatUint(c.hi, 10) + "/" + strconv.FormatUint(c.lo, 10)
}

// Ports implements logicsim.Component.
//
func (c *Clock) Ports() []logicsim.Port { return c.ports }

// TickSensitive implements logicsim.Clock.
//
func (*Clock) TickSensitive() bool { return true }

// Propagate implements logicsim.Component.
//
func (c *Clock) Propagate(in logicsim.Inputs) (out logicsim.Output) {
	out.Set(0, logicsim.Bool(in.Ticks()%(c.hi+c.lo) >= c.lo), logicsim.DefaultDelay)
	return out
}
