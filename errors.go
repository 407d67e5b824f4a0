// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"strconv"

	"github.com/pkg/errors"
)

// Sentinel errors. Errors returned by this package wrap one of these and can be
// tested with errors.Is.
//
var (
	ErrWidthMismatch = errors.New("width mismatch")
	ErrBadPort       = errors.New("invalid port")
	ErrBadDelay      = errors.New("invalid delay")
	ErrNotRoot       = errors.New("not a root state")
	ErrOutputPin     = errors.New("output pins cannot be forced")
	ErrStale         = errors.New("circuit modified since propagator creation")
	ErrDetached      = errors.New("state is not attached to a propagator")
	ErrRunning       = errors.New("simulator already running")
	ErrRecursive     = errors.New("recursive circuit definition")
)

// WidthError reports operands or ports of different bit widths.
//
type WidthError struct {
	Op   string
	Want int
	Got  int
}

func (e *WidthError) Error() string {
	if e.Want == 0 {
		return e.Op + ": invalid width " + strconv.Itoa(e.Got)
	}
	return e.Op + ": width mismatch: want " + strconv.Itoa(e.Want) + ", got " + strconv.Itoa(e.Got)
}

// Unwrap returns ErrWidthMismatch.
//
func (e *WidthError) Unwrap() error { return ErrWidthMismatch }

// FaultError is returned by the propagator when a component breaks its
// contract: it panics, returns effects on invalid ports, with a wrong width or
// with an illegal delay. The step in progress is aborted.
//
type FaultError struct {
	Path      string // path of the state the component belongs to
	Component string // component name
	Err       error
}

func (e *FaultError) Error() string {
	return e.Path + ": " + e.Component + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
//
func (e *FaultError) Unwrap() error { return e.Err }

// Cause implements the causer interface of github.com/pkg/errors.
//
func (e *FaultError) Cause() error { return e.Err }
