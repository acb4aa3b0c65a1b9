package errcode

import "errors"

// Code is a stable error identifier shared by every driver.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK          Code = "ok"
	Busy        Code = "busy"
	Unsupported Code = "unsupported"
	Timeout     Code = "timeout"
	InUse       Code = "in_use"
	Released    Code = "released"

	// Configuration
	InvalidConfig    Code = "invalid_config"
	InvalidFrequency Code = "invalid_frequency"
	InvalidLength    Code = "invalid_length"
	InvalidData      Code = "invalid_data"
	InvalidDuty      Code = "invalid_duty_cycle"
	InvalidChannel   Code = "invalid_channel"
	OscTimeout       Code = "osc_timeout"

	// Transfer
	Nack        Code = "nack"
	BusError    Code = "bus_error"
	Overrun     Code = "overrun"
	FrameError  Code = "frame_error"
	ParityError Code = "parity_error"
	NoData      Code = "no_data"

	Error Code = "error" // generic fallback
)

// E keeps an operation and an optional cause next to a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is match an *E against a bare Code.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	var e *E
	if errors.As(err, &e) {
		return e.C
	}
	return Error
}
