package openweather

import (
	"errors"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// outcome is the result of one stage of an operation: either a value, or a
// user-facing message with the HTTP status that caused it (zero if none)
type outcome[T any] struct {
	value   T
	message string
	status  int
	ok      bool
}

// operation identifies the provider endpoint being called
type operation int

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	opCurrent operation = iota
	opForecast
	opGeocode
	opAlerts
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func success[T any](value T) outcome[T] {
	return outcome[T]{value: value, ok: true}
}

func failure[T any](message string, status int) outcome[T] {
	return outcome[T]{message: message, status: status}
}

// then runs fn on the value of a successful outcome, and passes a failure
// through unchanged
func then[T, U any](o outcome[T], fn func(T) outcome[U]) outcome[U] {
	if !o.ok {
		return failure[U](o.message, o.status)
	}
	return fn(o.value)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// err returns the failure as an error, for span status
func (o outcome[T]) err() error {
	if o.ok {
		return nil
	}
	return errors.New(o.message)
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (op operation) String() string {
	switch op {
	case opCurrent:
		return "current"
	case opForecast:
		return "forecast"
	case opGeocode:
		return "geocode"
	case opAlerts:
		return "alerts"
	default:
		return "unknown"
	}
}

// text returns the rendered value or the failure message
func (o outcome[T]) text() string {
	if !o.ok {
		return o.message
	}
	if s, ok := any(o.value).(string); ok {
		return s
	}
	return msgUnexpected
}
