package table

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports an unknown method/option string or an unknown column.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrTypeCoercion reports a cell that cannot be cast to the requested kind.
	ErrTypeCoercion = errors.New("type coercion failure")
)

// ArgumentError describes a rejected parameter. It matches ErrInvalidArgument.
type ArgumentError struct {
	Op     string
	Arg    string
	Reason string
}

func (e *ArgumentError) Error() string {
	if e.Arg == "" {
		return fmt.Sprintf("%s: invalid argument: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s: invalid argument %q: %s", e.Op, e.Arg, e.Reason)
}

func (e *ArgumentError) Unwrap() error { return ErrInvalidArgument }

// Invalid builds an *ArgumentError.
func Invalid(op, arg, format string, args ...any) error {
	return &ArgumentError{Op: op, Arg: arg, Reason: fmt.Sprintf(format, args...)}
}

// CoercionError reports the first cell a strict conversion could not cast.
// It matches ErrTypeCoercion.
type CoercionError struct {
	Column string
	Row    int
	Value  any
	Target Kind
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("column %q row %d: cannot convert %v to %s", e.Column, e.Row, e.Value, e.Target)
}

func (e *CoercionError) Unwrap() error { return ErrTypeCoercion }
