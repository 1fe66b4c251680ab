// Package errs defines the error taxonomy shared by all sqlforge packages.
// Every error produced by the library wraps one of the sentinels below, so
// callers can classify failures with errors.Is regardless of which component
// raised them.
package errs

import (
	"errors"
	"fmt"
)

// Predefined errors returned by sqlforge operations.
var (
	// ErrInvalidArgument is returned when a caller passes a structurally
	// invalid value: a nil collection, a non-positive limit, a negative
	// offset, an empty identifier, or an unknown logical connector.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnsupportedOperation is returned when the active dialect cannot
	// express a requested SQL construct.
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// ErrUnknownDialect is returned when a dialect name has not been registered.
	ErrUnknownDialect = errors.New("unknown dialect")
)

// InvalidArgumentf returns an error wrapping ErrInvalidArgument with a
// formatted detail message.
func InvalidArgumentf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// Unsupportedf returns an error wrapping ErrUnsupportedOperation. The message
// names the dialect and the construct it cannot express.
func Unsupportedf(dialect, construct string) error {
	return fmt.Errorf("%w: %s cannot express %s", ErrUnsupportedOperation, dialect, construct)
}

// UnknownDialectf returns an error wrapping ErrUnknownDialect.
func UnknownDialectf(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownDialect, name)
}
