package core

import (
	"github.com/coregx/sqlforge/internal/dialects"
	"github.com/coregx/sqlforge/internal/errs"
)

// argPanicf raises an invalid-argument error. Fluent builder methods cannot
// return errors, so structural misuse surfaces as a panic at the offending
// call; the recovered value wraps errs.ErrInvalidArgument.
func argPanicf(format string, args ...interface{}) {
	panic(errs.InvalidArgumentf(format, args...))
}

// unsupportedPanic raises an unsupported-operation error naming both the
// dialect and the construct it cannot express.
func unsupportedPanic(d dialects.Dialect, construct string) {
	panic(errs.Unsupportedf(d.Name(), construct))
}
