// Package aderr defines the structured error taxonomy shared by every
// algebra, tape, and backward-pass implementation in gad.
package aderr

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind classifies why an operation failed.
type Kind int

const (
	// DimensionMismatch is raised when a shape-aware operation sees
	// incompatible inputs.
	DimensionMismatch Kind = iota
	// UnsupportedOperation is raised when the datum type does not support
	// the requested primitive.
	UnsupportedOperation
	// MissingId is raised when a gradient is requested for a value that
	// was never recorded on a tape (a constant).
	MissingId
	// TapeSpent is raised when a second backward pass is attempted on a
	// tape already consumed by the one-shot variant.
	TapeSpent
	// Internal marks an invariant violation that should be unreachable.
	Internal
)

// String renders the kind for log messages and error text.
func (k Kind) String() string {
	switch k {
	case DimensionMismatch:
		return "dimension_mismatch"
	case UnsupportedOperation:
		return "unsupported_operation"
	case MissingId:
		return "missing_id"
	case TapeSpent:
		return "tape_spent"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// code maps a Kind onto the closest gRPC status code, so a host process can
// surface this taxonomy as a standard status without gad performing any RPC
// of its own.
func (k Kind) code() codes.Code {
	switch k {
	case DimensionMismatch:
		return codes.InvalidArgument
	case UnsupportedOperation:
		return codes.Unimplemented
	case MissingId:
		return codes.NotFound
	case TapeSpent:
		return codes.FailedPrecondition
	case Internal:
		return codes.Internal
	default:
		return codes.Unknown
	}
}

// Error is the concrete error type returned by every fallible operation in
// this module.
type Error struct {
	Kind  Kind
	msg   string
	cause error
}

// New constructs an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap constructs an Error of the given kind around an existing cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...), cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.cause)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error of the same Kind, so callers can
// write errors.Is(err, aderr.New(aderr.TapeSpent, "")).
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}

	return other.Kind == e.Kind
}

// GRPCStatus implements the interface google.golang.org/grpc/status.FromError
// looks for, letting a host expose this taxonomy as a standard gRPC status
// without gad depending on, or performing, any networked call itself.
func (e *Error) GRPCStatus() *status.Status {
	return status.New(e.Kind.code(), e.Error())
}
