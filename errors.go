// Package stride structured error types for kernel and memory failures
package stride

import (
	"fmt"
)

// ErrorType categorizes runtime errors.
type ErrorType int

const (
	// ErrTypeMemory covers allocation and pool failures.
	ErrTypeMemory ErrorType = iota
	// ErrTypeInvalidArg covers precondition violations caught at dispatch.
	ErrTypeInvalidArg
	// ErrTypeLaunch covers kernel launch failures. A launch failure aborts
	// the enclosing operation; the runtime never retries.
	ErrTypeLaunch
	// ErrTypeNumerical covers numerical verification failures.
	ErrTypeNumerical
	// ErrTypeDevice covers device selection and capability failures.
	ErrTypeDevice
)

// Error is a structured runtime error carrying the failing operation.
type Error struct {
	Type    ErrorType
	Op      string // Operation that failed
	Message string // Human-readable message
	Err     error  // Underlying error if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stride %s error in %s: %s (caused by: %v)",
			e.Type.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("stride %s error in %s: %s", e.Type.String(), e.Op, e.Message)
}

// Unwrap exposes the underlying error for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// String returns the error type name.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeMemory:
		return "Memory"
	case ErrTypeInvalidArg:
		return "InvalidArgument"
	case ErrTypeLaunch:
		return "Launch"
	case ErrTypeNumerical:
		return "Numerical"
	case ErrTypeDevice:
		return "Device"
	default:
		return "Unknown"
	}
}

// NewMemoryError creates a memory-related error.
func NewMemoryError(op, message string, err error) error {
	return &Error{Type: ErrTypeMemory, Op: op, Message: message, Err: err}
}

// NewInvalidArgError creates an invalid argument error.
func NewInvalidArgError(op, message string) error {
	return &Error{Type: ErrTypeInvalidArg, Op: op, Message: message}
}

// NewLaunchError creates a kernel launch error.
func NewLaunchError(op, message string, err error) error {
	return &Error{Type: ErrTypeLaunch, Op: op, Message: message, Err: err}
}

// NewNumericalError creates a numerical verification error.
func NewNumericalError(op, message string) error {
	return &Error{Type: ErrTypeNumerical, Op: op, Message: message}
}

// Pre-defined errors for common failure cases.
var (
	// ErrOutOfMemory indicates memory allocation failure.
	ErrOutOfMemory = NewMemoryError("Malloc", "out of memory", nil)

	// ErrInvalidSize indicates an invalid size parameter.
	ErrInvalidSize = NewInvalidArgError("Malloc", "size must be positive")

	// ErrNullPointer indicates nil device pointer access.
	ErrNullPointer = NewInvalidArgError("Memory", "null pointer")

	// ErrDoubleFree indicates a repeated Free of the same pointer.
	ErrDoubleFree = NewMemoryError("Free", "double free detected", nil)

	// ErrInvalidDevice indicates a device ID other than 0.
	ErrInvalidDevice = NewInvalidArgError("SetDevice", "invalid device ID")
)

// IsMemoryError reports whether err is a memory error.
func IsMemoryError(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Type == ErrTypeMemory
	}
	return false
}

// IsInvalidArgError reports whether err is an invalid argument error.
func IsInvalidArgError(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Type == ErrTypeInvalidArg
	}
	return false
}

// IsLaunchError reports whether err is a kernel launch error.
func IsLaunchError(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Type == ErrTypeLaunch
	}
	return false
}
