package resource

import (
	"errors"
	"fmt"
)

// ErrorClass classifies a property-marshalling error.
type ErrorClass string

const (
	// ErrorClassValidation indicates a malformed native value supplied by the
	// caller, such as an asset with an empty path. The current call fails but
	// the caller may correct the input and retry.
	ErrorClassValidation ErrorClass = "validation"

	// ErrorClassSerialization indicates a native value that has no wire
	// representation at all. The call fails; the value is never coerced.
	ErrorClassSerialization ErrorClass = "serialization"

	// ErrorClassProtocol indicates malformed data received from the engine,
	// such as an unrecognized signature. It is not locally recoverable and
	// usually means the two sides disagree on the protocol version.
	ErrorClassProtocol ErrorClass = "protocol"
)

// Error represents a classified property-marshalling error.
type Error struct {
	// Class is the error classification.
	Class ErrorClass

	// Message is the human-readable error message.
	Message string

	// Property is the property name or path involved, if known.
	Property string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Class, e.Message)
	if e.Property != "" {
		msg = fmt.Sprintf("%s (property=%s)", msg, e.Property)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err.Error())
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithProperty adds property context to an error.
func (e *Error) WithProperty(name string) *Error {
	e.Property = name
	return e
}

// NewValidationError creates a new validation error.
func NewValidationError(message string) *Error {
	return &Error{Class: ErrorClassValidation, Message: message}
}

// NewSerializationError creates a new serialization error.
func NewSerializationError(message string) *Error {
	return &Error{Class: ErrorClassSerialization, Message: message}
}

// NewProtocolError creates a new protocol error.
func NewProtocolError(message string) *Error {
	return &Error{Class: ErrorClassProtocol, Message: message}
}

// IsValidation returns true if the error is classified as a validation error.
func IsValidation(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Class == ErrorClassValidation
	}
	return false
}

// IsSerialization returns true if the error is classified as a serialization
// error.
func IsSerialization(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Class == ErrorClassSerialization
	}
	return false
}

// IsProtocol returns true if the error is classified as a protocol error.
func IsProtocol(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Class == ErrorClassProtocol
	}
	return false
}
