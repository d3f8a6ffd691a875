package engine

import (
	"errors"
	"fmt"
)

// Error types for the different lifecycle failure categories
var (
	ErrNotRunning        = errors.New("engine is not running")
	ErrStopped           = errors.New("engine has been stopped")
	ErrAlreadySetUp      = errors.New("engine setup already performed")
	ErrNotSetUp          = errors.New("engine setup has not been performed")
	ErrEmptyDatabaseName = errors.New("database name must not be empty")
)

// Error provides detailed information about engine lifecycle errors.
type Error struct {
	Op      string
	Message string
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap returns the underlying cause error
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewSetupError creates an error for failures while materializing the engine's
// runtime prerequisites.
func NewSetupError(message string, cause error) *Error {
	return &Error{Op: "setup", Message: message, Cause: cause}
}

// NewStartError creates an error for failures while launching the engine or
// waiting for it to report ready.
func NewStartError(message string, cause error) *Error {
	return &Error{Op: "start", Message: message, Cause: cause}
}

// NewStopError creates an error for failures during graceful shutdown.
func NewStopError(message string, cause error) *Error {
	return &Error{Op: "stop", Message: message, Cause: cause}
}

// NewAdminError creates an error for failed administrative operations.
func NewAdminError(op, message string, cause error) *Error {
	return &Error{Op: op, Message: message, Cause: cause}
}

// IsSetupError checks if an error originated in the setup step
func IsSetupError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Op == "setup"
}

// IsStartError checks if an error originated in the start step
func IsStartError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Op == "start"
}
