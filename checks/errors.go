package checks

import (
	"fmt"

	"github.com/pkg/errors"
)

// RecoverableError is a check failure that doesn't prevent the remaining checks from running.
type RecoverableError struct {
	message string
	cause   error
}

// Error returns the error message for a RecoverableError.
func (e RecoverableError) Error() string {
	return e.message
}

// Unwrap returns the error that caused the check to fail.
func (e RecoverableError) Unwrap() error {
	return e.cause
}

// NewRecoverableError returns a new error that is marked as being recoverable.
func NewRecoverableError(cause error, formatString string, a ...interface{}) RecoverableError {
	return RecoverableError{message: fmt.Sprintf(formatString, a...), cause: cause}
}

// UnrecoverableError is a check failure that ends the diagnostic run.
type UnrecoverableError struct {
	message string
	cause   error
}

// Error returns the error message for an UnrecoverableError.
func (e UnrecoverableError) Error() string {
	return e.message
}

// Unwrap returns the error that caused the check to fail.
func (e UnrecoverableError) Unwrap() error {
	return e.cause
}

// NewUnrecoverableError returns a new error that is marked as being unrecoverable.
func NewUnrecoverableError(cause error, formatString string, a ...interface{}) UnrecoverableError {
	return UnrecoverableError{message: fmt.Sprintf(formatString, a...), cause: cause}
}

// IsUnrecoverable returns true if the error, or any error that it wraps, is an UnrecoverableError.
func IsUnrecoverable(err error) bool {
	var unrecoverable UnrecoverableError
	return errors.As(err, &unrecoverable)
}
