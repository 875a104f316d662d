package reconcile

import (
	"errors"
	"fmt"

	"github.com/roach88/createcheck/record"
)

// ConfigError reports an assertion that cannot be evaluated as declared.
// It is always returned before the block runs.
type ConfigError struct {
	// Type is the record type the problem concerns, if any.
	Type record.Type

	// Message is a human-readable description.
	Message string

	// Err is the underlying error (optional).
	Err error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "invalid assertion: " + e.Message
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError returns true if the error is a configuration error.
// Uses errors.As to handle wrapped errors.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// ExpectationError is the failure kind a predicate returns when the new
// records do not meet its expectation. Its message is shown verbatim.
type ExpectationError struct {
	Message string
}

// Error implements the error interface.
func (e *ExpectationError) Error() string {
	return e.Message
}

// Failf returns an *ExpectationError with a formatted message.
func Failf(format string, args ...any) error {
	return &ExpectationError{Message: fmt.Sprintf(format, args...)}
}

// IsExpectationError returns true if the error is a predicate expectation
// failure. Uses errors.As to handle wrapped errors.
func IsExpectationError(err error) bool {
	var ee *ExpectationError
	return errors.As(err, &ee)
}
