package simulator

import (
	"errors"
	"fmt"
)

// SimError is a custom error type for simulation errors
type SimError struct {
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("simulation error: %s", e.Message)
}

// ErrInvalidConfig creates an error for invalid configuration
func ErrInvalidConfig(msg string) error {
	return SimError{Message: fmt.Sprintf("invalid config: %s", msg)}
}

// ErrInvalidInput creates an error for input that fails shape validation
// (non-numeric tokens, negative times, tracks out of range).
func ErrInvalidInput(msg string) error {
	return SimError{Message: fmt.Sprintf("invalid input: %s", msg)}
}

// IsSimError reports whether err (or anything it wraps) is a SimError.
func IsSimError(err error) bool {
	var se SimError
	return errors.As(err, &se)
}
