package congress

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned (wrapped) when a named policy, data source, table
// or library policy does not exist.
var ErrNotFound = errors.New("not found")

// BackendError is a failed facade call.
type BackendError struct {
	// Op is the facade operation, one of the Op* constants.
	Op string

	// Target names the policy, data source or table the call addressed.
	Target string

	// Err is the underlying transport or storage error.
	Err error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("congress %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("congress %s %q: %v", e.Op, e.Target, e.Err)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *BackendError) Unwrap() error {
	return e.Err
}

// NewBackendError creates a BackendError.
func NewBackendError(op, target string, err error) *BackendError {
	return &BackendError{Op: op, Target: target, Err: err}
}

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
