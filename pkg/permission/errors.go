package permission

import (
	"errors"
	"fmt"
)

// ErrInvalidPolicyMode is returned when a caller supplies a policy mode
// outside the known set.
var ErrInvalidPolicyMode = errors.New("invalid policy mode")

// StoreError represents a failure in the directory policy store. The
// manager surfaces these unchanged so callers can distinguish an
// evaluation failure from an explicit deny.
type StoreError struct {
	Backend   string // Store backend type ("memory", "sqlite", "file")
	Operation string // Operation that failed ("get", "set", "remove", ...)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("policy store error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// NewStoreError creates a new StoreError.
func NewStoreError(backend, operation string, cause error) *StoreError {
	return &StoreError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}
