package audit

import "fmt"

// StorageError represents a failure in an audit storage backend. The
// permission manager surfaces these unchanged so callers can distinguish an
// evaluation failure from an explicit deny.
type StorageError struct {
	Backend   string // Storage backend type ("memory", "sqlite")
	Operation string // Operation that failed ("append", "query", "delete", ...)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("audit storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}
