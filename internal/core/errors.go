package core

import "fmt"

// ValidationError reports invalid transaction fields at creation or update
// time. It is returned before any state changes; a failed mutation is never
// partially applied.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an operation addressed to a transaction id absent
// from the current snapshot.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return "transaction not found: " + e.ID
}

// ConfigurationError reports a reference to a category key missing from the
// registry. It signals a configuration defect, not a user-recoverable error.
type ConfigurationError struct {
	Key string
}

func (e *ConfigurationError) Error() string {
	return "unknown category key: " + e.Key
}

// TransportError wraps a failure from an external collaborator (persistence
// backend, message broker, AI completion call). The wrapped error is surfaced
// unchanged and the in-memory state is left at its last known-good value.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return "transport: " + e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Common validation failures, comparable with errors.Is.
var (
	ErrInvalidAmount   = &ValidationError{Reason: "amount must be greater than zero"}
	ErrInvalidType     = &ValidationError{Reason: "type must be income or expense"}
	ErrMissingCategory = &ValidationError{Reason: "expense requires a category"}
	ErrZeroDate        = &ValidationError{Reason: "date cannot be zero"}
)
