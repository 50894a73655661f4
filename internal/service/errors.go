package service

import "errors"

// Sentinel errors shared by collaborator implementations.
var (
	// ErrUnavailable is returned when a collaborator cannot be reached.
	ErrUnavailable = errors.New("service unavailable")

	// ErrVerseNotFound is returned when a verse index cannot be resolved.
	ErrVerseNotFound = errors.New("verse not found")

	// ErrEmptyText is returned when an operation is given nothing to work on.
	ErrEmptyText = errors.New("empty text")

	// ErrNoProvider is returned when no translation provider is configured.
	ErrNoProvider = errors.New("no translation provider configured")
)

// CallError wraps a collaborator failure with the call that produced it.
type CallError struct {
	// Service names the collaborator ("analysis", "dictionary", ...).
	Service string

	// Op is the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *CallError) Error() string {
	return e.Service + ": " + e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *CallError) Unwrap() error {
	return e.Err
}
