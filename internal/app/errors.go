package app

import (
	"errors"
	"fmt"
)

// Application lifecycle errors.
var (
	// ErrAlreadyRunning indicates Run was called twice.
	ErrAlreadyRunning = errors.New("application is already running")

	// ErrNoPanes indicates startup with no panes configured.
	ErrNoPanes = errors.New("no panes configured")
)

// InitError reports a component that failed to initialize.
type InitError struct {
	Component string
	Err       error
}

// Error implements the error interface.
func (e *InitError) Error() string {
	return fmt.Sprintf("initializing %s: %v", e.Component, e.Err)
}

// Unwrap returns the underlying error.
func (e *InitError) Unwrap() error { return e.Err }
