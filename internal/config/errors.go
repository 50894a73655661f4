package config

import (
	"errors"
	"fmt"
)

// Configuration errors.
var (
	// ErrWatcherClosed indicates an operation on a closed watcher.
	ErrWatcherClosed = errors.New("watcher is closed")

	// ErrNoPath indicates a loader or watcher was given an empty path.
	ErrNoPath = errors.New("config path is required")
)

// ParseError reports a TOML syntax problem with its source path.
type ParseError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing config %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports an out-of-range or inconsistent setting.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid setting %s: %s", e.Field, e.Message)
}
