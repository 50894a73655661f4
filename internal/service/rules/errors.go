package rules

import (
	"errors"
	"fmt"
)

// Analyzer errors.
var (
	// ErrNoScript indicates neither script source nor a script path was given.
	ErrNoScript = errors.New("rules script is required")

	// ErrClosed is returned when the analyzer has been shut down.
	ErrClosed = errors.New("rules analyzer is closed")

	// ErrNoAnalyzeFunction indicates the script did not define analyze().
	ErrNoAnalyzeFunction = errors.New("script does not define an analyze function")
)

// ScriptError reports a failure inside the Lua script.
type ScriptError struct {
	// Op is the phase that failed: "load" or "analyze".
	Op string

	// Err is the interpreter error.
	Err error
}

// Error implements the error interface.
func (e *ScriptError) Error() string {
	return fmt.Sprintf("rules script %s: %v", e.Op, e.Err)
}

// Unwrap returns the interpreter error.
func (e *ScriptError) Unwrap() error { return e.Err }
