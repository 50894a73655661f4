package remote

import (
	"errors"
	"fmt"
)

// Client construction errors.
var (
	// ErrNoBaseURL indicates a client was constructed without a server URL.
	ErrNoBaseURL = errors.New("base URL is required")
)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	// Method and Path identify the failed call.
	Method string
	Path   string

	// Code is the HTTP status code.
	Code int

	// Message is the server's error message, when it sent one.
	Message string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
}
