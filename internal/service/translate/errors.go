package translate

import (
	"errors"
	"fmt"
)

// Provider errors.
var (
	// ErrNoAPIKey indicates a provider was configured without a key.
	ErrNoAPIKey = errors.New("api key is required")

	// ErrEmptyCompletion indicates the model returned no usable text.
	ErrEmptyCompletion = errors.New("model returned an empty completion")
)

// UnknownProviderError reports a provider name with no registered factory.
type UnknownProviderError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown translation provider %q", e.Name)
}
