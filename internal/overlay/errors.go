package overlay

import "errors"

// Sentinel errors for the overlay engine.
var (
	// ErrNoAnalyzer is returned when an engine is built without an analyzer.
	ErrNoAnalyzer = errors.New("overlay engine requires an analyzer")

	// ErrNoRegistry is returned when an engine is built without a registry.
	ErrNoRegistry = errors.New("overlay engine requires a pane registry")

	// ErrNoDictionary is returned when a dictionary operation is requested
	// but no dictionary collaborator was configured.
	ErrNoDictionary = errors.New("no dictionary configured")

	// ErrUnknownKey is returned when a key resolves to no live cell.
	ErrUnknownKey = errors.New("no rendered cell for key")

	// ErrStaleAnalysis is returned when an operation needs a current
	// analysis but the cached one no longer matches the live text.
	ErrStaleAnalysis = errors.New("cached analysis is stale")
)
