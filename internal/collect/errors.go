package collect

import "errors"

// Collection errors.
var (
	// ErrNotCollecting indicates a collection operation was attempted
	// while no drag gesture is in progress.
	ErrNotCollecting = errors.New("no collection in progress")

	// ErrNoTranslator indicates a deliverer was constructed without a
	// translation service.
	ErrNoTranslator = errors.New("translator is required")

	// ErrNoPane indicates delivery was attempted with a nil target pane.
	ErrNoPane = errors.New("target pane is required")
)
