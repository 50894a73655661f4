package versesync

import "errors"

// ErrNoRegistry is returned when a coordinator is built without a registry.
var ErrNoRegistry = errors.New("sync coordinator requires a pane registry")
