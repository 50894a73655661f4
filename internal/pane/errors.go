package pane

import "errors"

// Sentinel errors for pane management.
var (
	// ErrPrimaryExists is returned when a second primary pane is added.
	ErrPrimaryExists = errors.New("a primary pane is already open")

	// ErrPaneExists is returned when a pane id is already registered.
	ErrPaneExists = errors.New("pane already registered")

	// ErrPaneNotFound is returned when a pane id is not registered.
	ErrPaneNotFound = errors.New("pane not found")

	// ErrVerseNotLoaded is returned when a verse index is not rendered in
	// the pane.
	ErrVerseNotLoaded = errors.New("verse not loaded in pane")
)
