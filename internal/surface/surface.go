package surface

// Surface is one editable text surface.
//
// Input simulates a user edit and fires the change callback. SetValue is the
// programmatic path used for mirroring and does not fire callbacks, matching
// how a real edit widget distinguishes user events from value assignment.
type Surface interface {
	// Value returns the surface's current plain text.
	Value() string

	// SetValue replaces the text without firing the change callback.
	SetValue(text string)

	// Input replaces the text as a user edit and fires the change callback.
	Input(text string)

	// OnChange registers the user-edit callback. Replaces any prior one.
	OnChange(fn func(text string))

	// OnFocus registers the focus callback. Replaces any prior one.
	OnFocus(fn func())

	// OnBlur registers the blur callback. Replaces any prior one.
	OnBlur(fn func())

	// Focus gives the surface focus and fires the focus callback.
	Focus()

	// Blur removes focus and fires the blur callback.
	Blur()

	// Focused reports whether the surface currently has focus.
	Focused() bool

	// Destroy detaches all callbacks. A destroyed surface ignores further
	// Input, Focus, and Blur calls.
	Destroy()
}
