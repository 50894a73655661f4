package overlay

import "strconv"

// Key identifies one (pane, verse) pair. A value type with compiler-checked
// equality, used everywhere a formatted "paneId:verseIndex" string would
// otherwise creep in.
type Key struct {
	// PaneID is the owning pane's identity.
	PaneID string

	// VerseIndex is the global verse ordering key.
	VerseIndex int
}

// String renders the key for log messages.
func (k Key) String() string {
	return k.PaneID + ":" + strconv.Itoa(k.VerseIndex)
}
