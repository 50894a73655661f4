package pane

import (
	"sync"
	"time"

	"github.com/versetool/versepane/internal/surface"
)

// Flash is the transient visual state of a cell after an operation.
type Flash int

const (
	// FlashNone means no transient state is shown.
	FlashNone Flash = iota
	// FlashSuccess marks a completed batch translation.
	FlashSuccess
	// FlashError marks a failed commit or translation.
	FlashError
)

// VerseCell is one editable text unit bound to a stable verse index.
//
// The plain surface it owns is the system of record for the verse's text.
// Rich overlay surfaces only ever mirror into it.
//
// Cells are read by the renderer and mutated by batch delivery and analysis
// goroutines, so the mutable state lives behind a mutex. Edit observers run
// outside the lock.
type VerseCell struct {
	// VerseIndex is the stable, global ordering key.
	VerseIndex int

	// Reference is the display label (e.g. "John 1:1").
	Reference string

	plain *surface.Plain

	mu            sync.Mutex
	editObservers []func(text string)

	dirty      bool
	committed  string
	lastCommit time.Time

	flash   Flash
	pending bool
	flagged bool

	// Vertical geometry within the pane's scroll space, set by the renderer.
	top    int
	height int
}

// NewVerseCell creates a cell holding the given text.
func NewVerseCell(verseIndex int, reference, text string) *VerseCell {
	c := &VerseCell{
		VerseIndex: verseIndex,
		Reference:  reference,
		plain:      surface.NewPlain(text),
		committed:  text,
	}
	c.plain.OnChange(func(text string) {
		c.mu.Lock()
		c.dirty = true
		observers := make([]func(string), len(c.editObservers))
		copy(observers, c.editObservers)
		c.mu.Unlock()

		for _, fn := range observers {
			fn(text)
		}
	})
	return c
}

// Surface returns the cell's authoritative plain surface.
func (c *VerseCell) Surface() *surface.Plain { return c.plain }

// OnEdit registers an observer for user edits reaching the plain surface,
// whether typed there directly or mirrored from a rich overlay.
func (c *VerseCell) OnEdit(fn func(text string)) {
	c.mu.Lock()
	c.editObservers = append(c.editObservers, fn)
	c.mu.Unlock()
}

// Value returns the cell's current plain text.
func (c *VerseCell) Value() string { return c.plain.Value() }

// Dirty reports whether the value changed since the last commit.
func (c *VerseCell) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// Flash returns the cell's transient visual state.
func (c *VerseCell) Flash() Flash {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flash
}

// SetFlash sets the transient visual state.
func (c *VerseCell) SetFlash(f Flash) {
	c.mu.Lock()
	c.flash = f
	c.mu.Unlock()
}

// Pending reports whether the cell is disabled awaiting a batch translation.
func (c *VerseCell) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// SetPending toggles the disabled-while-pending state.
func (c *VerseCell) SetPending(p bool) {
	c.mu.Lock()
	c.pending = p
	c.mu.Unlock()
}

// Flagged reports whether the user flagged this verse for review.
func (c *VerseCell) Flagged() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flagged
}

// ToggleFlag flips the review flag and returns the new state.
func (c *VerseCell) ToggleFlag() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flagged = !c.flagged
	return c.flagged
}

// SetGeometry records the cell's vertical placement in pane scroll space.
func (c *VerseCell) SetGeometry(top, height int) {
	c.mu.Lock()
	c.top = top
	c.height = height
	c.mu.Unlock()
}

// Top returns the cell's top offset in pane scroll space.
func (c *VerseCell) Top() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.top
}

// Height returns the cell's rendered height.
func (c *VerseCell) Height() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height
}

// needsCommit reports whether a blur should commit: the value must actually
// differ from the last committed text, and the minimum inter-save interval
// must have elapsed since this cell's previous commit. The interval check
// keeps synthetic blur/focus cycles (overlay mirroring) from double-saving.
func (c *VerseCell) needsCommit(minInterval time.Duration, now time.Time) bool {
	value := c.plain.Value()
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty || value == c.committed {
		return false
	}
	return c.lastCommit.IsZero() || now.Sub(c.lastCommit) >= minInterval
}

// markCommitted records a successful commit.
func (c *VerseCell) markCommitted(now time.Time) {
	value := c.plain.Value()
	c.mu.Lock()
	c.committed = value
	c.dirty = false
	c.lastCommit = now
	c.flash = FlashNone
	c.mu.Unlock()
}
