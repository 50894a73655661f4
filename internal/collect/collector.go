package collect

import "sync"

// State identifies the collector's position in the gesture lifecycle.
type State int

// Collector states.
const (
	// StateIdle means no drag gesture is in progress.
	StateIdle State = iota
	// StateCollecting means a drag handle has been grabbed and hovered
	// verses are being appended to the batch.
	StateCollecting
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCollecting:
		return "collecting"
	default:
		return "unknown"
	}
}

// Item is one verse captured into a collection batch.
type Item struct {
	// SourcePaneID identifies the pane the verse was collected from.
	SourcePaneID string
	// VerseIndex is the canonical index used to match cells in the
	// drop target.
	VerseIndex int
	// Reference is the display reference, carried for logging and UI.
	Reference string
	// Text is the verse text at collection time.
	Text string
}

// Collector tracks one drag-to-collect gesture. It is a pure state
// machine: pointer plumbing calls Start, Hover, HoverPane, and End, and
// the resulting batch is handed to a Deliverer.
//
// Collector is safe for concurrent use.
type Collector struct {
	mu        sync.Mutex
	state     State
	items     []Item
	seen      map[int]bool
	hoverPane string
}

// NewCollector returns an idle collector.
func NewCollector() *Collector {
	return &Collector{seen: make(map[int]bool)}
}

// State returns the current gesture state.
func (c *Collector) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start begins a new collection seeded with the grabbed verse. A Start
// while already collecting discards the stale gesture and begins fresh;
// a missed pointer-release must not poison the next drag.
func (c *Collector) Start(item Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateCollecting
	c.items = []Item{item}
	c.seen = map[int]bool{item.VerseIndex: true}
	c.hoverPane = item.SourcePaneID
}

// Hover appends a verse whose drag handle the pointer crossed. Order is
// hover order, and a verse index already in the batch is skipped so
// wobbling back over a handle cannot duplicate it. Hovering while idle
// is a no-op.
func (c *Collector) Hover(item Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateCollecting {
		return
	}
	if c.seen[item.VerseIndex] {
		return
	}
	c.seen[item.VerseIndex] = true
	c.items = append(c.items, item)
}

// HoverPane records the pane currently under the pointer. The drop
// target is the last pane hovered during the gesture, which keeps drops
// deterministic even when the release lands on window chrome.
func (c *Collector) HoverPane(paneID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateCollecting {
		return
	}
	c.hoverPane = paneID
}

// End closes the gesture and returns the collected batch together with
// the resolved drop target. The collector returns to idle regardless of
// outcome. Ending while idle returns ErrNotCollecting so a spurious
// release is distinguishable from a real drop.
func (c *Collector) End() (batch []Item, targetPaneID string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateCollecting {
		return nil, "", ErrNotCollecting
	}
	batch = c.items
	targetPaneID = c.hoverPane
	c.reset()
	return batch, targetPaneID, nil
}

// ResolveDrop ends the gesture like End, but when no collection is in
// progress it falls back to a single-item batch built from the native
// drop payload, targeted at the pane the release landed on. This covers
// drags that originated outside the collector, such as a plain text drop
// from another window.
func (c *Collector) ResolveDrop(fallback Item, fallbackPaneID string) (batch []Item, targetPaneID string) {
	if b, target, err := c.End(); err == nil {
		return b, target
	}
	return []Item{fallback}, fallbackPaneID
}

// Cancel abandons the gesture without producing a batch.
func (c *Collector) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// Len reports the number of items collected so far.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Collector) reset() {
	c.state = StateIdle
	c.items = nil
	c.seen = make(map[int]bool)
	c.hoverPane = ""
}
