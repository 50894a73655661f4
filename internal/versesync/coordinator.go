package versesync

import (
	"context"
	"sync"

	"github.com/versetool/versepane/internal/event"
	"github.com/versetool/versepane/internal/pane"
	"github.com/versetool/versepane/internal/service"
)

// Logger is the logging surface the coordinator needs. *app.Logger
// satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// DefaultScrollMargin is the fixed visual offset kept above a synced verse.
const DefaultScrollMargin = 50

// Options configures a coordinator.
type Options struct {
	// Registry is the live pane set. Required.
	Registry *pane.Registry

	// Loader resolves and loads chapters for panes that do not have the
	// target verse rendered. Optional; without it non-local verses are
	// treated as misses.
	Loader service.ChapterLoader

	// Bus receives sync.performed events. Optional.
	Bus *event.Bus

	// Log receives miss reports. Optional.
	Log Logger

	// ScrollMargin overrides DefaultScrollMargin.
	ScrollMargin int
}

// Coordinator locates and scrolls the current verse in every synchronized
// pane.
type Coordinator struct {
	registry *pane.Registry
	loader   service.ChapterLoader
	bus      *event.Bus
	log      Logger
	margin   int

	mu        sync.Mutex
	lastVerse int
	hasLast   bool
}

// New creates a coordinator.
func New(opts Options) (*Coordinator, error) {
	if opts.Registry == nil {
		return nil, ErrNoRegistry
	}
	if opts.Log == nil {
		opts.Log = nopLogger{}
	}
	if opts.ScrollMargin <= 0 {
		opts.ScrollMargin = DefaultScrollMargin
	}
	return &Coordinator{
		registry: opts.Registry,
		loader:   opts.Loader,
		bus:      opts.Bus,
		log:      opts.Log,
		margin:   opts.ScrollMargin,
	}, nil
}

// ClickVerse implements the trigger policy: a direct click on a verse cell
// in the primary pane syncs every follower to that exact verse — the clicked
// one, not whatever happens to be centered, so the jump never surprises.
// Clicks in secondary panes do not drag other panes along.
func (c *Coordinator) ClickVerse(ctx context.Context, source *pane.Pane, verseIndex int) {
	if source.Role != pane.RolePrimary {
		return
	}
	c.SyncFrom(ctx, source, verseIndex)
}

// SyncFrom scrolls verseIndex into view in every other sync-enabled pane.
// Calling it twice in a row leaves every follower at the same position.
func (c *Coordinator) SyncFrom(ctx context.Context, source *pane.Pane, verseIndex int) {
	c.mu.Lock()
	c.lastVerse = verseIndex
	c.hasLast = true
	c.mu.Unlock()

	moved := 0
	for _, p := range c.registry.List() {
		if p.ID == source.ID || !p.SyncEnabled() {
			continue
		}
		if c.scrollToVerse(ctx, p, verseIndex) {
			moved++
		}
	}

	if c.bus != nil {
		c.bus.Publish(event.New(event.TopicSyncPerformed, event.SyncPerformed{
			SourcePaneID: source.ID,
			VerseIndex:   verseIndex,
			PanesMoved:   moved,
		}, "versesync"))
	}
}

// SetCatchUp toggles a secondary pane's catch-up behavior. Re-enabling
// immediately performs one catch-up sync to the primary's last-known verse.
func (c *Coordinator) SetCatchUp(ctx context.Context, p *pane.Pane, enabled bool) {
	p.SetSyncEnabled(enabled)
	if !enabled {
		return
	}

	c.mu.Lock()
	verse, ok := c.lastVerse, c.hasLast
	c.mu.Unlock()
	if ok {
		c.scrollToVerse(ctx, p, verse)
	}
}

// LastVerse returns the primary's last-known synced verse.
func (c *Coordinator) LastVerse() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastVerse, c.hasLast
}

// scrollToVerse resolves verseIndex in p, loading its chapter when needed,
// and reports whether the pane was scrolled.
func (c *Coordinator) scrollToVerse(ctx context.Context, p *pane.Pane, verseIndex int) bool {
	if cell, ok := p.CellAt(verseIndex); ok {
		p.ScrollTo(cell.Top() - c.margin)
		return true
	}

	if c.loader == nil {
		c.log.Warn("sync miss: verse not rendered and no loader", "pane", p.ID, "verse", verseIndex)
		return false
	}

	loc, err := c.loader.ResolveVerseLocation(ctx, verseIndex)
	if err != nil {
		c.log.Warn("sync miss: cannot resolve verse", "pane", p.ID, "verse", verseIndex, "err", err)
		return false
	}
	if err := c.loader.LoadChapter(ctx, p.ID, loc); err != nil {
		c.log.Warn("sync miss: chapter load failed", "pane", p.ID, "book", loc.Book, "chapter", loc.Chapter, "err", err)
		return false
	}

	// One retry after the load; a miss here is recoverable and final.
	if cell, ok := p.CellAt(verseIndex); ok {
		p.ScrollTo(cell.Top() - c.margin)
		return true
	}
	c.log.Warn("sync miss: verse absent after chapter load", "pane", p.ID, "verse", verseIndex)
	return false
}

// VisibleVerse is the fallback used when no explicit verse is given: the
// cell whose vertical center is closest to the viewport's vertical center.
// This matches "what am I looking at" better than first-visible or
// scroll-fraction heuristics.
func VisibleVerse(p *pane.Pane) (int, bool) {
	cells := p.Cells()
	if len(cells) == 0 {
		return 0, false
	}

	viewCenter := p.ScrollTop() + p.ViewportHeight()/2
	best := cells[0]
	bestDist := -1
	for _, cell := range cells {
		center := cell.Top() + cell.Height()/2
		dist := center - viewCenter
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			best = cell
			bestDist = dist
		}
	}
	return best.VerseIndex, true
}
