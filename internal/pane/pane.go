package pane

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/versetool/versepane/internal/event"
	"github.com/versetool/versepane/internal/service"
)

// Role distinguishes the single editable pane from reference panes.
type Role int

const (
	// RolePrimary is the pane holding editing and sync-source authority.
	RolePrimary Role = iota
	// RoleSecondary is a reference or alternate-translation pane.
	RoleSecondary
)

// String returns a human-readable role name.
func (r Role) String() string {
	switch r {
	case RolePrimary:
		return "primary"
	case RoleSecondary:
		return "secondary"
	default:
		return "unknown"
	}
}

// Logger is the logging surface panes need. *app.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// nopLogger discards all messages.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Verse is one verse's data as handed to a pane by the chapter loader.
type Verse struct {
	// Index is the global verse ordering key.
	Index int

	// Reference is the display label.
	Reference string

	// Text is the verse's current text in this pane's resource.
	Text string
}

// Config configures a pane.
type Config struct {
	// ID identifies the pane. Generated when empty.
	ID string

	// Role is the pane's role. Exactly one primary may be registered.
	Role Role

	// Title is the user-visible pane title.
	Title string

	// Resource names the text resource the pane displays.
	Resource string

	// SyncEnabled controls whether the pane follows cross-pane syncs.
	SyncEnabled bool

	// MinCommitInterval is the minimum time between two commits from the
	// same cell. Zero uses DefaultMinCommitInterval.
	MinCommitInterval time.Duration

	// CellHeight is the default rendered height of a cell in scroll units.
	// Zero uses DefaultCellHeight.
	CellHeight int

	// Bridge receives committed text changes. May be nil in reference
	// panes that never commit.
	Bridge service.AutosaveBridge

	// Bus receives verse.committed events. Optional.
	Bus *event.Bus

	// Log receives commit failures. Optional.
	Log Logger
}

// Default geometry and commit pacing.
const (
	// DefaultMinCommitInterval is the minimum spacing between commits from
	// one cell, absorbing synthetic blur/focus cycles.
	DefaultMinCommitInterval = 500 * time.Millisecond

	// DefaultCellHeight is the assumed cell height until a renderer
	// measures the real one.
	DefaultCellHeight = 60

	// commitTimeout bounds a single autosave call.
	commitTimeout = 5 * time.Second
)

// Pane is one scrollable column showing one text resource's verses.
//
// The cell set and scroll state are read by the renderer and worker
// goroutines while the event loop mutates them, so both live behind a
// read-write mutex.
type Pane struct {
	// ID is the stable pane identity.
	ID string

	// Role is the pane's role.
	Role Role

	// Title is the user-visible title.
	Title string

	// Resource names the displayed text resource.
	Resource string

	mu          sync.RWMutex
	syncEnabled bool

	cells   []*VerseCell
	byIndex map[int]*VerseCell

	scrollTop      int
	viewportHeight int

	minCommitInterval time.Duration
	cellHeight        int

	bridge service.AutosaveBridge
	bus    *event.Bus
	log    Logger

	now func() time.Time
}

// New creates an empty pane.
func New(cfg Config) *Pane {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.MinCommitInterval <= 0 {
		cfg.MinCommitInterval = DefaultMinCommitInterval
	}
	if cfg.CellHeight <= 0 {
		cfg.CellHeight = DefaultCellHeight
	}
	if cfg.Log == nil {
		cfg.Log = nopLogger{}
	}
	return &Pane{
		ID:                cfg.ID,
		Role:              cfg.Role,
		Title:             cfg.Title,
		Resource:          cfg.Resource,
		syncEnabled:       cfg.SyncEnabled,
		byIndex:           make(map[int]*VerseCell),
		minCommitInterval: cfg.MinCommitInterval,
		cellHeight:        cfg.CellHeight,
		bridge:            cfg.Bridge,
		bus:               cfg.Bus,
		log:               cfg.Log,
		now:               time.Now,
	}
}

// SyncEnabled reports whether the pane follows cross-pane syncs.
func (p *Pane) SyncEnabled() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.syncEnabled
}

// SetSyncEnabled toggles sync following.
func (p *Pane) SetSyncEnabled(enabled bool) {
	p.mu.Lock()
	p.syncEnabled = enabled
	p.mu.Unlock()
}

// LoadVerses replaces the pane's rendered cells with the given verses, in
// index order. Prior cells are unmounted. A chapter.loaded event announces
// the new cell set so listeners can re-wire per-cell observers.
func (p *Pane) LoadVerses(verses []Verse) {
	cells := make([]*VerseCell, 0, len(verses))
	byIndex := make(map[int]*VerseCell, len(verses))

	top := 0
	for _, v := range verses {
		cell := NewVerseCell(v.Index, v.Reference, v.Text)
		cell.SetGeometry(top, p.cellHeight)
		top += p.cellHeight
		cell.plain.OnBlur(func() { p.commitCell(cell) })
		cells = append(cells, cell)
		byIndex[v.Index] = cell
	}

	p.mu.Lock()
	p.cells = cells
	p.byIndex = byIndex
	p.mu.Unlock()

	if p.bus != nil {
		p.bus.Publish(event.New(event.TopicChapterLoaded, event.ChapterLoaded{
			PaneID: p.ID,
			Verses: len(verses),
		}, "pane"))
	}
}

// Cells returns the rendered cells in index order.
func (p *Pane) Cells() []*VerseCell {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*VerseCell, len(p.cells))
	copy(out, p.cells)
	return out
}

// CellAt returns the rendered cell for a verse index.
func (p *Pane) CellAt(verseIndex int) (*VerseCell, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.byIndex[verseIndex]
	return c, ok
}

// ScrollTo sets the pane's scroll offset, clamped at zero.
func (p *Pane) ScrollTo(offset int) {
	if offset < 0 {
		offset = 0
	}
	p.mu.Lock()
	p.scrollTop = offset
	p.mu.Unlock()
}

// ScrollTop returns the current scroll offset.
func (p *Pane) ScrollTop() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.scrollTop
}

// SetViewportHeight records the visible height of the pane.
func (p *Pane) SetViewportHeight(h int) {
	p.mu.Lock()
	p.viewportHeight = h
	p.mu.Unlock()
}

// ViewportHeight returns the visible height of the pane.
func (p *Pane) ViewportHeight() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.viewportHeight
}

// commitCell applies the blur-commit rule for one cell.
func (p *Pane) commitCell(c *VerseCell) {
	if p.bridge == nil {
		return
	}
	now := p.now()
	if !c.needsCommit(p.minCommitInterval, now) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commitTimeout)
	defer cancel()

	text := c.Value()
	if err := p.bridge.Commit(ctx, c.VerseIndex, p.ID, text, nil); err != nil {
		c.SetFlash(FlashError)
		p.log.Error("autosave commit failed", "pane", p.ID, "verse", c.VerseIndex, "err", err)
		return
	}

	c.markCommitted(now)
	if p.bus != nil {
		p.bus.Publish(event.New(event.TopicVerseCommitted, event.VerseCommitted{
			PaneID:     p.ID,
			VerseIndex: c.VerseIndex,
			Text:       text,
		}, "pane"))
	}
}
