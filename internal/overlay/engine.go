package overlay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/versetool/versepane/internal/event"
	"github.com/versetool/versepane/internal/pane"
	"github.com/versetool/versepane/internal/service"
)

// Logger is the logging surface the engine needs. *app.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Defaults for the engine's tunables.
const (
	// DefaultDebounce is the typing quiet period before re-analysis.
	DefaultDebounce = 2 * time.Second

	// DefaultMinWordLength is the shortest word AddAllWords will learn.
	DefaultMinWordLength = 3

	// analyzeTimeout bounds a single analysis or dictionary call.
	analyzeTimeout = 10 * time.Second
)

// Options configures the engine.
type Options struct {
	// Analyzer produces suggestions. Required.
	Analyzer service.Analyzer

	// Dictionary learns accepted words. Required for the feedback loop.
	Dictionary service.Dictionary

	// Registry resolves keys to live panes and cells. Required.
	Registry *pane.Registry

	// Bus receives analysis.applied events. Optional.
	Bus *event.Bus

	// Log receives failures. Optional.
	Log Logger

	// Debounce overrides DefaultDebounce.
	Debounce time.Duration

	// MinWordLength overrides DefaultMinWordLength.
	MinWordLength int
}

// Engine keeps plain values, rich overlays, cached analyses, and autosave
// state in agreement per (pane, verse) key.
type Engine struct {
	mu sync.Mutex

	analyzer service.Analyzer
	dict     service.Dictionary
	registry *pane.Registry
	bus      *event.Bus
	log      Logger

	debounce   time.Duration
	minWordLen int

	cache    *Cache
	bindings map[Key]*Binding
	timers   map[Key]*debouncer

	// disabled holds panes whose annotation toggle is off. Absent means on.
	disabled map[string]bool
}

// NewEngine creates an engine.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Analyzer == nil {
		return nil, ErrNoAnalyzer
	}
	if opts.Registry == nil {
		return nil, ErrNoRegistry
	}
	if opts.Log == nil {
		opts.Log = nopLogger{}
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.MinWordLength <= 0 {
		opts.MinWordLength = DefaultMinWordLength
	}
	return &Engine{
		analyzer:   opts.Analyzer,
		dict:       opts.Dictionary,
		registry:   opts.Registry,
		bus:        opts.Bus,
		log:        opts.Log,
		debounce:   opts.Debounce,
		minWordLen: opts.MinWordLength,
		cache:      NewCache(),
		bindings:   make(map[Key]*Binding),
		timers:     make(map[Key]*debouncer),
		disabled:   make(map[string]bool),
	}, nil
}

// AttachPane wires the engine to every cell currently rendered in p. Call
// again after the pane loads a new chapter.
func (e *Engine) AttachPane(p *pane.Pane) {
	for _, cell := range p.Cells() {
		key := Key{PaneID: p.ID, VerseIndex: cell.VerseIndex}
		cell.OnEdit(func(string) { e.NoteEdit(key) })
	}
}

// NoteEdit records a user edit to the verse identified by key. Any live
// overlay for the key is torn down (its offsets are no longer trustworthy)
// and the verse's re-analysis timer restarts.
func (e *Engine) NoteEdit(key Key) {
	e.mu.Lock()
	e.removeBindingLocked(key)
	if e.disabled[key.PaneID] {
		e.mu.Unlock()
		return
	}
	t, ok := e.timers[key]
	if !ok {
		t = newDebouncer(e.debounce, func() { e.analyzeNow(key) })
		e.timers[key] = t
	}
	e.mu.Unlock()

	t.Call()
}

// analyzeNow reads the verse's current text, calls the analyzer, and applies
// the result. The snapshot rule in apply discards the result if the text
// changed while the call was in flight.
func (e *Engine) analyzeNow(key Key) {
	cell, ok := e.lookup(key)
	if !ok {
		return
	}
	snapshot := cell.Value()

	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	result, err := e.analyzer.Analyze(ctx, key.PaneID, key.VerseIndex, snapshot)
	if err != nil {
		cell.SetFlash(pane.FlashError)
		e.log.Error("analysis failed", "pane", key.PaneID, "verse", key.VerseIndex, "err", err)
		return
	}
	e.apply(key, AnalysisEntry{Suggestions: result.Suggestions, Snapshot: snapshot})
}

// apply caches an analysis entry and renders it if it is still current.
func (e *Engine) apply(key Key, entry AnalysisEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cell, ok := e.lookup(key)
	if !ok {
		// Pane or chapter went away while the call was in flight.
		return
	}

	e.cache.Put(key, entry)

	if cell.Value() != entry.Snapshot {
		// Normal race outcome, not an error: a newer edit owns the verse
		// and its own timer will request a fresh analysis.
		return
	}
	if e.disabled[key.PaneID] {
		return
	}

	e.renderLocked(key, cell, entry)
}

// renderLocked swaps the key's overlay state to match entry. Caller holds mu.
func (e *Engine) renderLocked(key Key, cell *pane.VerseCell, entry AnalysisEntry) {
	e.removeBindingLocked(key)
	if len(entry.Suggestions) > 0 {
		e.bindings[key] = newBinding(key, cell, entry, e.removeBinding)
	}

	if e.bus != nil {
		e.bus.Publish(event.New(event.TopicAnalysisApplied, event.AnalysisApplied{
			PaneID:      key.PaneID,
			VerseIndex:  key.VerseIndex,
			Suggestions: len(entry.Suggestions),
		}, "overlay"))
	}
}

// lookup resolves a key to its live cell.
func (e *Engine) lookup(key Key) (*pane.VerseCell, bool) {
	p, ok := e.registry.Get(key.PaneID)
	if !ok {
		return nil, false
	}
	return p.CellAt(key.VerseIndex)
}

// Binding returns the live overlay binding for key, if any.
func (e *Engine) Binding(key Key) (*Binding, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.bindings[key]
	return b, ok
}

// Overlaid reports whether key currently shows a rich overlay.
func (e *Engine) Overlaid(key Key) bool {
	_, ok := e.Binding(key)
	return ok
}

// BindingCount returns the number of live overlay bindings.
func (e *Engine) BindingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.bindings)
}

// Cache exposes the analysis cache for replay inspection.
func (e *Engine) Cache() *Cache { return e.cache }

// removeBinding tears down the binding for key, if present.
func (e *Engine) removeBinding(key Key) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeBindingLocked(key)
}

func (e *Engine) removeBindingLocked(key Key) {
	if b, ok := e.bindings[key]; ok {
		b.destroy()
		delete(e.bindings, key)
	}
}

// PaneEnabled reports whether annotations are on for the pane.
func (e *Engine) PaneEnabled(paneID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.disabled[paneID]
}

// SetPaneEnabled toggles a pane's annotation layer.
//
// Turning it off discards the pane's live overlays and cancels its pending
// timers; the cache survives. Turning it back on replays every cached entry
// whose snapshot still matches the rendered text without a service call,
// then requests a fresh analysis for rendered verses with no valid cache.
func (e *Engine) SetPaneEnabled(paneID string, enabled bool) {
	if !enabled {
		e.mu.Lock()
		e.disabled[paneID] = true
		for key, t := range e.timers {
			if key.PaneID == paneID {
				t.Cancel()
				delete(e.timers, key)
			}
		}
		for key := range e.bindings {
			if key.PaneID == paneID {
				e.removeBindingLocked(key)
			}
		}
		e.mu.Unlock()
		return
	}

	e.mu.Lock()
	delete(e.disabled, paneID)
	p, ok := e.registry.Get(paneID)
	if !ok {
		e.mu.Unlock()
		return
	}

	var stale []Key
	for _, cell := range p.Cells() {
		key := Key{PaneID: paneID, VerseIndex: cell.VerseIndex}
		if entry, ok := e.cache.Valid(key, cell.Value()); ok {
			e.renderLocked(key, cell, entry)
			continue
		}
		if cell.Value() != "" {
			stale = append(stale, key)
		}
	}
	e.mu.Unlock()

	for _, key := range stale {
		e.analyzeNow(key)
	}
}

// ClosePane drops every timer, binding, and cache entry keyed to the pane.
// Nothing keyed to a closed pane may mutate state afterwards; cancelled
// timers are guaranteed not to fire their callbacks.
func (e *Engine) ClosePane(paneID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for key, t := range e.timers {
		if key.PaneID == paneID {
			t.Cancel()
			delete(e.timers, key)
		}
	}
	for key := range e.bindings {
		if key.PaneID == paneID {
			e.removeBindingLocked(key)
		}
	}
	e.cache.DeletePane(paneID)
	delete(e.disabled, paneID)
}

// AcceptSuggestion accepts one suggestion: the span disappears immediately
// (optimistic), the dictionary learns the word, and on success the verse is
// re-analyzed so client and service state reconverge even though the
// rendering already looks right.
func (e *Engine) AcceptSuggestion(ctx context.Context, key Key, sug service.Suggestion) error {
	if e.dict == nil {
		return ErrNoDictionary
	}

	e.mu.Lock()
	if b, ok := e.bindings[key]; ok {
		b.Rich().RemoveSpan(sug.Start)
	}
	e.mu.Unlock()

	if _, err := e.dict.AddWord(ctx, sug.Substring); err != nil {
		e.flash(key)
		e.log.Error("dictionary add failed", "pane", key.PaneID, "verse", key.VerseIndex, "word", sug.Substring, "err", err)
		return err
	}

	e.cancelTimer(key)
	e.analyzeNow(key)
	return nil
}

// AddAllWords learns every unique suggested word of at least the minimum
// length for the verse at key, then triggers exactly one re-analysis.
func (e *Engine) AddAllWords(ctx context.Context, key Key) error {
	if e.dict == nil {
		return ErrNoDictionary
	}

	cell, ok := e.lookup(key)
	if !ok {
		return ErrUnknownKey
	}
	entry, ok := e.cache.Valid(key, cell.Value())
	if !ok {
		return ErrStaleAnalysis
	}

	seen := make(map[string]bool)
	var errs []error
	added := 0
	for _, sug := range entry.Suggestions {
		word := sug.Substring
		if len([]rune(word)) < e.minWordLen || seen[word] {
			continue
		}
		seen[word] = true

		e.mu.Lock()
		if b, ok := e.bindings[key]; ok {
			b.Rich().RemoveSpan(sug.Start)
		}
		e.mu.Unlock()

		if _, err := e.dict.AddWord(ctx, word); err != nil {
			errs = append(errs, err)
			continue
		}
		added++
	}

	if added == 0 && len(errs) > 0 {
		e.flash(key)
		return errors.Join(errs...)
	}

	e.cancelTimer(key)
	e.analyzeNow(key)
	return errors.Join(errs...)
}

// SimilarWords asks the dictionary for close spellings. Called lazily, only
// on hover, so the cost is not paid for every suggestion up front.
func (e *Engine) SimilarWords(ctx context.Context, word string) ([]string, error) {
	if e.dict == nil {
		return nil, ErrNoDictionary
	}
	return e.dict.SuggestSimilar(ctx, word)
}

// cancelTimer drops any pending debounce for key.
func (e *Engine) cancelTimer(key Key) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t, ok := e.timers[key]; ok {
		t.Cancel()
	}
}

// flash marks the key's cell with the transient error state.
func (e *Engine) flash(key Key) {
	if cell, ok := e.lookup(key); ok {
		cell.SetFlash(pane.FlashError)
	}
}
