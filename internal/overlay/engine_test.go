package overlay

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/versetool/versepane/internal/pane"
	"github.com/versetool/versepane/internal/service"
)

// fakeAnalyzer returns canned suggestions and counts calls.
type fakeAnalyzer struct {
	mu       sync.Mutex
	calls    int
	lastText string
	respond  func(text string) []service.Suggestion
	err      error
}

func (a *fakeAnalyzer) Analyze(_ context.Context, _ string, _ int, text string) (service.AnalysisResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	a.lastText = text
	if a.err != nil {
		return service.AnalysisResult{}, a.err
	}
	if a.respond == nil {
		return service.AnalysisResult{}, nil
	}
	return service.AnalysisResult{Suggestions: a.respond(text)}, nil
}

func (a *fakeAnalyzer) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func (a *fakeAnalyzer) lastAnalyzed() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastText
}

type fakeDictionary struct {
	mu    sync.Mutex
	words []string
	err   error
}

func (d *fakeDictionary) AddWord(_ context.Context, word string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	d.words = append(d.words, word)
	return true, nil
}

func (d *fakeDictionary) SuggestSimilar(_ context.Context, word string) ([]string, error) {
	return []string{word + "s"}, nil
}

func (d *fakeDictionary) added() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.words))
	copy(out, d.words)
	return out
}

// flagAll suggests every space-separated word as a warning span.
func flagAll(text string) []service.Suggestion {
	var sugs []service.Suggestion
	runes := []rune(text)
	start := -1
	for i := 0; i <= len(runes); i++ {
		if i < len(runes) && runes[i] != ' ' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			sugs = append(sugs, service.Suggestion{
				Start:     start,
				End:       i,
				Substring: string(runes[start:i]),
				Message:   "unknown word",
				Severity:  service.SeverityWarning,
			})
			start = -1
		}
	}
	return sugs
}

const testDebounce = 40 * time.Millisecond

type fixture struct {
	registry *pane.Registry
	primary  *pane.Pane
	engine   *Engine
	analyzer *fakeAnalyzer
	dict     *fakeDictionary
}

func newFixture(t *testing.T, respond func(string) []service.Suggestion) *fixture {
	t.Helper()

	registry := pane.NewRegistry(nil)
	p := pane.New(pane.Config{Role: pane.RolePrimary, Title: "Primary", Resource: "main"})
	p.LoadVerses([]pane.Verse{
		{Index: 4, Reference: "Jn 1:4", Text: "In him was life"},
		{Index: 8, Reference: "Jn 1:8", Text: "alpha beta alpha"},
	})
	if err := registry.Add(p); err != nil {
		t.Fatalf("registry.Add failed: %v", err)
	}

	analyzer := &fakeAnalyzer{respond: respond}
	dict := &fakeDictionary{}
	engine, err := NewEngine(Options{
		Analyzer:   analyzer,
		Dictionary: dict,
		Registry:   registry,
		Debounce:   testDebounce,
	})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	engine.AttachPane(p)

	return &fixture{
		registry: registry,
		primary:  p,
		engine:   engine,
		analyzer: analyzer,
		dict:     dict,
	}
}

func (f *fixture) key(verse int) Key {
	return Key{PaneID: f.primary.ID, VerseIndex: verse}
}

func (f *fixture) cell(t *testing.T, verse int) *pane.VerseCell {
	t.Helper()
	c, ok := f.primary.CellAt(verse)
	if !ok {
		t.Fatalf("no cell for verse %d", verse)
	}
	return c
}

func TestDebouncedAnalysisFiresOnceAfterPause(t *testing.T) {
	f := newFixture(t, flagAll)
	cell := f.cell(t, 4)

	cell.Surface().Input("In him was lfie")
	time.Sleep(3 * testDebounce)

	if got := f.analyzer.callCount(); got != 1 {
		t.Fatalf("analyzer calls = %d, want 1", got)
	}
	if got := f.analyzer.lastAnalyzed(); got != "In him was lfie" {
		t.Errorf("analyzed text = %q", got)
	}
	if !f.engine.Overlaid(f.key(4)) {
		t.Error("verse 4 should be overlaid after analysis")
	}
}

func TestTypingWithinWindowResetsTimer(t *testing.T) {
	f := newFixture(t, flagAll)
	cell := f.cell(t, 4)

	cell.Surface().Input("first")
	time.Sleep(testDebounce / 2)
	cell.Surface().Input("second")

	// Past the first edit's deadline, before the second's.
	time.Sleep((testDebounce * 3) / 4)
	if got := f.analyzer.callCount(); got != 0 {
		t.Fatalf("analyzer calls = %d before quiet period elapsed, want 0", got)
	}

	time.Sleep(2 * testDebounce)
	if got := f.analyzer.callCount(); got != 1 {
		t.Fatalf("analyzer calls = %d, want exactly 1", got)
	}
	if got := f.analyzer.lastAnalyzed(); got != "second" {
		t.Errorf("analyzed text = %q, want latest text", got)
	}
}

func TestStaleResultNeverRenders(t *testing.T) {
	f := newFixture(t, flagAll)
	cell := f.cell(t, 4)
	key := f.key(4)

	// A response computed against pre-edit text arrives after an edit.
	cell.Surface().SetValue("post edit text")
	f.engine.apply(key, AnalysisEntry{
		Suggestions: flagAll("pre edit"),
		Snapshot:    "pre edit",
	})

	if f.engine.Overlaid(key) {
		t.Error("stale analysis must not produce visible highlights")
	}
}

func TestBindingUniquePerKey(t *testing.T) {
	f := newFixture(t, flagAll)
	cell := f.cell(t, 4)
	key := f.key(4)

	entry := AnalysisEntry{Suggestions: flagAll(cell.Value()), Snapshot: cell.Value()}
	f.engine.apply(key, entry)
	first, _ := f.engine.Binding(key)
	f.engine.apply(key, entry)
	second, _ := f.engine.Binding(key)

	if f.engine.BindingCount() != 1 {
		t.Fatalf("BindingCount() = %d, want 1", f.engine.BindingCount())
	}
	if first == second {
		t.Error("re-applying should replace the binding, not reuse it")
	}
}

func TestEmptySuggestionsTearDownOverlay(t *testing.T) {
	f := newFixture(t, flagAll)
	cell := f.cell(t, 4)
	key := f.key(4)

	f.engine.apply(key, AnalysisEntry{Suggestions: flagAll(cell.Value()), Snapshot: cell.Value()})
	if !f.engine.Overlaid(key) {
		t.Fatal("expected overlay")
	}

	f.engine.apply(key, AnalysisEntry{Snapshot: cell.Value()})
	if f.engine.Overlaid(key) {
		t.Error("empty suggestions should fall back to the plain surface")
	}
}

func TestRichEditMirrorsToPlainAndTearsDown(t *testing.T) {
	f := newFixture(t, flagAll)
	cell := f.cell(t, 4)
	key := f.key(4)

	f.engine.apply(key, AnalysisEntry{Suggestions: flagAll(cell.Value()), Snapshot: cell.Value()})
	b, ok := f.engine.Binding(key)
	if !ok {
		t.Fatal("expected binding")
	}

	b.Rich().Input("In him was light")

	if cell.Value() != "In him was light" {
		t.Errorf("plain value = %q, want mirrored text", cell.Value())
	}
	if !cell.Dirty() {
		t.Error("mirrored edit must mark the cell dirty")
	}
	if f.engine.Overlaid(key) {
		t.Error("editing the rich surface must tear the overlay down")
	}
}

func TestRichFocusBlurForwarded(t *testing.T) {
	f := newFixture(t, flagAll)
	cell := f.cell(t, 4)
	key := f.key(4)

	f.engine.apply(key, AnalysisEntry{Suggestions: flagAll(cell.Value()), Snapshot: cell.Value()})
	b, _ := f.engine.Binding(key)

	b.Rich().Focus()
	if !cell.Surface().Focused() {
		t.Error("rich focus should forward to the plain surface")
	}
	b.Rich().Blur()
	if cell.Surface().Focused() {
		t.Error("rich blur should forward to the plain surface")
	}
}

func TestToggleOffOnReplaysCacheWithoutServiceCall(t *testing.T) {
	f := newFixture(t, flagAll)
	cell := f.cell(t, 4)
	key := f.key(4)

	cell.Surface().Input("In him was lfie")
	time.Sleep(3 * testDebounce)
	if !f.engine.Overlaid(key) {
		t.Fatal("expected overlay after analysis")
	}
	before := f.analyzer.callCount()
	want, _ := f.engine.Binding(key)
	wantSpans := want.Rich().SpanCount()

	f.engine.SetPaneEnabled(f.primary.ID, false)
	if f.engine.Overlaid(key) {
		t.Fatal("toggle off must discard live overlays")
	}

	f.engine.SetPaneEnabled(f.primary.ID, true)
	if !f.engine.Overlaid(key) {
		t.Fatal("toggle on must replay the cached analysis")
	}
	got, _ := f.engine.Binding(key)
	if got.Rich().SpanCount() != wantSpans {
		t.Errorf("replayed spans = %d, want %d", got.Rich().SpanCount(), wantSpans)
	}

	// Verse 4 replayed from cache; verse 8 had no cache and content, so one
	// fresh request is expected for it, none for verse 4.
	delta := f.analyzer.callCount() - before
	if delta != 1 {
		t.Errorf("analyzer calls during toggle cycle = %d, want 1 (verse 8 only)", delta)
	}
	if f.analyzer.lastAnalyzed() != "alpha beta alpha" {
		t.Errorf("fresh analysis text = %q, want verse 8's text", f.analyzer.lastAnalyzed())
	}
}

func TestToggleOffCancelsPendingTimers(t *testing.T) {
	f := newFixture(t, flagAll)
	cell := f.cell(t, 4)

	cell.Surface().Input("typing")
	f.engine.SetPaneEnabled(f.primary.ID, false)
	time.Sleep(3 * testDebounce)

	if got := f.analyzer.callCount(); got != 0 {
		t.Errorf("analyzer calls = %d after toggle off, want 0", got)
	}
}

func TestAddAllWordsUniqueWordsThenOneReanalysis(t *testing.T) {
	f := newFixture(t, flagAll)
	cell := f.cell(t, 8) // "alpha beta alpha"
	key := f.key(8)

	f.engine.apply(key, AnalysisEntry{Suggestions: flagAll(cell.Value()), Snapshot: cell.Value()})
	before := f.analyzer.callCount()

	if err := f.engine.AddAllWords(context.Background(), key); err != nil {
		t.Fatalf("AddAllWords failed: %v", err)
	}

	words := f.dict.added()
	if len(words) != 2 || words[0] != "alpha" || words[1] != "beta" {
		t.Errorf("added words = %v, want [alpha beta]", words)
	}
	if delta := f.analyzer.callCount() - before; delta != 1 {
		t.Errorf("re-analyses = %d, want exactly 1", delta)
	}
}

func TestAddAllWordsSkipsShortWords(t *testing.T) {
	f := newFixture(t, flagAll)
	key := f.key(4)
	cell := f.cell(t, 4)

	cell.Surface().SetValue("go to the market")
	f.engine.apply(key, AnalysisEntry{Suggestions: flagAll(cell.Value()), Snapshot: cell.Value()})

	if err := f.engine.AddAllWords(context.Background(), key); err != nil {
		t.Fatalf("AddAllWords failed: %v", err)
	}
	for _, w := range f.dict.added() {
		if len([]rune(w)) < DefaultMinWordLength {
			t.Errorf("added word %q shorter than minimum", w)
		}
	}
}

func TestAcceptSuggestionOptimisticThenReanalysis(t *testing.T) {
	f := newFixture(t, flagAll)
	cell := f.cell(t, 8)
	key := f.key(8)

	f.engine.apply(key, AnalysisEntry{Suggestions: flagAll(cell.Value()), Snapshot: cell.Value()})
	callsBefore := f.analyzer.callCount()

	sug := flagAll(cell.Value())[0]
	if err := f.engine.AcceptSuggestion(context.Background(), key, sug); err != nil {
		t.Fatalf("AcceptSuggestion failed: %v", err)
	}

	if got := f.dict.added(); len(got) != 1 || got[0] != "alpha" {
		t.Errorf("added = %v, want [alpha]", got)
	}
	if delta := f.analyzer.callCount() - callsBefore; delta != 1 {
		t.Errorf("re-analyses = %d, want 1", delta)
	}
}

func TestAcceptSuggestionDictionaryErrorFlashes(t *testing.T) {
	f := newFixture(t, flagAll)
	f.dict.err = errors.New("dictionary down")
	cell := f.cell(t, 8)
	key := f.key(8)

	f.engine.apply(key, AnalysisEntry{Suggestions: flagAll(cell.Value()), Snapshot: cell.Value()})
	callsBefore := f.analyzer.callCount()

	sug := flagAll(cell.Value())[0]
	if err := f.engine.AcceptSuggestion(context.Background(), key, sug); err == nil {
		t.Fatal("expected error from failed dictionary call")
	}

	if cell.Flash() != pane.FlashError {
		t.Errorf("Flash() = %v, want FlashError", cell.Flash())
	}
	if delta := f.analyzer.callCount() - callsBefore; delta != 0 {
		t.Errorf("re-analyses after failure = %d, want 0", delta)
	}
}

func TestOptimisticRemovalBeforeDictionaryCall(t *testing.T) {
	f := newFixture(t, flagAll)
	f.dict.err = errors.New("dictionary down") // dictionary fails, removal still happens
	cell := f.cell(t, 8)
	key := f.key(8)

	f.engine.apply(key, AnalysisEntry{Suggestions: flagAll(cell.Value()), Snapshot: cell.Value()})
	b, _ := f.engine.Binding(key)
	before := b.Rich().SpanCount()

	sug := flagAll(cell.Value())[0]
	_ = f.engine.AcceptSuggestion(context.Background(), key, sug)

	if got := b.Rich().SpanCount(); got != before-1 {
		t.Errorf("SpanCount() = %d, want %d (optimistic removal)", got, before-1)
	}
}

func TestClosePaneDropsEverything(t *testing.T) {
	f := newFixture(t, flagAll)
	cell := f.cell(t, 4)
	key := f.key(4)

	cell.Surface().Input("pending edit")
	f.engine.apply(key, AnalysisEntry{Suggestions: flagAll("pending edit"), Snapshot: "pending edit"})

	f.engine.ClosePane(f.primary.ID)

	if f.engine.BindingCount() != 0 {
		t.Error("close must drop bindings")
	}
	if f.engine.Cache().Len() != 0 {
		t.Error("close must drop cache entries")
	}

	calls := f.analyzer.callCount()
	time.Sleep(3 * testDebounce)
	if f.analyzer.callCount() != calls {
		t.Error("cancelled timers must not fire after close")
	}
}

func TestAnalyzerErrorFlashesCell(t *testing.T) {
	f := newFixture(t, flagAll)
	f.analyzer.err = errors.New("analysis service down")
	cell := f.cell(t, 4)

	cell.Surface().Input("trigger")
	time.Sleep(3 * testDebounce)

	if cell.Flash() != pane.FlashError {
		t.Errorf("Flash() = %v, want FlashError", cell.Flash())
	}
	if f.engine.Overlaid(f.key(4)) {
		t.Error("failed analysis must not overlay")
	}
}

// Typing keeps going while analysis timers fire on their own goroutines; the
// last edit must end up authoritative and nothing may trip the race detector.
func TestConcurrentTypingAndAnalysis(t *testing.T) {
	registry := pane.NewRegistry(nil)
	p := pane.New(pane.Config{Role: pane.RolePrimary, Resource: "main"})
	p.LoadVerses([]pane.Verse{{Index: 4, Reference: "Jn 1:4", Text: "seed"}})
	if err := registry.Add(p); err != nil {
		t.Fatalf("registry.Add failed: %v", err)
	}

	analyzer := &fakeAnalyzer{respond: flagAll}
	engine, err := NewEngine(Options{
		Analyzer: analyzer,
		Registry: registry,
		Debounce: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	engine.AttachPane(p)

	cell, _ := p.CellAt(4)
	key := Key{PaneID: p.ID, VerseIndex: 4}

	for i := 0; i < 50; i++ {
		cell.Surface().Input("draft " + strconv.Itoa(i))
		time.Sleep(time.Millisecond)
	}
	cell.Surface().Input("final text")

	deadline := time.Now().Add(2 * time.Second)
	for {
		if b, ok := engine.Binding(key); ok && b.Rich().Value() == "final text" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("analysis never settled on the final text")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSimilarWordsLazy(t *testing.T) {
	f := newFixture(t, flagAll)
	got, err := f.engine.SimilarWords(context.Background(), "word")
	if err != nil {
		t.Fatalf("SimilarWords failed: %v", err)
	}
	if len(got) != 1 || got[0] != "words" {
		t.Errorf("SimilarWords = %v", got)
	}
}
