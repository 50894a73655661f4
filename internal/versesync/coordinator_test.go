package versesync

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/versetool/versepane/internal/event"
	"github.com/versetool/versepane/internal/pane"
	"github.com/versetool/versepane/internal/service"
)

// fakeLoader resolves any verse to one chapter and loads canned verses.
type fakeLoader struct {
	mu       sync.Mutex
	loads    int
	chapters map[string][]pane.Verse // by paneID
	panes    map[string]*pane.Pane
	resolve  error
	loadErr  error
}

func (l *fakeLoader) ResolveVerseLocation(_ context.Context, verseIndex int) (service.VerseLocation, error) {
	if l.resolve != nil {
		return service.VerseLocation{}, l.resolve
	}
	return service.VerseLocation{Book: "John", Chapter: 1 + verseIndex/100}, nil
}

func (l *fakeLoader) LoadChapter(_ context.Context, paneID string, _ service.VerseLocation) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loads++
	if l.loadErr != nil {
		return l.loadErr
	}
	if verses, ok := l.chapters[paneID]; ok {
		l.panes[paneID].LoadVerses(verses)
	}
	return nil
}

// recordLogger counts warning lines by substring.
type recordLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordLogger) Debug(string, ...any) {}
func (l *recordLogger) Error(string, ...any) {}
func (l *recordLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordLogger) warnCount(substr string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, w := range l.warns {
		if strings.Contains(w, substr) {
			n++
		}
	}
	return n
}

func chapterVerses(from, to int) []pane.Verse {
	var out []pane.Verse
	for i := from; i <= to; i++ {
		out = append(out, pane.Verse{Index: i, Reference: "Jn", Text: "verse"})
	}
	return out
}

type syncFixture struct {
	registry  *pane.Registry
	primary   *pane.Pane
	secondary *pane.Pane
	coord     *Coordinator
	loader    *fakeLoader
	logger    *recordLogger
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()

	registry := pane.NewRegistry(nil)
	primary := pane.New(pane.Config{Role: pane.RolePrimary, Title: "Primary", SyncEnabled: true})
	secondary := pane.New(pane.Config{Role: pane.RoleSecondary, Title: "Reference", SyncEnabled: true})
	primary.LoadVerses(chapterVerses(1, 20))
	secondary.LoadVerses(chapterVerses(1, 20))
	if err := registry.Add(primary); err != nil {
		t.Fatalf("Add primary: %v", err)
	}
	if err := registry.Add(secondary); err != nil {
		t.Fatalf("Add secondary: %v", err)
	}

	loader := &fakeLoader{
		chapters: make(map[string][]pane.Verse),
		panes:    map[string]*pane.Pane{secondary.ID: secondary},
	}
	logger := &recordLogger{}
	coord, err := New(Options{
		Registry: registry,
		Loader:   loader,
		Log:      logger,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return &syncFixture{
		registry:  registry,
		primary:   primary,
		secondary: secondary,
		coord:     coord,
		loader:    loader,
		logger:    logger,
	}
}

func TestClickSyncsSecondaryToClampedOffset(t *testing.T) {
	f := newSyncFixture(t)

	f.coord.ClickVerse(context.Background(), f.primary, 12)

	cell, _ := f.secondary.CellAt(12)
	want := cell.Top() - DefaultScrollMargin
	if want < 0 {
		want = 0
	}
	if got := f.secondary.ScrollTop(); got != want {
		t.Errorf("secondary scroll = %d, want %d", got, want)
	}
}

func TestSyncClampsAtZeroForEarlyVerses(t *testing.T) {
	f := newSyncFixture(t)

	// Verse 1 sits at top 0; 0 - 50 clamps to 0.
	f.coord.ClickVerse(context.Background(), f.primary, 1)
	if got := f.secondary.ScrollTop(); got != 0 {
		t.Errorf("secondary scroll = %d, want 0", got)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	f := newSyncFixture(t)

	f.coord.SyncFrom(context.Background(), f.primary, 9)
	first := f.secondary.ScrollTop()
	f.coord.SyncFrom(context.Background(), f.primary, 9)
	second := f.secondary.ScrollTop()

	if first != second {
		t.Errorf("scroll positions differ across identical syncs: %d vs %d", first, second)
	}
}

func TestSecondaryClickDoesNotSync(t *testing.T) {
	f := newSyncFixture(t)

	before := f.primary.ScrollTop()
	f.coord.ClickVerse(context.Background(), f.secondary, 15)

	if f.primary.ScrollTop() != before {
		t.Error("click in a secondary pane must not move the primary")
	}
}

func TestDisabledPaneIsNotDragged(t *testing.T) {
	f := newSyncFixture(t)
	f.secondary.SetSyncEnabled(false)

	f.coord.SyncFrom(context.Background(), f.primary, 12)
	if got := f.secondary.ScrollTop(); got != 0 {
		t.Errorf("disabled secondary scrolled to %d, want 0", got)
	}
}

func TestCatchUpReenableSyncsOnce(t *testing.T) {
	f := newSyncFixture(t)
	f.secondary.SetSyncEnabled(false)

	f.coord.SyncFrom(context.Background(), f.primary, 12)
	if f.secondary.ScrollTop() != 0 {
		t.Fatal("disabled pane must not move")
	}

	f.coord.SetCatchUp(context.Background(), f.secondary, true)

	cell, _ := f.secondary.CellAt(12)
	if got, want := f.secondary.ScrollTop(), cell.Top()-DefaultScrollMargin; got != want {
		t.Errorf("catch-up scroll = %d, want %d", got, want)
	}
}

func TestChapterLoadRetryOnce(t *testing.T) {
	f := newSyncFixture(t)
	// Secondary shows a different chapter; verse 112 is not rendered.
	f.secondary.LoadVerses(chapterVerses(1, 20))
	f.loader.chapters[f.secondary.ID] = chapterVerses(101, 130)

	f.coord.SyncFrom(context.Background(), f.primary, 112)

	if f.loader.loads != 1 {
		t.Fatalf("chapter loads = %d, want 1", f.loader.loads)
	}
	cell, ok := f.secondary.CellAt(112)
	if !ok {
		t.Fatal("verse 112 should be loaded into the secondary")
	}
	if got, want := f.secondary.ScrollTop(), cell.Top()-DefaultScrollMargin; got != want {
		t.Errorf("scroll = %d, want %d", got, want)
	}
}

func TestMissAfterLoadLogsOnceNoRetryStorm(t *testing.T) {
	f := newSyncFixture(t)
	// Loader succeeds but the loaded chapter still lacks the verse.
	f.loader.chapters[f.secondary.ID] = chapterVerses(101, 110)

	f.coord.SyncFrom(context.Background(), f.primary, 499)

	if f.loader.loads != 1 {
		t.Errorf("chapter loads = %d, want exactly 1 (no retry storm)", f.loader.loads)
	}
	if got := f.logger.warnCount("after chapter load"); got != 1 {
		t.Errorf("miss warnings = %d, want 1", got)
	}
}

func TestSyncPublishesEvent(t *testing.T) {
	bus := event.NewBus()
	var got []event.SyncPerformed
	if _, err := bus.Subscribe(event.TopicSyncPerformed, func(ev event.Event) {
		got = append(got, ev.Payload.(event.SyncPerformed))
	}); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	f := newSyncFixture(t)
	coord, err := New(Options{Registry: f.registry, Loader: f.loader, Bus: bus})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	coord.SyncFrom(context.Background(), f.primary, 5)

	if len(got) != 1 || got[0].VerseIndex != 5 || got[0].PanesMoved != 1 {
		t.Errorf("events = %+v, want one sync.performed moving 1 pane", got)
	}
}

func TestVisibleVerseCenterClosest(t *testing.T) {
	p := pane.New(pane.Config{Role: pane.RoleSecondary, CellHeight: 100})
	p.LoadVerses(chapterVerses(1, 10))
	p.SetViewportHeight(300)

	// Viewport covers [250, 550); center 400 falls inside verse 5
	// (top 400, center 450) vs verse 4 (top 300, center 350) — both are
	// 50 away; the scan keeps the first, verse 4.
	p.ScrollTo(250)
	got, ok := VisibleVerse(p)
	if !ok || got != 4 {
		t.Errorf("VisibleVerse = %d, %v, want 4", got, ok)
	}

	// Shifting down by 10 makes verse 5's center strictly closest.
	p.ScrollTo(260)
	got, _ = VisibleVerse(p)
	if got != 5 {
		t.Errorf("VisibleVerse = %d, want 5", got)
	}
}

func TestVisibleVerseEmptyPane(t *testing.T) {
	p := pane.New(pane.Config{Role: pane.RoleSecondary})
	if _, ok := VisibleVerse(p); ok {
		t.Error("VisibleVerse on an empty pane should report false")
	}
}
