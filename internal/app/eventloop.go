package app

import (
	"context"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/versetool/versepane/internal/collect"
	"github.com/versetool/versepane/internal/overlay"
	"github.com/versetool/versepane/internal/pane"
	"github.com/versetool/versepane/internal/term"
	"github.com/versetool/versepane/internal/versesync"
)

// Run starts the terminal UI and blocks until the context is cancelled or
// the user quits. It may be called once.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(app.done)

	if err := app.backend.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	defer app.backend.Shutdown()

	app.renderer.Draw()

	terminal, ok := app.backend.(*term.Terminal)
	if !ok {
		// Headless backends have no event source; render on redraw
		// requests until cancelled.
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-app.redraw:
				app.renderer.Draw()
			}
		}
	}

	events := make(chan tcell.Event)
	go func() {
		for {
			ev := terminal.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case <-ctx.Done():
			terminal.PostQuit()
			return nil
		case <-app.redraw:
			app.renderer.Draw()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if quit := app.handleEvent(ctx, ev); quit {
				return nil
			}
		}
	}
}

// handleEvent dispatches one terminal event. It reports whether the
// application should exit.
func (app *Application) handleEvent(ctx context.Context, ev tcell.Event) bool {
	switch e := ev.(type) {
	case *tcell.EventResize:
		app.renderer.Draw()
	case *tcell.EventKey:
		return app.handleKey(ctx, e)
	case *tcell.EventMouse:
		app.handleMouse(ctx, e)
	case *tcell.EventInterrupt:
		return true
	}
	return false
}

func (app *Application) handleKey(ctx context.Context, e *tcell.EventKey) bool {
	switch e.Key() {
	case tcell.KeyCtrlC:
		return true
	case tcell.KeyEscape:
		// Escape abandons an in-flight collection gesture and any edit focus.
		app.collector.Cancel()
		app.blurFocus()
		app.renderer.Draw()
	case tcell.KeyEnter:
		app.blurFocus()
		app.renderer.Draw()
	case tcell.KeyRune:
		app.editFocused(func(text string) string { return text + string(e.Rune()) })
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		app.editFocused(func(text string) string {
			runes := []rune(text)
			if len(runes) == 0 {
				return text
			}
			return string(runes[:len(runes)-1])
		})
	case tcell.KeyCtrlY:
		app.acceptFirstSuggestion(ctx)
	case tcell.KeyCtrlD:
		app.learnAllWords(ctx)
	case tcell.KeyCtrlR:
		app.showSimilarWords(ctx)
	case tcell.KeyCtrlL:
		app.syncToVisible(ctx)
	case tcell.KeyUp:
		app.scrollPrimary(-1)
	case tcell.KeyDown:
		app.scrollPrimary(1)
	case tcell.KeyPgUp:
		app.scrollPrimary(-5)
	case tcell.KeyPgDn:
		app.scrollPrimary(5)
	}
	return false
}

// focusVerse gives a cell edit focus, blurring (and thereby committing) the
// previously focused one.
func (app *Application) focusVerse(p *pane.Pane, cell *pane.VerseCell) {
	key := overlay.Key{PaneID: p.ID, VerseIndex: cell.VerseIndex}
	if app.focused && app.focusKey == key {
		return
	}
	app.blurFocus()
	cell.Surface().Focus()
	app.focusKey = key
	app.focused = true
}

// blurFocus drops edit focus. The surface blur drives the blur-commit rule.
func (app *Application) blurFocus() {
	if !app.focused {
		return
	}
	if cell, ok := app.focusedCell(); ok {
		cell.Surface().Blur()
	}
	app.focused = false
}

// focusedCell resolves the focus key against the live registry, so a chapter
// load that replaced the cells cannot leave a stale pointer behind.
func (app *Application) focusedCell() (*pane.VerseCell, bool) {
	if !app.focused {
		return nil, false
	}
	p, ok := app.registry.Get(app.focusKey.PaneID)
	if !ok {
		return nil, false
	}
	return p.CellAt(app.focusKey.VerseIndex)
}

// editFocused applies a text transform to the focused cell as a user edit.
// When an overlay binding is live the edit goes through the rich surface, so
// the mirror copies it into the plain value the same way a widget would.
func (app *Application) editFocused(transform func(string) string) {
	cell, ok := app.focusedCell()
	if !ok || cell.Pending() {
		return
	}
	if b, ok := app.engine.Binding(app.focusKey); ok {
		b.Rich().Input(transform(b.Rich().Value()))
	} else {
		cell.Surface().Input(transform(cell.Value()))
	}
	app.renderer.Draw()
}

// acceptFirstSuggestion accepts the first rendered suggestion on the focused
// verse. The dictionary call runs off the event loop; the engine's snapshot
// rule keeps the late re-analysis honest.
func (app *Application) acceptFirstSuggestion(ctx context.Context) {
	if !app.focused {
		return
	}
	b, ok := app.engine.Binding(app.focusKey)
	if !ok {
		return
	}
	sugs := b.Suggestions()
	if len(sugs) == 0 {
		return
	}
	key := app.focusKey
	go func() {
		if err := app.engine.AcceptSuggestion(ctx, key, sugs[0]); err != nil {
			app.log.Warn("accept suggestion failed", "pane", key.PaneID, "verse", key.VerseIndex, "err", err)
		}
		app.requestRedraw()
	}()
}

// learnAllWords feeds every suggested word on the focused verse to the
// dictionary, then lets the engine re-analyze once.
func (app *Application) learnAllWords(ctx context.Context) {
	if !app.focused {
		return
	}
	key := app.focusKey
	go func() {
		if err := app.engine.AddAllWords(ctx, key); err != nil {
			app.log.Warn("add all words failed", "pane", key.PaneID, "verse", key.VerseIndex, "err", err)
		}
		app.requestRedraw()
	}()
}

// showSimilarWords logs close spellings for the focused verse's first
// suggested word. The log line stands in for a picker the UI does not have.
func (app *Application) showSimilarWords(ctx context.Context) {
	if !app.focused {
		return
	}
	b, ok := app.engine.Binding(app.focusKey)
	if !ok {
		return
	}
	sugs := b.Suggestions()
	if len(sugs) == 0 {
		return
	}
	word := sugs[0].Substring
	go func() {
		words, err := app.engine.SimilarWords(ctx, word)
		if err != nil {
			app.log.Warn("similar words failed", "word", word, "err", err)
			return
		}
		app.log.Info("similar words", "word", word, "choices", strings.Join(words, ", "))
	}()
}

// syncToVisible aligns followers on whatever verse the primary pane is
// showing, for when no explicit verse was clicked.
func (app *Application) syncToVisible(ctx context.Context) {
	p, ok := app.registry.Primary()
	if !ok {
		return
	}
	verse, ok := versesync.VisibleVerse(p)
	if !ok {
		return
	}
	app.coordinator.SyncFrom(ctx, p, verse)
	app.renderer.Draw()
}

func (app *Application) scrollPrimary(bands int) {
	p, ok := app.registry.Primary()
	if !ok {
		return
	}
	cells := p.Cells()
	if len(cells) == 0 {
		return
	}
	p.ScrollTo(p.ScrollTop() + term.BandHeight(cells[0].Height(), bands))
	app.renderer.Draw()
}

// handleMouse implements click-to-sync, wheel scrolling, and the
// drag-to-collect gesture.
func (app *Application) handleMouse(ctx context.Context, e *tcell.EventMouse) {
	x, y := e.Position()
	width, _ := app.backend.Size()
	p, ok := term.PaneAt(app.registry, width, x)
	if !ok {
		return
	}

	switch {
	case e.Buttons()&tcell.WheelUp != 0:
		app.scrollPane(p, -1)
	case e.Buttons()&tcell.WheelDown != 0:
		app.scrollPane(p, 1)
	case e.Buttons()&tcell.Button1 != 0:
		app.handleDrag(p, y)
	default:
		// Button released.
		app.finishGesture(ctx, p, y)
	}
}

func (app *Application) scrollPane(p *pane.Pane, bands int) {
	cells := p.Cells()
	if len(cells) == 0 {
		return
	}
	p.ScrollTo(p.ScrollTop() + term.BandHeight(cells[0].Height(), bands))
	app.renderer.Draw()
}

// handleDrag grows the collection while the primary button is held. The
// first press seeds the batch; crossing other verses appends them in
// hover order.
func (app *Application) handleDrag(p *pane.Pane, y int) {
	cell, ok := term.VerseAt(p, y)
	if !ok {
		if app.collector.State() == collect.StateCollecting {
			app.collector.HoverPane(p.ID)
		}
		return
	}
	item := collect.Item{
		SourcePaneID: p.ID,
		VerseIndex:   cell.VerseIndex,
		Reference:    cell.Reference,
		Text:         cell.Value(),
	}
	if app.collector.State() == collect.StateCollecting {
		app.collector.Hover(item)
		app.collector.HoverPane(p.ID)
		return
	}
	app.collector.Start(item)
}

// finishGesture resolves a button release: a multi-verse collection drops
// as a batch onto the last hovered pane, a single-verse press on the
// primary pane is a sync click.
func (app *Application) finishGesture(ctx context.Context, p *pane.Pane, y int) {
	if app.collector.State() != collect.StateCollecting {
		return
	}
	batch, targetID, err := app.collector.End()
	if err != nil {
		return
	}

	if len(batch) == 1 && targetID == batch[0].SourcePaneID {
		// No motion across verses or panes: treat as a verse click. A click
		// on the primary pane also moves edit focus there; anywhere else
		// blurs, which commits a pending edit.
		if cell, ok := term.VerseAt(p, y); ok && cell.VerseIndex == batch[0].VerseIndex {
			if p.Role == pane.RolePrimary {
				app.focusVerse(p, cell)
			} else {
				app.blurFocus()
			}
			app.coordinator.ClickVerse(ctx, p, cell.VerseIndex)
			app.renderer.Draw()
			return
		}
		app.blurFocus()
	}

	go func() {
		app.deliverer.DropTo(ctx, targetID, batch)
		app.requestRedraw()
	}()
}
