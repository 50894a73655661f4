package app

import "github.com/versetool/versepane/internal/event"

// subscribe wires cross-component reactions through the event bus.
func (app *Application) subscribe() {
	// A closed pane takes its overlays, timers, and cache with it.
	_, _ = app.bus.Subscribe(event.TopicPaneClosed, func(e event.Event) {
		if payload, ok := e.Payload.(event.PaneClosed); ok {
			app.engine.ClosePane(payload.PaneID)
			app.requestRedraw()
		}
	})

	// A loaded chapter replaces a pane's cells, so the engine's per-cell
	// edit wiring has to be rebuilt for the new set.
	_, _ = app.bus.Subscribe(event.TopicChapterLoaded, func(e event.Event) {
		if payload, ok := e.Payload.(event.ChapterLoaded); ok {
			if p, ok := app.registry.Get(payload.PaneID); ok {
				app.engine.AttachPane(p)
			}
			app.requestRedraw()
		}
	})

	// Anything that changes what a frame shows schedules a redraw.
	for _, topic := range []event.Topic{
		event.TopicAnalysisApplied,
		event.TopicVerseCommitted,
		event.TopicSyncPerformed,
		event.TopicBatchDropped,
		event.TopicPaneOpened,
	} {
		_, _ = app.bus.Subscribe(topic, func(event.Event) {
			app.requestRedraw()
		})
	}
}
