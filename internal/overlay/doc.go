// Package overlay keeps a pane's rich suggestion rendering, its cached
// analysis results, and the authoritative plain verse text in agreement.
//
// State is keyed by (paneID, verseIndex) — never by verse index alone: two
// panes can show different text for the same verse, so an analysis computed
// for one pane must never decorate another. Every cached result carries the
// exact source text it was computed against, and a result whose snapshot no
// longer matches the live text is discarded silently.
//
// The engine owns the per-verse debounce loop that requests re-analysis
// after typing pauses, and the dictionary feedback loop that removes an
// accepted suggestion optimistically and then re-analyzes so client and
// service state reconverge.
package overlay
