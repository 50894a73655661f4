// Package versesync jumps every synchronized pane to the verse the user is
// looking at in the primary pane.
//
// Resolution is local-first: a pane that already renders the target verse is
// scrolled directly; otherwise the external chapter loader is asked to load
// the verse's chapter into the pane and the scroll is retried exactly once.
// A verse still missing after the load is a recoverable miss — logged once,
// never retried in a loop.
package versesync
