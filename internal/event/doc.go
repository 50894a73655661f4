// Package event provides the synchronous publish/subscribe bus the editing
// core uses to announce externally observable state changes (verse commits,
// applied analyses, cross-pane syncs, batch drops, pane lifecycle).
//
// Handlers run in the publisher's goroutine in subscription order. A handler
// error is recorded in the bus stats; it never stops delivery to later
// handlers.
package event
