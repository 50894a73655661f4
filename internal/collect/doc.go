// Package collect implements the drag gesture that gathers verses into a
// batch and the delivery of that batch onto a pane.
//
// A collection is pointer-gesture-scoped: it begins when a drag handle is
// grabbed, grows in hover order (duplicate verse indexes suppressed), and
// resolves its drop target as the last pane the pointer hovered while
// collecting — not whatever element happens to sit under the pointer at
// release. Delivery translates matched verses one at a time with a short
// pause between items, so the translation collaborator is never flooded and
// per-item feedback stays legible.
package collect
