// Package pane models the text windows of the editor: ordered columns of
// verse cells bound to one text resource each.
//
// A Pane owns identity, role, and the vertical geometry its cells occupy. A
// VerseCell owns the authoritative plain value of one verse and the
// blur-commit rule that feeds the autosave bridge. The Registry is the live
// set of open panes and the join point for every cross-pane operation.
package pane
