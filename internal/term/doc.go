// Package term renders panes into a terminal.
//
// A Backend abstracts the character grid so the layout and span-coloring
// logic can be tested against an in-memory implementation; the real
// implementation wraps a tcell screen. Rendering is column-per-pane:
// every registered pane gets an equal-width column with a title row, and
// verse cells map to fixed-height row bands driven by the pane's scroll
// offset. Analysis spans draw in severity colors supplied by the overlay
// engine's live bindings.
package term
