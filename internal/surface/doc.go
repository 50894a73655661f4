// Package surface abstracts the editable text surface of a verse cell.
//
// The overlay engine never touches a concrete widget. It talks to the
// Surface interface, implemented twice: Plain holds the authoritative value,
// Rich presents the same value with suggestion ranges wrapped in styled,
// clickable spans. Swapping one for the other and mirroring edits between
// them is the overlay engine's job; this package only provides the two
// implementations and the span rendering.
package surface
