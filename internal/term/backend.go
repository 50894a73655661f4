package term

import "github.com/gdamore/tcell/v2"

// Backend is the character grid the renderer draws into.
type Backend interface {
	// Init prepares the backend for drawing.
	Init() error

	// Shutdown restores the terminal.
	Shutdown()

	// Size returns the grid dimensions in cells.
	Size() (width, height int)

	// SetCell places one rune.
	SetCell(x, y int, r rune, style tcell.Style)

	// Clear erases the grid.
	Clear()

	// Show flushes pending drawing to the terminal.
	Show()
}

// Null is an in-memory backend for tests and headless runs.
type Null struct {
	width, height int
	runes         [][]rune
	styles        [][]tcell.Style
}

// NewNull creates a null backend with a fixed size.
func NewNull(width, height int) *Null {
	n := &Null{width: width, height: height}
	n.Clear()
	return n
}

// Init implements Backend.
func (n *Null) Init() error { return nil }

// Shutdown implements Backend.
func (n *Null) Shutdown() {}

// Size implements Backend.
func (n *Null) Size() (int, int) { return n.width, n.height }

// SetCell implements Backend.
func (n *Null) SetCell(x, y int, r rune, style tcell.Style) {
	if x < 0 || y < 0 || x >= n.width || y >= n.height {
		return
	}
	n.runes[y][x] = r
	n.styles[y][x] = style
}

// Clear implements Backend.
func (n *Null) Clear() {
	n.runes = make([][]rune, n.height)
	n.styles = make([][]tcell.Style, n.height)
	for y := 0; y < n.height; y++ {
		n.runes[y] = make([]rune, n.width)
		n.styles[y] = make([]tcell.Style, n.width)
		for x := 0; x < n.width; x++ {
			n.runes[y][x] = ' '
		}
	}
}

// Show implements Backend.
func (n *Null) Show() {}

// Rune returns the rune at a position, for assertions.
func (n *Null) Rune(x, y int) rune {
	if x < 0 || y < 0 || x >= n.width || y >= n.height {
		return 0
	}
	return n.runes[y][x]
}

// Style returns the style at a position, for assertions.
func (n *Null) Style(x, y int) tcell.Style {
	if x < 0 || y < 0 || x >= n.width || y >= n.height {
		return tcell.StyleDefault
	}
	return n.styles[y][x]
}

// Row returns one row's text with trailing spaces trimmed.
func (n *Null) Row(y int) string {
	if y < 0 || y >= n.height {
		return ""
	}
	end := n.width
	for end > 0 && n.runes[y][end-1] == ' ' {
		end--
	}
	return string(n.runes[y][:end])
}
