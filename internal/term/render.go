package term

import (
	"github.com/gdamore/tcell/v2"

	"github.com/versetool/versepane/internal/overlay"
	"github.com/versetool/versepane/internal/pane"
	"github.com/versetool/versepane/internal/service"
)

// rowsPerVerse is the screen band one verse occupies: a reference row and
// a text row.
const rowsPerVerse = 2

// Styles for pane chrome and analysis spans.
var (
	styleTitle     = tcell.StyleDefault.Bold(true)
	styleReference = tcell.StyleDefault.Dim(true)
	styleText      = tcell.StyleDefault
	styleSeparator = tcell.StyleDefault.Dim(true)

	styleHint    = tcell.StyleDefault.Foreground(tcell.ColorBlue).Underline(true)
	styleWarning = tcell.StyleDefault.Foreground(tcell.ColorYellow).Underline(true)
	styleError   = tcell.StyleDefault.Foreground(tcell.ColorRed).Underline(true)

	styleFlashOK  = tcell.StyleDefault.Background(tcell.ColorDarkGreen)
	styleFlashBad = tcell.StyleDefault.Background(tcell.ColorDarkRed)
)

func styleFor(sev service.Severity) tcell.Style {
	switch sev {
	case service.SeverityWarning:
		return styleWarning
	case service.SeverityError:
		return styleError
	default:
		return styleHint
	}
}

// Renderer draws the registered panes into a backend.
type Renderer struct {
	backend  Backend
	registry *pane.Registry
	engine   *overlay.Engine
}

// NewRenderer creates a renderer. The engine may be nil, in which case
// all verse text draws unannotated.
func NewRenderer(b Backend, reg *pane.Registry, eng *overlay.Engine) *Renderer {
	return &Renderer{backend: b, registry: reg, engine: eng}
}

// Draw renders one full frame.
func (r *Renderer) Draw() {
	r.backend.Clear()

	panes := r.registry.List()
	width, height := r.backend.Size()
	if len(panes) == 0 || width < 2 || height < 2 {
		r.backend.Show()
		return
	}

	colWidth := width / len(panes)
	for i, p := range panes {
		left := i * colWidth
		innerWidth := colWidth - 1
		if i > 0 {
			for y := 0; y < height; y++ {
				r.backend.SetCell(left-1, y, '│', styleSeparator)
			}
		}
		r.drawPane(p, left, innerWidth, height)
	}
	r.backend.Show()
}

func (r *Renderer) drawPane(p *pane.Pane, left, width, height int) {
	title := p.Title
	if title == "" {
		title = p.ID
	}
	if p.SyncEnabled() {
		title += " [sync]"
	}
	r.drawString(left, 0, width, title, styleTitle)

	scrollTop := p.ScrollTop()
	for _, cell := range p.Cells() {
		h := cell.Height()
		if h <= 0 {
			continue
		}
		band := (cell.Top() - scrollTop) / h
		y := 1 + band*rowsPerVerse
		if y < 1 || y+1 >= height || cell.Top() < scrollTop {
			continue
		}

		ref := cell.Reference
		if cell.Pending() {
			ref += " …"
		} else if cell.Dirty() {
			ref += " *"
		}
		r.drawString(left, y, width, ref, styleReference)
		r.drawVerseText(p, cell, left, y+1, width)
	}
}

// drawVerseText draws one verse row, coloring analysis spans when the
// overlay engine holds a live binding for the verse.
func (r *Renderer) drawVerseText(p *pane.Pane, cell *pane.VerseCell, left, y, width int) {
	base := styleText
	switch cell.Flash() {
	case pane.FlashSuccess:
		base = styleFlashOK
	case pane.FlashError:
		base = styleFlashBad
	}

	if r.engine != nil {
		key := overlay.Key{PaneID: p.ID, VerseIndex: cell.VerseIndex}
		if b, ok := r.engine.Binding(key); ok {
			x := left
			for _, run := range b.Rich().Runs() {
				style := base
				if run.Suggestion != nil {
					style = styleFor(run.Suggestion.Severity)
				}
				x = r.drawString(x, y, width-(x-left), run.Text, style)
				if x >= left+width {
					break
				}
			}
			return
		}
	}
	r.drawString(left, y, width, cell.Value(), base)
}

// drawString draws s clipped to maxWidth cells and returns the x position
// after the last rune drawn.
func (r *Renderer) drawString(x, y, maxWidth int, s string, style tcell.Style) int {
	if maxWidth <= 0 {
		return x
	}
	end := x + maxWidth
	for _, ch := range s {
		if x >= end {
			break
		}
		r.backend.SetCell(x, y, ch, style)
		x++
	}
	return x
}
