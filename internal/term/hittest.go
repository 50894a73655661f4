package term

import "github.com/versetool/versepane/internal/pane"

// PaneAt maps a screen x coordinate to the pane column under it, using
// the same equal-width layout Draw produces. ok is false for empty
// registries and out-of-range coordinates.
func PaneAt(reg *pane.Registry, screenWidth, x int) (p *pane.Pane, ok bool) {
	panes := reg.List()
	if len(panes) == 0 || screenWidth < len(panes) || x < 0 || x >= screenWidth {
		return nil, false
	}
	col := x / (screenWidth / len(panes))
	if col >= len(panes) {
		col = len(panes) - 1
	}
	return panes[col], true
}

// VerseAt maps a screen y coordinate to the verse cell drawn in that row
// band, honoring the pane's scroll offset.
func VerseAt(p *pane.Pane, y int) (*pane.VerseCell, bool) {
	if y < 1 {
		return nil, false
	}
	band := (y - 1) / rowsPerVerse
	scrollTop := p.ScrollTop()
	for _, cell := range p.Cells() {
		h := cell.Height()
		if h <= 0 || cell.Top() < scrollTop {
			continue
		}
		if (cell.Top()-scrollTop)/h == band {
			return cell, true
		}
	}
	return nil, false
}

// BandHeight converts a number of screen bands to the pane-space scroll
// distance for cells of the given height.
func BandHeight(cellHeight, bands int) int {
	return cellHeight * bands
}
