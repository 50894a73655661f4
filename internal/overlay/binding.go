package overlay

import (
	"github.com/versetool/versepane/internal/pane"
	"github.com/versetool/versepane/internal/service"
	"github.com/versetool/versepane/internal/surface"
)

// Binding pairs a verse cell's hidden plain surface with the rich surface
// currently shown in its place. At most one binding exists per key.
//
// Mirror discipline: every user edit on the rich surface is copied into the
// plain surface as a native edit, so dirty tracking and autosave behave
// identically whichever surface the user is typing in. Focus and blur are
// forwarded the same way. The rich rendering itself is never patched after
// an edit; the engine tears the binding down and lets a later analysis
// rebuild it.
type Binding struct {
	key      Key
	cell     *pane.VerseCell
	rich     *surface.Rich
	snapshot string

	// onEdit is invoked after a rich edit has been mirrored, so the engine
	// can tear this binding down and restart the verse's debounce.
	onEdit func(key Key)
}

// newBinding builds the rich rendering for an analysis entry and wires the
// two-way mirror.
func newBinding(key Key, cell *pane.VerseCell, entry AnalysisEntry, onEdit func(Key)) *Binding {
	b := &Binding{
		key:      key,
		cell:     cell,
		rich:     surface.NewRich(entry.Snapshot, entry.Suggestions),
		snapshot: entry.Snapshot,
		onEdit:   onEdit,
	}

	plain := cell.Surface()
	b.rich.OnChange(func(text string) {
		// Mirror first so autosave state is already correct when the
		// engine reacts to the edit.
		plain.Input(text)
		if b.onEdit != nil {
			b.onEdit(b.key)
		}
	})
	b.rich.OnFocus(plain.Focus)
	b.rich.OnBlur(plain.Blur)

	if plain.Focused() {
		b.rich.SetValue(plain.Value())
		b.rich.Focus()
	}
	return b
}

// Rich returns the visible rich surface.
func (b *Binding) Rich() *surface.Rich { return b.rich }

// Suggestions returns the suggestions still rendered as spans.
func (b *Binding) Suggestions() []service.Suggestion {
	var out []service.Suggestion
	for _, run := range b.rich.Runs() {
		if run.Suggestion != nil {
			out = append(out, *run.Suggestion)
		}
	}
	return out
}

// destroy tears the rich surface down. The plain surface takes over visually
// and keeps its value; no state is lost because the plain surface was the
// value holder all along.
func (b *Binding) destroy() {
	b.onEdit = nil
	b.rich.Destroy()
}
