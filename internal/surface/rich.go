package surface

import (
	"sort"
	"strings"
	"sync"

	"github.com/versetool/versepane/internal/service"
)

// Run is one contiguous stretch of a rich rendering. A run either carries a
// suggestion span or is plain pass-through text.
type Run struct {
	// Text is the literal text of the run.
	Text string

	// Suggestion is non-nil for highlighted runs.
	Suggestion *service.Suggestion
}

// Rich presents a value with suggestion ranges wrapped in styled spans.
//
// The rendering is never patched incrementally: any user edit through the
// rich surface leaves the runs untouched and only updates the value, because
// the binding tears the rich surface down right after mirroring the edit.
//
// The renderer reads runs while suggestion acceptance demotes them, so run
// and value state lives behind a mutex. Callbacks fire outside the lock.
type Rich struct {
	mu        sync.Mutex
	value     string
	runs      []Run
	focused   bool
	destroyed bool

	onChange func(string)
	onFocus  func()
	onBlur   func()
}

// NewRich creates a rich surface rendering text with the given suggestions.
//
// Suggestions with invalid or overlapping rune ranges are dropped rather
// than rendered wrong; offsets are clamped to the text length.
func NewRich(text string, suggestions []service.Suggestion) *Rich {
	return &Rich{
		value: text,
		runs:  buildRuns(text, suggestions),
	}
}

// buildRuns splits text into plain and highlighted runs.
func buildRuns(text string, suggestions []service.Suggestion) []Run {
	runes := []rune(text)

	ordered := make([]service.Suggestion, len(suggestions))
	copy(ordered, suggestions)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	var runs []Run
	pos := 0
	for i := range ordered {
		s := ordered[i]
		if s.Start < pos || s.Start >= s.End || s.End > len(runes) {
			continue
		}
		if s.Start > pos {
			runs = append(runs, Run{Text: string(runes[pos:s.Start])})
		}
		span := s
		// The live text is authoritative over whatever the analysis saw.
		span.Substring = string(runes[s.Start:s.End])
		runs = append(runs, Run{Text: span.Substring, Suggestion: &span})
		pos = s.End
	}
	if pos < len(runes) {
		runs = append(runs, Run{Text: string(runes[pos:])})
	}
	return runs
}

// Runs returns the current rendering runs in order.
func (r *Rich) Runs() []Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Run, len(r.runs))
	copy(out, r.runs)
	return out
}

// SpanCount returns the number of highlighted runs still rendered.
func (r *Rich) SpanCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, run := range r.runs {
		if run.Suggestion != nil {
			n++
		}
	}
	return n
}

// RemoveSpan demotes the highlighted run covering the given start offset to
// plain text. Used for optimistic removal when a suggestion is accepted.
// It reports whether a span was removed.
func (r *Rich) RemoveSpan(start int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, run := range r.runs {
		if run.Suggestion != nil && run.Suggestion.Start == start {
			r.runs[i].Suggestion = nil
			return true
		}
	}
	return false
}

// Markup renders the runs as markup with literal text escaped, so verse text
// containing markup characters can never be interpreted as markup.
func (r *Rich) Markup() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	for _, run := range r.runs {
		if run.Suggestion == nil {
			b.WriteString(escape(run.Text))
			continue
		}
		b.WriteString(`<mark class="`)
		b.WriteString(run.Suggestion.Severity.String())
		b.WriteString(`" title="`)
		b.WriteString(escape(run.Suggestion.Message))
		b.WriteString(`">`)
		b.WriteString(escape(run.Text))
		b.WriteString(`</mark>`)
	}
	return b.String()
}

// escape replaces markup-significant characters in literal text.
func escape(s string) string {
	return markupEscaper.Replace(s)
}

var markupEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// Value returns the current text.
func (r *Rich) Value() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value
}

// SetValue replaces the text without firing callbacks.
func (r *Rich) SetValue(text string) {
	r.mu.Lock()
	r.value = text
	r.mu.Unlock()
}

// Input replaces the text as a user edit and fires the change callback.
func (r *Rich) Input(text string) {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return
	}
	r.value = text
	fn := r.onChange
	r.mu.Unlock()

	if fn != nil {
		fn(text)
	}
}

// OnChange registers the user-edit callback.
func (r *Rich) OnChange(fn func(string)) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

// OnFocus registers the focus callback.
func (r *Rich) OnFocus(fn func()) {
	r.mu.Lock()
	r.onFocus = fn
	r.mu.Unlock()
}

// OnBlur registers the blur callback.
func (r *Rich) OnBlur(fn func()) {
	r.mu.Lock()
	r.onBlur = fn
	r.mu.Unlock()
}

// Focus gives the surface focus.
func (r *Rich) Focus() {
	r.mu.Lock()
	if r.destroyed || r.focused {
		r.mu.Unlock()
		return
	}
	r.focused = true
	fn := r.onFocus
	r.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Blur removes focus.
func (r *Rich) Blur() {
	r.mu.Lock()
	if r.destroyed || !r.focused {
		r.mu.Unlock()
		return
	}
	r.focused = false
	fn := r.onBlur
	r.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Focused reports whether the surface has focus.
func (r *Rich) Focused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.focused
}

// Destroy detaches all callbacks.
func (r *Rich) Destroy() {
	r.mu.Lock()
	r.destroyed = true
	r.onChange = nil
	r.onFocus = nil
	r.onBlur = nil
	r.mu.Unlock()
}
