package surface

import "sync"

// Plain is the authoritative value-holding surface of a verse cell.
//
// Surfaces are read by the renderer and the analysis timers while the event
// loop types into them, so all state lives behind a mutex. Callbacks fire
// outside the lock.
type Plain struct {
	mu        sync.Mutex
	value     string
	focused   bool
	destroyed bool

	onChange func(string)
	onFocus  func()
	onBlur   func()
}

// NewPlain creates a plain surface holding the given text.
func NewPlain(text string) *Plain {
	return &Plain{value: text}
}

// Value returns the current text.
func (p *Plain) Value() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// SetValue replaces the text without firing callbacks.
func (p *Plain) SetValue(text string) {
	p.mu.Lock()
	p.value = text
	p.mu.Unlock()
}

// Input replaces the text as a user edit and fires the change callback.
func (p *Plain) Input(text string) {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	p.value = text
	fn := p.onChange
	p.mu.Unlock()

	if fn != nil {
		fn(text)
	}
}

// OnChange registers the user-edit callback.
func (p *Plain) OnChange(fn func(string)) {
	p.mu.Lock()
	p.onChange = fn
	p.mu.Unlock()
}

// OnFocus registers the focus callback.
func (p *Plain) OnFocus(fn func()) {
	p.mu.Lock()
	p.onFocus = fn
	p.mu.Unlock()
}

// OnBlur registers the blur callback.
func (p *Plain) OnBlur(fn func()) {
	p.mu.Lock()
	p.onBlur = fn
	p.mu.Unlock()
}

// Focus gives the surface focus.
func (p *Plain) Focus() {
	p.mu.Lock()
	if p.destroyed || p.focused {
		p.mu.Unlock()
		return
	}
	p.focused = true
	fn := p.onFocus
	p.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Blur removes focus.
func (p *Plain) Blur() {
	p.mu.Lock()
	if p.destroyed || !p.focused {
		p.mu.Unlock()
		return
	}
	p.focused = false
	fn := p.onBlur
	p.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Focused reports whether the surface has focus.
func (p *Plain) Focused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.focused
}

// Destroy detaches all callbacks.
func (p *Plain) Destroy() {
	p.mu.Lock()
	p.destroyed = true
	p.onChange = nil
	p.onFocus = nil
	p.onBlur = nil
	p.mu.Unlock()
}
