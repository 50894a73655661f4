package pane

import (
	"sync"

	"github.com/versetool/versepane/internal/event"
)

// Registry is the live set of open panes, keyed by pane id. It is the join
// point for all cross-pane operations.
type Registry struct {
	mu    sync.RWMutex
	panes map[string]*Pane
	order []string

	bus *event.Bus

	// dragWired replaces the page-wide "is drag-drop already wired up"
	// flag: one-time setup is owned here, not by ambient global state.
	dragWired sync.Once
}

// NewRegistry creates an empty registry. bus may be nil.
func NewRegistry(bus *event.Bus) *Registry {
	return &Registry{
		panes: make(map[string]*Pane),
		bus:   bus,
	}
}

// Add registers an open pane. At most one pane may hold the primary role.
func (r *Registry) Add(p *Pane) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.panes[p.ID]; ok {
		return ErrPaneExists
	}
	if p.Role == RolePrimary {
		for _, existing := range r.panes {
			if existing.Role == RolePrimary {
				return ErrPrimaryExists
			}
		}
	}

	r.panes[p.ID] = p
	r.order = append(r.order, p.ID)

	if r.bus != nil {
		r.bus.Publish(event.New(event.TopicPaneOpened, event.PaneOpened{
			PaneID: p.ID,
			Role:   p.Role.String(),
		}, "pane"))
	}
	return nil
}

// Remove closes a pane. Listeners on pane.closed are responsible for
// discarding state keyed to the pane (overlay bindings, pending timers).
func (r *Registry) Remove(paneID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.panes[paneID]; !ok {
		return ErrPaneNotFound
	}
	delete(r.panes, paneID)
	for i, id := range r.order {
		if id == paneID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if r.bus != nil {
		r.bus.Publish(event.New(event.TopicPaneClosed, event.PaneClosed{PaneID: paneID}, "pane"))
	}
	return nil
}

// Get returns the pane registered under paneID.
func (r *Registry) Get(paneID string) (*Pane, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.panes[paneID]
	return p, ok
}

// List returns the open panes in registration order.
func (r *Registry) List() []*Pane {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Pane, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.panes[id])
	}
	return out
}

// Primary returns the primary pane, if one is open.
func (r *Registry) Primary() (*Pane, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if p := r.panes[id]; p.Role == RolePrimary {
			return p, true
		}
	}
	return nil, false
}

// Count returns the number of open panes.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.panes)
}

// SetupDragOnce runs fn exactly once across the registry's lifetime, no
// matter how many panes are opened or re-rendered. Drag-and-drop wiring
// goes through here.
func (r *Registry) SetupDragOnce(fn func()) {
	r.dragWired.Do(fn)
}
