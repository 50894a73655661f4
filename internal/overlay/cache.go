package overlay

import (
	"sync"

	"github.com/versetool/versepane/internal/service"
)

// AnalysisEntry is one cached analysis result together with the exact text
// it was computed against.
type AnalysisEntry struct {
	// Suggestions are the analysis findings, ordered by start offset.
	Suggestions []service.Suggestion

	// Snapshot is the plain value the analysis saw. The entry may only be
	// rendered while the live value still equals it.
	Snapshot string
}

// Cache stores analysis entries per (pane, verse) key.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]AnalysisEntry
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[Key]AnalysisEntry)}
}

// Put stores an entry for key, replacing any prior one.
func (c *Cache) Put(key Key, entry AnalysisEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
}

// Get returns the entry for key.
func (c *Cache) Get(key Key) (AnalysisEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// Valid returns the entry for key only if its snapshot matches liveText.
func (c *Cache) Valid(key Key, liveText string) (AnalysisEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || e.Snapshot != liveText {
		return AnalysisEntry{}, false
	}
	return e, true
}

// Delete removes the entry for key.
func (c *Cache) Delete(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// DeletePane removes every entry keyed to paneID.
func (c *Cache) DeletePane(paneID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.PaneID == paneID {
			delete(c.entries, k)
		}
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
