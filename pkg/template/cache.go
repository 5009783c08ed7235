package template

import "sync"

// Cache memoizes parsed templates keyed by template ID. Template bodies are
// immutable once created, so an entry never goes stale; deleting or replacing
// a template must call Invalidate.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Template
}

// NewCache returns an empty parse cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Template)}
}

// Get returns the parsed form of body, parsing and storing it on first use.
func (c *Cache) Get(id, body string) (*Template, error) {
	c.mu.RLock()
	t, ok := c.entries[id]
	c.mu.RUnlock()
	if ok {
		return t, nil
	}

	t, err := Parse(body)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[id] = t
	c.mu.Unlock()
	return t, nil
}

// Invalidate drops the entry for id, if present.
func (c *Cache) Invalidate(id string) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}
