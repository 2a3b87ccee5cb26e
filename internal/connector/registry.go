package connector

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotRegistered is returned by Get for an unknown connector id.
var ErrNotRegistered = errors.New("connector not registered")

// Factory creates a connector bound to the host's config loader.
type Factory func(load ConfigLoader) (Social, error)

// Registry manages connector factories and the instances built from them.
type Registry struct {
	mu        sync.RWMutex
	load      ConfigLoader
	factories map[string]Factory
	cache     map[string]Social
}

// NewRegistry creates a registry whose connectors read config through load.
func NewRegistry(load ConfigLoader) *Registry {
	return &Registry{
		load:      load,
		factories: make(map[string]Factory),
		cache:     make(map[string]Social),
	}
}

// Register adds a factory for a connector id. Registering an id again
// replaces the factory and drops any cached instance.
func (r *Registry) Register(id string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[id] = factory
	delete(r.cache, id)
}

// Get returns the connector for id, building it on first use.
func (r *Registry) Get(id string) (Social, error) {
	r.mu.RLock()
	if c, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return c, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring the write lock
	if c, ok := r.cache[id]; ok {
		return c, nil
	}

	factory, ok := r.factories[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, id)
	}
	c, err := factory(r.load)
	if err != nil {
		return nil, fmt.Errorf("failed to create connector %s: %w", id, err)
	}
	r.cache[id] = c
	return c, nil
}

// Available returns the registered ids, sorted.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
