package types

import (
	"fmt"
	"sort"
	"sync"
)

// Registry resolves qualified class names to descriptors. It is safe
// for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*ClassType
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*ClassType)}
}

// Register adds a class. Registering a name twice is an error.
func (r *Registry) Register(c *ClassType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := c.Name()
	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("types: class %s already registered", name)
	}
	r.byName[name] = c
	return nil
}

// Lookup resolves a qualified name.
func (r *Registry) Lookup(name string) (*ClassType, bool) {
	r.mu.RLock()
	c, ok := r.byName[name]
	r.mu.RUnlock()
	return c, ok
}

// Names returns the registered qualified names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.byName))
	for n := range r.byName {
		out = append(out, n)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Len returns the number of registered classes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}
