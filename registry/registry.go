package registry

import (
	"fmt"
	"sync"
)

// Registry maps logical model names (for example "default" or
// "fast") to the model identifiers sent to the service. It lets
// configuration and command-line users pick a model without
// hard-coding provider model ids.
type Registry interface {
	// Resolve returns the model id registered under name.
	// If no such alias exists, a *NoSuchModelError is returned.
	Resolve(name string) (string, error)

	// Register registers or replaces the alias name. Passing an empty
	// model id removes any existing registration for that name.
	Register(name, modelID string)

	// Names returns the registered aliases in no particular order.
	Names() []string
}

// NoSuchModelError indicates that a requested alias was not found in
// the registry.
type NoSuchModelError struct {
	// Name is the alias that was requested.
	Name string
}

func (e *NoSuchModelError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("registry: no such model %q", e.Name)
}

// InMemoryRegistry is a concurrency-safe in-memory implementation of
// Registry. It suits startup wiring where aliases are registered once
// and then read throughout the lifetime of the process.
type InMemoryRegistry struct {
	mu     sync.RWMutex
	models map[string]string
}

// Ensure InMemoryRegistry implements Registry.
var _ Registry = (*InMemoryRegistry)(nil)

// NewInMemoryRegistry creates a registry holding the given aliases.
func NewInMemoryRegistry(aliases map[string]string) *InMemoryRegistry {
	r := &InMemoryRegistry{models: make(map[string]string, len(aliases))}
	for name, id := range aliases {
		r.Register(name, id)
	}
	return r
}

// Resolve implements Registry.Resolve.
func (r *InMemoryRegistry) Resolve(name string) (string, error) {
	r.mu.RLock()
	id, ok := r.models[name]
	r.mu.RUnlock()
	if !ok {
		return "", &NoSuchModelError{Name: name}
	}
	return id, nil
}

// Register implements Registry.Register.
func (r *InMemoryRegistry) Register(name, modelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if modelID == "" {
		delete(r.models, name)
		return
	}
	r.models[name] = modelID
}

// Names implements Registry.Names.
func (r *InMemoryRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	return names
}

// ResolveOrSelf returns the model id registered under name, or name
// itself when it is not an alias. A nil registry resolves nothing.
func ResolveOrSelf(r Registry, name string) string {
	if r == nil {
		return name
	}
	if id, err := r.Resolve(name); err == nil {
		return id
	}
	return name
}
