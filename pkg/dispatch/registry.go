package dispatch

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Handler is a named, no-argument, fallible operation. Everything the
// engine knows about a handler is that it can be looked up by name and
// invoked; what it does (package managers, config files, service
// control) is its own business.
type Handler func(ctx context.Context) error

// Registry is the explicit static mapping from handler names to
// handler implementations. Handlers are registered once while the
// catalog is built and only read afterwards.
type Registry struct {
	// mu protects the handler map.
	mu sync.RWMutex

	// handlers maps handler name to implementation.
	handlers map[string]Handler
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register binds a handler to a name. Registering the same name twice
// is an error: two recipes claiming one name means the catalog is
// wrong, not that one should win.
func (r *Registry) Register(name string, h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h == nil {
		return fmt.Errorf("handler %s is nil", name)
	}
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("handler %s already registered", name)
	}
	r.handlers[name] = h
	return nil
}

// MustRegister is Register for static catalog construction, where a
// duplicate name is a programming error.
func (r *Registry) MustRegister(name string, h Handler) {
	if err := r.Register(name, h); err != nil {
		panic(err)
	}
}

// Lookup returns the handler bound to name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[name]
	return h, ok
}

// Names lists every registered handler name in sorted order, for
// diagnostics.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.handlers)
}
