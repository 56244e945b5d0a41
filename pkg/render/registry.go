package render

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownRenderer is returned by Registry.Get for unregistered names.
var ErrUnknownRenderer = errors.New("render: unknown renderer")

// Registry holds renderers by Name.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
}

func NewRegistry() *Registry {
	return &Registry{renderers: map[string]Renderer{}}
}

// Register adds renderer under its Name. Names must be unique.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return errors.New("render: renderer is required")
	}
	name := renderer.Name()
	if name == "" {
		return errors.New("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.renderers[name]; taken {
		return fmt.Errorf("render: renderer %q already registered", name)
	}
	r.renderers[name] = renderer
	return nil
}

// MustRegister is Register for init-time wiring; it panics on error.
func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	renderer, ok := r.renderers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownRenderer, name)
	}
	return renderer, nil
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}
