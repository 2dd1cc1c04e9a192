package render

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownRenderer is returned when no renderer carries the requested name.
var ErrUnknownRenderer = errors.New("render: unknown renderer")

// Registry maps output format names ("html", "json") to renderers. Names are
// case-insensitive.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Renderer
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Renderer)}
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds renderer under its Name. A name can be registered once.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return errors.New("render: nil renderer")
	}
	name := key(renderer.Name())
	if name == "" {
		return errors.New("render: renderer has no name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[name]; taken {
		return fmt.Errorf("render: %q registered twice", name)
	}
	r.byName[name] = renderer
	return nil
}

// Get looks a renderer up by name. The error lists the known formats.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if renderer, ok := r.byName[key(name)]; ok {
		return renderer, nil
	}
	return nil, fmt.Errorf("%w %q (have %s)", ErrUnknownRenderer, key(name), strings.Join(r.sortedLocked(), ", "))
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byName[key(name)]
	return ok
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedLocked()
}

// Render runs the named renderer and reports its content type alongside the
// body.
func (r *Registry) Render(ctx context.Context, name string, state State, options Options) ([]byte, string, error) {
	renderer, err := r.Get(name)
	if err != nil {
		return nil, "", err
	}
	body, err := renderer.Render(ctx, state, options)
	if err != nil {
		return nil, "", err
	}
	return body, renderer.ContentType(), nil
}

func (r *Registry) sortedLocked() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
