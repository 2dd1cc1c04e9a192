package schema

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formsubmit/pkg/model"
)

// Registry stores form definitions by id.
type Registry struct {
	mu    sync.RWMutex
	forms map[string]model.Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{forms: make(map[string]model.Definition)}
}

// Register adds a definition. Duplicate ids return an error.
func (r *Registry) Register(def model.Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	id := normalizeID(def.ID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.forms[id]; exists {
		return fmt.Errorf("schema: form %q already registered", id)
	}
	r.forms[id] = def
	return nil
}

// RegisterAll registers every definition, stopping at the first error.
func (r *Registry) RegisterAll(defs []model.Definition) error {
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a definition by id.
func (r *Registry) Get(id string) (model.Definition, error) {
	key := normalizeID(id)
	if key == "" {
		return model.Definition{}, fmt.Errorf("schema: form id is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.forms[key]
	if !ok {
		return model.Definition{}, fmt.Errorf("schema: form %q not found", key)
	}
	return def, nil
}

// Has reports whether a form is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.forms[normalizeID(id)]
	return ok
}

// List returns the sorted form ids.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.forms))
	for id := range r.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func normalizeID(id string) string {
	return strings.TrimSpace(id)
}
