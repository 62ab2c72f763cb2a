package filter

import (
	"fmt"
	"sync"
)

// Constructor creates a fresh filter of one kind.
type Constructor func() Filter

// Registry maps filter identifiers to constructors. The identifier is the
// binding key used by persisted configuration sets, so registered IDs must
// stay stable across releases.
type Registry struct {
	mu    sync.RWMutex
	order []string
	ctors map[string]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// Register adds a filter constructor. The identifier is taken from the
// constructed filter's descriptor. Duplicate registrations are rejected.
func (r *Registry) Register(ctor Constructor) error {
	id := ctor().Descriptor().ID
	if id == "" {
		return fmt.Errorf("filter constructor produced an empty identifier")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ctors[id]; exists {
		return fmt.Errorf("filter %q already registered", id)
	}

	r.ctors[id] = ctor
	r.order = append(r.order, id)

	return nil
}

// New creates a fresh instance of the identified filter, with option
// defaults bound.
func (r *Registry) New(id string) (*Instance, error) {
	r.mu.RLock()
	ctor, ok := r.ctors[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown filter %q", id)
	}

	return NewInstance(ctor()), nil
}

// IDs returns the registered identifiers in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// Descriptors returns the descriptors of all registered filters in
// registration order.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.ctors[id]().Descriptor())
	}

	return out
}

// Default returns a registry pre-populated with the built-in filters.
func Default() *Registry {
	r := NewRegistry()

	for _, ctor := range []Constructor{
		func() Filter { return &NormalizeNames{} },
		func() Filter { return &RemoveKind{} },
		func() Filter { return &CreateRigidBodies{} },
		func() Filter { return &CreateRagdoll{} },
		func() Filter { return &ResampleMotions{} },
		func() Filter { return &StripMaterialDetail{} },
		func() Filter { return &PreviewScene{} },
		func() Filter { return &WriteAsset{} },
	} {
		// Built-in IDs are unique by construction.
		_ = r.Register(ctor)
	}

	return r
}
