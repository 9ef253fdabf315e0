package widget

import "sync"

// Registry maps widget type identifiers to descriptors.
//
// Register is last-write-wins: registering a type twice replaces the earlier
// descriptor and keeps its listing position. A Registry is safe for
// concurrent use, so a single instance can back both the configurator and
// the HTTP display surface.
type Registry struct {
	mu    sync.RWMutex
	byKey map[string]Descriptor
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]Descriptor)}
}

// Register stores d under d.Type, replacing any previous descriptor.
func (r *Registry) Register(d Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byKey[d.Type]; !exists {
		r.order = append(r.order, d.Type)
	}
	d.DefaultProps = d.DefaultProps.Clone()
	r.byKey[d.Type] = d
	return nil
}

// MustRegister is like Register but panics on an invalid descriptor.
// Intended for built-in widgets whose descriptors are compile-time constants.
func (r *Registry) MustRegister(d Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Get returns the descriptor for typ. A miss is a normal outcome: callers
// fall back to a placeholder.
func (r *Registry) Get(typ string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byKey[typ]
	return d, ok
}

// Has reports whether typ is registered.
func (r *Registry) Has(typ string) bool {
	_, ok := r.Get(typ)
	return ok
}

// Types returns registered types in first-registration order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Descriptors returns all descriptors in first-registration order.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.order))
	for _, typ := range r.order {
		out = append(out, r.byKey[typ])
	}
	return out
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
