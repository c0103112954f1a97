package provider

import (
	"github.com/rotisserie/eris"
)

// Registry maps registry tags to providers.
type Registry struct {
	providers map[string]Provider
	order     []string // insertion order for deterministic iteration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider. Registering the same tag twice replaces the
// earlier provider but keeps its position.
func (r *Registry) Register(p Provider) {
	name := p.Name()
	if _, ok := r.providers[name]; !ok {
		r.order = append(r.order, name)
	}
	r.providers[name] = p
}

// Get returns a provider by registry tag.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, eris.Errorf("provider: unknown provider %q", name)
	}
	return p, nil
}

// ByRoute returns the provider whose trigger route matches.
func (r *Registry) ByRoute(route string) (Provider, bool) {
	for _, name := range r.order {
		if p := r.providers[name]; p.Route() == route {
			return p, true
		}
	}
	return nil, false
}

// Lookup resolves a registry tag or a route.
func (r *Registry) Lookup(key string) (Provider, error) {
	if p, ok := r.providers[key]; ok {
		return p, nil
	}
	if p, ok := r.ByRoute(key); ok {
		return p, nil
	}
	return nil, eris.Errorf("provider: unknown provider %q", key)
}

// Select returns the named providers (tags or routes) in the order given,
// or every provider in registration order when names is empty.
func (r *Registry) Select(names []string) ([]Provider, error) {
	if len(names) == 0 {
		return r.All(), nil
	}
	result := make([]Provider, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		p, err := r.Lookup(name)
		if err != nil {
			return nil, err
		}
		if seen[p.Name()] {
			continue
		}
		seen[p.Name()] = true
		result = append(result, p)
	}
	return result, nil
}

// All returns all providers in registration order.
func (r *Registry) All() []Provider {
	result := make([]Provider, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.providers[name])
	}
	return result
}

// AllNames returns all registered tags in registration order.
func (r *Registry) AllNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
