package billing

import (
	"fmt"
	"strings"
)

// Registry resolves providers by name. The first registered provider is the
// default for routes that do not name one.
type Registry struct {
	providers map[string]Provider
	order     []string
}

// NewRegistry builds a registry. Nil providers are skipped; a later provider
// with the same name replaces an earlier one.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		if p == nil {
			continue
		}
		name := strings.ToLower(p.Name())
		if _, exists := r.providers[name]; !exists {
			r.order = append(r.order, name)
		}
		r.providers[name] = p
	}
	return r
}

// Get returns the provider registered under name (case-insensitive).
// An empty name selects the default provider.
func (r *Registry) Get(name string) (Provider, error) {
	if name == "" {
		return r.Default()
	}
	p, ok := r.providers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return p, nil
}

// Default returns the first registered provider.
func (r *Registry) Default() (Provider, error) {
	if len(r.order) == 0 {
		return nil, ErrProviderNotConfigured
	}
	return r.providers[r.order[0]], nil
}

// Names lists registered provider names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}
