// Package usecase exposes supplier operations to the rest of the engine: a static
// registry of clients and the quote, book and cancel flows that validate input,
// trace every call and record failures.
package usecase

import (
	"sort"

	supplierDomain "github.com/allisson/concierge/internal/supplier/domain"
)

// Registry is the static table of supplier clients keyed by supplier name.
type Registry struct {
	clients map[string]supplierDomain.Client
}

// NewRegistry builds a registry from clients. A later client with the same name
// replaces an earlier one.
func NewRegistry(clients ...supplierDomain.Client) *Registry {
	r := &Registry{clients: make(map[string]supplierDomain.Client, len(clients))}
	for _, c := range clients {
		r.clients[c.Name()] = c
	}
	return r
}

// Get returns the client registered for name.
func (r *Registry) Get(name string) (supplierDomain.Client, bool) {
	c, ok := r.clients[name]
	return c, ok
}

// Names returns the registered supplier names in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
