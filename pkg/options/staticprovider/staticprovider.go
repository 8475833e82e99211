// Package staticprovider serves canned option lists keyed by property path.
// It backs offline hosts and tests that need dependency-driven editors
// without a live backend.
package staticprovider

import (
	"context"
	"sync"

	"github.com/propsheet/propsheet/pkg/options"
	"github.com/propsheet/propsheet/pkg/schema"
)

// Provider implements options.Provider from an in-memory table.
type Provider struct {
	mu    sync.RWMutex
	lists map[string][]schema.Option
}

// NewProvider creates a provider serving the given lists, keyed by fully
// qualified property path. A nil map is treated as empty.
func NewProvider(lists map[string][]schema.Option) *Provider {
	if lists == nil {
		lists = make(map[string][]schema.Option)
	}

	return &Provider{lists: lists}
}

// Set replaces the list served for a property path.
func (p *Provider) Set(propertyPath string, opts []schema.Option) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lists[propertyPath] = opts
}

// RequestOptions returns the canned list for the request's property path.
// Unknown paths resolve to an empty list, not an error.
func (p *Provider) RequestOptions(_ context.Context, req options.Request) ([]schema.Option, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	list := p.lists[req.PropertyPath]

	out := make([]schema.Option, len(list))
	copy(out, list)

	return out, nil
}
