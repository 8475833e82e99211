package testutil

import (
	"context"
	"sync"

	"github.com/propsheet/propsheet/pkg/options"
	"github.com/propsheet/propsheet/pkg/schema"
)

// CountingProvider is an options.Provider that serves canned option lists
// and records every request, so tests can assert on fetch counts and
// request payloads.
type CountingProvider struct {
	mu        sync.Mutex
	responses map[string][]schema.Option
	requests  []options.Request

	// Err, when set, fails every request.
	Err error
}

var _ options.Provider = (*CountingProvider)(nil)

func NewCountingProvider() *CountingProvider {
	return &CountingProvider{responses: make(map[string][]schema.Option)}
}

// SetOptions installs the canned response for a property path. Bare values
// become value-only options.
func (p *CountingProvider) SetOptions(propertyPath string, values ...any) {
	opts := make([]schema.Option, 0, len(values))
	for _, v := range values {
		opts = append(opts, schema.Option{Value: v})
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.responses[propertyPath] = opts
}

func (p *CountingProvider) RequestOptions(_ context.Context, req options.Request) ([]schema.Option, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests = append(p.requests, req)

	if p.Err != nil {
		return nil, p.Err
	}

	opts := p.responses[req.PropertyPath]
	out := make([]schema.Option, len(opts))
	copy(out, opts)

	return out, nil
}

// CallCount returns how many requests were issued for a property path.
func (p *CountingProvider) CallCount(propertyPath string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	count := 0

	for _, req := range p.requests {
		if req.PropertyPath == propertyPath {
			count++
		}
	}

	return count
}

// Requests returns a copy of every request received so far.
func (p *CountingProvider) Requests() []options.Request {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]options.Request, len(p.requests))
	copy(out, p.requests)

	return out
}

// LastRequest returns the most recent request, zero when none was made.
func (p *CountingProvider) LastRequest() options.Request {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.requests) == 0 {
		return options.Request{}
	}

	return p.requests[len(p.requests)-1]
}
