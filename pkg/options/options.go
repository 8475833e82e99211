// Package options defines the provider interface dropdown, autocomplete, set
// and string-list-autocomplete editors resolve their dynamic option lists
// through. The engine does not prescribe a transport; it only requires that
// a provider eventually delivers a list or an error.
package options

import (
	"context"

	"github.com/propsheet/propsheet/pkg/schema"
)

// Request carries everything a provider needs to resolve one option list.
type Request struct {
	// Values is the current full value set of the root surface.
	Values map[string]any `json:"values"`

	// PropertyPath is the fully qualified path of the property requesting
	// options.
	PropertyPath string `json:"propertyPath"`

	// ClassTag identifies the inspector class on whose behalf the request
	// is made, letting one backend serve several schemas.
	ClassTag string `json:"classTag,omitempty"`
}

// Provider resolves dynamic option lists.
type Provider interface {
	RequestOptions(ctx context.Context, req Request) ([]schema.Option, error)
}

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func(ctx context.Context, req Request) ([]schema.Option, error)

func (f ProviderFunc) RequestOptions(ctx context.Context, req Request) ([]schema.Option, error) {
	return f(ctx, req)
}
