package editors

import (
	"context"

	"github.com/propsheet/propsheet/pkg/groups"
	"github.com/propsheet/propsheet/pkg/inspector"
	"github.com/propsheet/propsheet/pkg/schema"
)

// StringListAutocomplete is StringList with per-line suggestions resolved
// through the options provider, refreshed with autocomplete's debounced
// dependency mechanics. As a composite kind it does not support external
// overrides.
type StringListAutocomplete struct {
	StringList

	suggestions []schema.Option
	fetcher     *optionsFetcher
}

func NewStringListAutocomplete(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group) (*StringListAutocomplete, error) {
	list, err := NewStringList(s, def, parent)
	if err != nil {
		return nil, err
	}

	editor := &StringListAutocomplete{StringList: *list}
	editor.fetcher = newOptionsFetcher(s, def, true, editor.Disposed, editor.applySuggestions)

	return editor, nil
}

func (e *StringListAutocomplete) Build(ctx context.Context) error {
	if err := e.Base.Build(ctx); err != nil {
		return err
	}

	if e.Definition().HasStaticItems() {
		e.suggestions = e.Definition().Items

		return nil
	}

	e.fetcher.prime(ctx)

	return nil
}

func (e *StringListAutocomplete) Suggestions() []schema.Option { return e.suggestions }

func (e *StringListAutocomplete) SupportsExternalOverride() bool { return false }

func (e *StringListAutocomplete) PropertyChanged(ctx context.Context, path string, _ any) {
	e.fetcher.propertyChanged(ctx, path)
}

func (e *StringListAutocomplete) Dispose(ctx context.Context) {
	e.fetcher.dispose()
	e.Base.Dispose(ctx)
}

func (e *StringListAutocomplete) applySuggestions(_ context.Context, opts []schema.Option) {
	e.suggestions = opts
}
