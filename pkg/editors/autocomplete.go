package editors

import (
	"context"
	"strings"

	"github.com/propsheet/propsheet/pkg/groups"
	"github.com/propsheet/propsheet/pkg/inspector"
	"github.com/propsheet/propsheet/pkg/schema"
)

// Autocomplete edits a free-text scalar with a suggestion list. Suggestions
// follow the same dependency mechanics as dropdown but refresh through the
// surface's debounce window to coalesce bursts, and typing is never blocked
// on the suggestion state.
type Autocomplete struct {
	inspector.Base

	suggestions []schema.Option
	fetcher     *optionsFetcher
}

func NewAutocomplete(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group) (*Autocomplete, error) {
	base, err := inspector.NewBase(s, def, parent)
	if err != nil {
		return nil, err
	}

	editor := &Autocomplete{Base: base}
	editor.fetcher = newOptionsFetcher(s, def, true, editor.Disposed, editor.applySuggestions)

	return editor, nil
}

func (e *Autocomplete) Build(ctx context.Context) error {
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

// Suggestions returns the current suggestion list. It is advisory only; the
// committed value is whatever was typed.
func (e *Autocomplete) Suggestions() []schema.Option { return e.suggestions }

func (e *Autocomplete) SetText(ctx context.Context, text string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		e.SetValue(ctx, nil, false)

		return
	}

	e.SetValue(ctx, trimmed, false)
}

func (e *Autocomplete) UndefinedValue() any { return "" }

func (e *Autocomplete) PropertyChanged(ctx context.Context, path string, _ any) {
	e.fetcher.propertyChanged(ctx, path)
}

func (e *Autocomplete) OverrideHidden(ctx context.Context) {
	e.fetcher.refresh(ctx)
}

func (e *Autocomplete) Dispose(ctx context.Context) {
	e.fetcher.dispose()
	e.Base.Dispose(ctx)
}

func (e *Autocomplete) applySuggestions(_ context.Context, opts []schema.Option) {
	e.suggestions = opts
}
