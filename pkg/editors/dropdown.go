package editors

import (
	"context"
	"reflect"

	"github.com/propsheet/propsheet/pkg/groups"
	"github.com/propsheet/propsheet/pkg/inspector"
	"github.com/propsheet/propsheet/pkg/schema"
)

// Dropdown edits a scalar property with an enumerated choice. Options come
// from the schema's static items or from the options provider, and refresh
// whenever one of the declared dependencies changes value.
type Dropdown struct {
	inspector.Base

	opts    []schema.Option
	fetcher *optionsFetcher
}

func NewDropdown(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group) (*Dropdown, error) {
	base, err := inspector.NewBase(s, def, parent)
	if err != nil {
		return nil, err
	}

	editor := &Dropdown{Base: base}
	editor.fetcher = newOptionsFetcher(s, def, false, editor.Disposed, editor.applyOptions)

	return editor, nil
}

func (e *Dropdown) Build(ctx context.Context) error {
	if err := e.Base.Build(ctx); err != nil {
		return err
	}

	if e.Definition().HasStaticItems() {
		e.opts = e.Definition().Items

		return nil
	}

	e.fetcher.prime(ctx)

	return nil
}

// Options returns the currently offered choices.
func (e *Dropdown) Options() []schema.Option { return e.opts }

// Select writes the chosen option value.
func (e *Dropdown) Select(ctx context.Context, value any) {
	e.SetValue(ctx, value, false)
}

// UndefinedValue is the first offered option. A placeholder makes "nothing
// selected" representable, so with one configured the editor reports no
// value instead.
func (e *Dropdown) UndefinedValue() any {
	if e.Definition().Placeholder != "" {
		return nil
	}

	if len(e.opts) > 0 {
		return e.opts[0].Value
	}

	return nil
}

func (e *Dropdown) PropertyChanged(ctx context.Context, path string, _ any) {
	e.fetcher.propertyChanged(ctx, path)
}

func (e *Dropdown) OverrideHidden(ctx context.Context) {
	e.fetcher.refresh(ctx)
}

func (e *Dropdown) Dispose(ctx context.Context) {
	e.fetcher.dispose()
	e.Base.Dispose(ctx)
}

// applyOptions installs a freshly resolved option list. The previous
// selection is kept when still offered; otherwise the value falls back to
// the placeholder state, or to the first option when there is none.
func (e *Dropdown) applyOptions(ctx context.Context, opts []schema.Option) {
	e.opts = opts

	current := e.CurrentValue()
	if current != nil && hasOptionValue(opts, current) {
		e.UpdateDisplayedValue(ctx, current)

		return
	}

	var fallback any

	if e.Definition().Placeholder == "" && len(opts) > 0 {
		fallback = opts[0].Value
	}

	if reflect.DeepEqual(current, fallback) {
		e.UpdateDisplayedValue(ctx, fallback)

		return
	}

	e.SetValue(ctx, fallback, false)
}
