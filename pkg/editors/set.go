package editors

import (
	"context"
	"reflect"

	"github.com/propsheet/propsheet/pkg/groups"
	"github.com/propsheet/propsheet/pkg/host"
	"github.com/propsheet/propsheet/pkg/inspector"
	"github.com/propsheet/propsheet/pkg/schema"
)

// Set edits an array-of-enumerated-values property. It owns a group and
// renders one checkbox row per enumerated item, translating each checkbox
// into membership in the array. Membership order follows the item order,
// not the order boxes were ticked in. Items are static or resolved through
// the options provider.
type Set struct {
	inspector.Base

	group   *groups.Group
	items   []*setItem
	fetcher *optionsFetcher
}

type setItem struct {
	option  schema.Option
	row     host.RowHandle
	checked bool
}

func NewSet(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group) (*Set, error) {
	base, err := inspector.NewBase(s, def, parent)
	if err != nil {
		return nil, err
	}

	editor := &Set{
		Base:  base,
		group: s.Groups().CreateGroup(def.Label(), parent),
	}
	editor.fetcher = newOptionsFetcher(s, def, false, editor.Disposed, editor.applyItems)

	return editor, nil
}

func (e *Set) Build(ctx context.Context) error {
	if err := e.Base.Build(ctx); err != nil {
		return err
	}

	e.Surface().MapGroupRow(e.group, e.Row())

	if e.Definition().HasStaticItems() {
		e.installItems(e.Definition().Items)

		return nil
	}

	e.fetcher.prime(ctx)

	return nil
}

func (e *Set) GroupedEditor() bool { return true }

func (e *Set) Group() *groups.Group { return e.group }

func (e *Set) SupportsExternalOverride() bool { return false }

// Items returns the per-option membership rows in item order.
func (e *Set) Items() []schema.Option {
	opts := make([]schema.Option, 0, len(e.items))
	for _, item := range e.items {
		opts = append(opts, item.option)
	}

	return opts
}

func (e *Set) IsMember(value any) bool {
	for _, item := range e.items {
		if reflect.DeepEqual(item.option.Value, value) {
			return item.checked
		}
	}

	return false
}

// SetMember toggles one enumerated value's membership and writes the
// resulting array back to the surface.
func (e *Set) SetMember(ctx context.Context, value any, member bool) {
	for _, item := range e.items {
		if reflect.DeepEqual(item.option.Value, value) {
			item.checked = member
		}
	}

	e.SetValue(ctx, e.membership(), false)
}

// CurrentValue reports membership in item order once items are known, and
// the raw stored value before that (dynamic items may still be in flight).
func (e *Set) CurrentValue() any {
	if len(e.items) == 0 {
		return e.Base.CurrentValue()
	}

	return e.membership()
}

func (e *Set) Validate(_ context.Context, _ bool) error {
	return e.ValidateAgainst(e.CurrentValue())
}

func (e *Set) UndefinedValue() any { return []any{} }

// UpdateDisplayedValue re-derives the checkbox states from an externally
// written value.
func (e *Set) UpdateDisplayedValue(ctx context.Context, value any) {
	e.Base.UpdateDisplayedValue(ctx, value)

	membership := toSlice(value)
	for _, item := range e.items {
		item.checked = containsValue(membership, item.option.Value)
	}
}

func (e *Set) PropertyChanged(ctx context.Context, path string, _ any) {
	e.fetcher.propertyChanged(ctx, path)
}

func (e *Set) Dispose(ctx context.Context) {
	e.fetcher.dispose()
	e.Base.Dispose(ctx)
}

func (e *Set) membership() []any {
	members := make([]any, 0, len(e.items))

	for _, item := range e.items {
		if item.checked {
			members = append(members, item.option.Value)
		}
	}

	return members
}

// installItems builds one grouped checkbox row per item, seeding membership
// from the effective stored value.
func (e *Set) installItems(opts []schema.Option) {
	stored := e.Base.CurrentValue()
	if stored == nil {
		stored = e.Definition().Default
	}

	membership := toSlice(stored)

	s := e.Surface()
	path := s.PropertyPath(e.PropertyName())
	e.items = make([]*setItem, 0, len(opts))

	for _, opt := range opts {
		row := s.Host().BuildRow(path+"."+stringify(opt.Value), e.Definition(), e.group)
		s.TrackRow(row, e.group)

		e.items = append(e.items, &setItem{
			option:  opt,
			row:     row,
			checked: containsValue(membership, opt.Value),
		})
	}
}

// applyItems installs a freshly resolved item list. Membership intersects
// with the new items; values no longer offered are dropped from the array.
func (e *Set) applyItems(ctx context.Context, opts []schema.Option) {
	before := toSlice(e.Base.CurrentValue())

	e.installItems(opts)

	kept := e.membership()
	if before != nil && !reflect.DeepEqual(before, kept) {
		e.SetValue(ctx, kept, false)
	}
}
