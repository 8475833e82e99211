package inspector

import (
	"context"

	"github.com/propsheet/propsheet/pkg/groups"
	"github.com/propsheet/propsheet/pkg/host"
	"github.com/propsheet/propsheet/pkg/schema"
	"github.com/propsheet/propsheet/pkg/validation"
)

// Editor is the unit of editing for one property. Concrete kinds live in the
// editors package; they embed Base and override the methods whose defaults
// do not fit.
//
// An editor never outlives its owning surface: disposing a surface disposes
// every editor and every child surface transitively.
type Editor interface {
	// Build instantiates the editor's visual state from its definition and
	// the current value, creating its row(s) through the surface's host.
	Build(ctx context.Context) error

	// PropertyName returns the name of the property this editor edits.
	PropertyName() string

	// Definition returns the schema node this editor was built from.
	Definition() *schema.PropertyDefinition

	// CurrentValue reports the editor's live value, nil when it has none.
	// Extraction falls back to the schema default and then to
	// UndefinedValue.
	CurrentValue() any

	// UndefinedValue is what the editor reports when it has no value and
	// the schema declares no default. It varies per kind: empty string for
	// string editors, first enumerated option for dropdowns without a
	// placeholder, empty collection for list and map kinds.
	UndefinedValue() any

	// UpdateDisplayedValue re-syncs the editor's visual state after an
	// external SetPropertyValue with forceEditorUpdate.
	UpdateDisplayedValue(ctx context.Context, value any)

	// Validate runs the editor's rule chain against its current value and
	// returns the first failure. Silent mode must have no side effects.
	Validate(ctx context.Context, silent bool) error

	// PropertyChanged is invoked for every property change anywhere in the
	// root surface's tree. Editors with dynamic options compare the path
	// against their dependency list and refresh when the composite
	// dependency value actually changed.
	PropertyChanged(ctx context.Context, path string, value any)

	// GroupedEditor reports whether the editor owns a Group (set, object),
	// so the host renders a group-expand affordance instead of a plain
	// value cell.
	GroupedEditor() bool

	// Group returns the group this editor created, nil for non-grouping
	// kinds.
	Group() *groups.Group

	// ParentGroup returns the group the editor's row is filed under.
	ParentGroup() *groups.Group

	// ChildSurface returns the nested surface the editor owns, nil for
	// scalar kinds. Object editors own one for their whole lifetime;
	// object-list editors own a transient one per selected row.
	ChildSurface() *Surface

	// SupportsExternalOverride reports whether the property can be bound to
	// an external parameter reference. Composite kinds without a single
	// scalar value report false.
	SupportsExternalOverride() bool

	// OverrideHidden is invoked when an active override is toggled off and
	// control returns to the editor. Dropdown and autocomplete editors
	// refresh their option list here, since the override may have been
	// masking a stale dependency state.
	OverrideHidden(ctx context.Context)

	// Row returns the editor's primary row handle.
	Row() host.RowHandle

	// Dispose releases the editor: child surfaces, timers and pending
	// async completions. Completions landing after Dispose are no-ops.
	Dispose(ctx context.Context)

	// Disposed reports whether Dispose ran.
	Disposed() bool
}

// Base carries the state and default behavior every editor kind shares.
// Concrete kinds embed it by value and override selectively. The embedded
// methods are not virtual: a kind overriding CurrentValue must also override
// Validate if the rule chain should see the overridden value.
type Base struct {
	surface     *Surface
	def         *schema.PropertyDefinition
	parentGroup *groups.Group
	rules       *validation.Set

	row       host.RowHandle
	displayed any
	disposed  bool
}

// NewBase prepares the shared editor state, building the validation set the
// property configures. Malformed validation configuration fails here, which
// aborts surface construction.
func NewBase(s *Surface, def *schema.PropertyDefinition, parent *groups.Group) (Base, error) {
	rules, err := validation.FromProperty(def)
	if err != nil {
		return Base{}, err
	}

	return Base{surface: s, def: def, parentGroup: parent, rules: rules, displayed: s.PropertyValue(def.Property)}, nil
}

// Build creates and tracks the editor's row. Kinds with extra rows call this
// first and add their own.
func (b *Base) Build(_ context.Context) error {
	b.row = b.surface.Host().BuildRow(b.surface.PropertyPath(b.def.Property), b.def, b.parentGroup)
	b.surface.TrackRow(b.row, b.parentGroup)

	return nil
}

func (b *Base) PropertyName() string { return b.def.Property }

func (b *Base) Definition() *schema.PropertyDefinition { return b.def }

// Surface returns the owning surface.
func (b *Base) Surface() *Surface { return b.surface }

// Rules returns the editor's validation chain.
func (b *Base) Rules() *validation.Set { return b.rules }

// CurrentValue reads the property's value from the owning surface.
func (b *Base) CurrentValue() any {
	return b.surface.PropertyValue(b.def.Property)
}

// UndefinedValue defaults to nil, meaning the property is simply absent from
// extraction when it has no value and no default.
func (b *Base) UndefinedValue() any { return nil }

// UpdateDisplayedValue records the externally forced value. Kinds with
// richer visual state override this.
func (b *Base) UpdateDisplayedValue(_ context.Context, value any) {
	b.displayed = value
}

// Displayed reports the last value shown to the user.
func (b *Base) Displayed() any { return b.displayed }

// SetDisplayed updates the displayed value without surface interaction.
func (b *Base) SetDisplayed(value any) { b.displayed = value }

// Validate runs the rule chain against the surface value.
func (b *Base) Validate(_ context.Context, _ bool) error {
	return b.rules.Validate(b.CurrentValue())
}

// ValidateAgainst runs the rule chain against an explicit value, for kinds
// whose current value is not the raw surface value.
func (b *Base) ValidateAgainst(value any) error {
	return b.rules.Validate(value)
}

// PropertyChanged is a no-op by default.
func (b *Base) PropertyChanged(context.Context, string, any) {}

func (b *Base) GroupedEditor() bool        { return false }
func (b *Base) Group() *groups.Group       { return nil }
func (b *Base) ParentGroup() *groups.Group { return b.parentGroup }
func (b *Base) ChildSurface() *Surface     { return nil }

// SupportsExternalOverride defaults to true; composite kinds override.
func (b *Base) SupportsExternalOverride() bool { return true }

// OverrideHidden is a no-op by default.
func (b *Base) OverrideHidden(context.Context) {}

func (b *Base) Row() host.RowHandle { return b.row }

// SetRow replaces the primary row handle.
func (b *Base) SetRow(row host.RowHandle) { b.row = row }

// Dispose marks the editor disposed. Kinds owning child surfaces or timers
// override and call through.
func (b *Base) Dispose(_ context.Context) { b.disposed = true }

func (b *Base) Disposed() bool { return b.disposed }

// SetValue writes the property's value through the owning surface, firing
// change notification unless suppressed.
func (b *Base) SetValue(ctx context.Context, value any, suppressNotify bool) {
	b.displayed = value
	b.surface.SetPropertyValue(ctx, b.def.Property, value, suppressNotify, false)
}
