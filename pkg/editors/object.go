package editors

import (
	"context"

	"github.com/propsheet/propsheet/pkg/groups"
	"github.com/propsheet/propsheet/pkg/inspector"
	"github.com/propsheet/propsheet/pkg/schema"
)

// Object embeds a nested schema as a child surface whose rows merge inline
// into the parent's tree under the editor's own group. The value is the
// child surface's extraction. With ignoreIfPropertyEmpty configured, an
// empty designated child property removes the whole object from extraction
// and skips its validation: removal wins over a failing nested rule.
type Object struct {
	inspector.Base

	group *groups.Group
	child *inspector.Surface
}

func NewObject(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group) (*Object, error) {
	base, err := inspector.NewBase(s, def, parent)
	if err != nil {
		return nil, err
	}

	return &Object{
		Base:  base,
		group: s.Groups().CreateGroup(def.Label(), parent),
	}, nil
}

func (e *Object) Build(ctx context.Context) error {
	if err := e.Base.Build(ctx); err != nil {
		return err
	}

	s := e.Surface()
	s.MapGroupRow(e.group, e.Row())

	doc, err := schema.FromProperties(e.Definition().Properties)
	if err != nil {
		return err
	}

	child, err := inspector.NewChild(ctx, s, e.PropertyName(), doc, e.initialValues(), e.group)
	if err != nil {
		return err
	}

	e.child = child
	s.MergeChildSurface(child, e.Row())

	return nil
}

func (e *Object) GroupedEditor() bool { return true }

func (e *Object) Group() *groups.Group { return e.group }

func (e *Object) ChildSurface() *inspector.Surface { return e.child }

func (e *Object) SupportsExternalOverride() bool { return false }

// CurrentValue is the child surface's extraction, collapsed to the Removed
// sentinel when the ignore-if-property-empty policy applies.
func (e *Object) CurrentValue() any {
	if e.child == nil {
		return e.Base.CurrentValue()
	}

	values := e.child.Values()

	if prop := e.Definition().IgnoreIfPropertyEmpty; prop != "" {
		if inspector.IsEmptyValue(values[prop]) {
			return inspector.Removed
		}
	}

	return values
}

func (e *Object) UndefinedValue() any { return map[string]any{} }

func (e *Object) Validate(ctx context.Context, silent bool) error {
	if e.child == nil {
		return e.ValidateAgainst(e.Base.CurrentValue())
	}

	if prop := e.Definition().IgnoreIfPropertyEmpty; prop != "" {
		if inspector.IsEmptyValue(e.child.Values()[prop]) {
			return nil
		}
	}

	if err := e.child.Validate(ctx, silent); err != nil {
		return err
	}

	return e.ValidateAgainst(e.child.Values())
}

// UpdateDisplayedValue pushes an externally written object into the child
// surface property by property. Properties absent from the new value clear.
func (e *Object) UpdateDisplayedValue(ctx context.Context, value any) {
	e.Base.UpdateDisplayedValue(ctx, value)

	if e.child == nil {
		return
	}

	m, _ := value.(map[string]any)

	for _, def := range e.child.Document().Properties() {
		e.child.SetPropertyValue(ctx, def.Property, m[def.Property], true, true)
	}
}

func (e *Object) Dispose(ctx context.Context) {
	if e.child != nil {
		e.child.Dispose(ctx)
		e.child = nil
	}

	e.Base.Dispose(ctx)
}

// initialValues seeds the child surface from the stored object, falling
// back to the schema default.
func (e *Object) initialValues() map[string]any {
	if m, ok := e.Base.CurrentValue().(map[string]any); ok {
		return inspector.CloneValues(m)
	}

	if m, ok := e.Definition().Default.(map[string]any); ok {
		return inspector.CloneValues(m)
	}

	return map[string]any{}
}
