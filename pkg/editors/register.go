// Package editors implements the built-in editor kinds. Each kind edits one
// property shape; they share the Base plumbing from the inspector package,
// the dependency-aware options fetcher and the scratch dialog state machine.
package editors

import (
	"github.com/propsheet/propsheet/pkg/groups"
	"github.com/propsheet/propsheet/pkg/inspector"
	"github.com/propsheet/propsheet/pkg/schema"
)

// Register installs every built-in editor kind into a registry.
func Register(r *inspector.Registry) {
	r.Register(schema.TypeString, func(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group) (inspector.Editor, error) {
		return NewString(s, def, parent)
	})
	r.Register(schema.TypeInteger, func(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group) (inspector.Editor, error) {
		return NewInteger(s, def, parent)
	})
	r.Register(schema.TypeFloat, func(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group) (inspector.Editor, error) {
		return NewFloat(s, def, parent)
	})
	r.Register(schema.TypeCheckbox, func(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group) (inspector.Editor, error) {
		return NewCheckbox(s, def, parent)
	})
	r.Register(schema.TypeDropdown, func(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group) (inspector.Editor, error) {
		return NewDropdown(s, def, parent)
	})
	r.Register(schema.TypeAutocomplete, func(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group) (inspector.Editor, error) {
		return NewAutocomplete(s, def, parent)
	})
	r.Register(schema.TypeText, func(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group) (inspector.Editor, error) {
		return NewText(s, def, parent)
	})
	r.Register(schema.TypeSet, func(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group) (inspector.Editor, error) {
		return NewSet(s, def, parent)
	})
	r.Register(schema.TypeObject, func(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group) (inspector.Editor, error) {
		return NewObject(s, def, parent)
	})
	r.Register(schema.TypeObjectList, func(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group) (inspector.Editor, error) {
		return NewObjectList(s, def, parent)
	})
	r.Register(schema.TypeStringList, func(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group) (inspector.Editor, error) {
		return NewStringList(s, def, parent)
	})
	r.Register(schema.TypeStringListAutocomplete, func(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group) (inspector.Editor, error) {
		return NewStringListAutocomplete(s, def, parent)
	})
	r.Register(schema.TypeDictionary, func(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group) (inspector.Editor, error) {
		return NewDictionary(s, def, parent)
	})
}
