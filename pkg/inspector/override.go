package inspector

import (
	"context"
	"errors"

	"github.com/propsheet/propsheet/pkg/reference"
)

// ErrOverrideTokenRequired is the validation failure of an active override
// whose reference token is blank.
var ErrOverrideTokenRequired = errors.New("An external parameter reference is required")

// Override is the optional secondary input that binds a property to an
// external parameter reference instead of a literal value. While active it
// supersedes the editor's own value during extraction and validation.
type Override struct {
	surface *Surface
	editor  Editor

	active   bool
	token    string
	disposed bool
}

// newOverride creates the override for one eligible property and detects an
// initial reference value. Detection activates the override, pre-fills the
// token and clears the editor's literal value; the editor's value is nulled,
// not merely hidden.
func newOverride(ctx context.Context, s *Surface, editor Editor) *Override {
	o := &Override{surface: s, editor: editor}

	name := editor.PropertyName()
	if token, ok := reference.Token(s.PropertyValue(name)); ok {
		o.active = true
		o.token = token

		s.SetPropertyValue(ctx, name, nil, true, false)
		editor.UpdateDisplayedValue(ctx, nil)
	}

	return o
}

// PropertyName returns the property this override belongs to.
func (o *Override) PropertyName() string { return o.editor.PropertyName() }

// Active reports whether the override currently supersedes the editor.
func (o *Override) Active() bool { return o.active }

// Token returns the raw reference token, without the wrapping braces.
func (o *Override) Token() string { return o.token }

// SetToken replaces the reference token.
func (o *Override) SetToken(token string) { o.token = token }

// Value returns the wire form of the reference, as extraction emits it.
func (o *Override) Value() string { return reference.Wrap(o.token) }

// Activate turns the override on. The editor's literal value is left in
// place; it is superseded, and restored when the override is deactivated.
func (o *Override) Activate() { o.active = true }

// Deactivate returns control to the editor and fires its OverrideHidden
// hook so stale dependency state can be refreshed.
func (o *Override) Deactivate(ctx context.Context) {
	if !o.active {
		return
	}

	o.active = false
	o.editor.OverrideHidden(ctx)
}

// Validate fails when the override is active with a blank token. Inactive
// overrides always pass; the editor is authoritative then.
func (o *Override) Validate(_ bool) error {
	if !o.active {
		return nil
	}

	if o.token == "" {
		return ErrOverrideTokenRequired
	}

	return nil
}

// Dispose drops the override's references.
func (o *Override) Dispose() {
	o.disposed = true
	o.active = false
}
