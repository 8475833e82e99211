package editors

import (
	"context"

	"github.com/propsheet/propsheet/pkg/groups"
	"github.com/propsheet/propsheet/pkg/inspector"
	"github.com/propsheet/propsheet/pkg/schema"
)

// Text edits a multi-line string through a detached dialog. Edits live in a
// scratch buffer until committed; cancel leaves the property untouched.
type Text struct {
	inspector.Base

	dialog dialog[string]
}

func NewText(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group) (*Text, error) {
	base, err := inspector.NewBase(s, def, parent)
	if err != nil {
		return nil, err
	}

	return &Text{Base: base}, nil
}

// Open seeds the scratch buffer with the effective text: current value,
// falling back to the schema default.
func (e *Text) Open() {
	value := e.CurrentValue()
	if value == nil {
		value = e.Definition().Default
	}

	e.dialog.Open(stringify(value))
}

func (e *Text) IsOpen() bool { return e.dialog.IsOpen() }

func (e *Text) Scratch() string { return e.dialog.Scratch() }

func (e *Text) SetScratch(text string) { e.dialog.SetScratch(text) }

// Commit writes the scratch buffer as the property's value and closes the
// dialog. An empty buffer clears the value.
func (e *Text) Commit(ctx context.Context) error {
	return e.dialog.Commit(func(buffer string) error {
		if buffer == "" {
			e.SetValue(ctx, nil, false)

			return nil
		}

		e.SetValue(ctx, buffer, false)

		return nil
	})
}

// Cancel discards the scratch buffer.
func (e *Text) Cancel() { e.dialog.Cancel() }

func (e *Text) UndefinedValue() any { return "" }
