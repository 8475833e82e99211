package editors

import (
	"context"
	"strings"

	"github.com/propsheet/propsheet/pkg/groups"
	"github.com/propsheet/propsheet/pkg/inspector"
	"github.com/propsheet/propsheet/pkg/schema"
)

// String edits a single-line string property. Input is trimmed before it is
// written to the surface; an emptied field clears the value.
type String struct {
	inspector.Base
}

func NewString(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group) (*String, error) {
	base, err := inspector.NewBase(s, def, parent)
	if err != nil {
		return nil, err
	}

	return &String{Base: base}, nil
}

func (e *String) SetText(ctx context.Context, text string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		e.SetValue(ctx, nil, false)

		return
	}

	e.SetValue(ctx, trimmed, false)
}

func (e *String) UndefinedValue() any { return "" }
