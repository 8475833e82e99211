package editors

import (
	"context"

	"github.com/propsheet/propsheet/pkg/groups"
	"github.com/propsheet/propsheet/pkg/inspector"
	"github.com/propsheet/propsheet/pkg/schema"
)

// Checkbox edits a boolean property. Schemas written against older engine
// versions stored booleans as strings, so "0", "false" and "" coerce to
// false and any other string to true.
type Checkbox struct {
	inspector.Base
}

func NewCheckbox(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group) (*Checkbox, error) {
	base, err := inspector.NewBase(s, def, parent)
	if err != nil {
		return nil, err
	}

	return &Checkbox{Base: base}, nil
}

func (e *Checkbox) SetChecked(ctx context.Context, checked bool) {
	e.SetValue(ctx, checked, false)
}

func (e *Checkbox) Checked() bool {
	v, _ := e.CurrentValue().(bool)

	return v
}

func (e *Checkbox) CurrentValue() any {
	return coerceBool(e.Base.CurrentValue())
}

// Validate checks the coerced value, not the raw one. Base.Validate binds to
// Base.CurrentValue, so overriding CurrentValue alone is not enough.
func (e *Checkbox) Validate(_ context.Context, _ bool) error {
	return e.ValidateAgainst(e.CurrentValue())
}

func (e *Checkbox) UndefinedValue() any { return false }

func coerceBool(value any) any {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v != "0" && v != "false" && v != ""
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return value
	}
}
