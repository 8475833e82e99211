package editors

import (
	"context"
	"strconv"
	"strings"

	"github.com/propsheet/propsheet/pkg/groups"
	"github.com/propsheet/propsheet/pkg/inspector"
	"github.com/propsheet/propsheet/pkg/schema"
	"github.com/propsheet/propsheet/pkg/validation"
)

// numberEditor carries the behavior shared by the integer and float kinds:
// free-text entry stored as a number when it parses and verbatim when it
// does not, plus an implicit shape rule when the schema configures none, so
// malformed input always fails validation with a message instead of being
// silently dropped.
type numberEditor struct {
	inspector.Base

	implicit validation.Rule
}

func newNumberEditor(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group, ruleName string) (numberEditor, error) {
	base, err := inspector.NewBase(s, def, parent)
	if err != nil {
		return numberEditor{}, err
	}

	editor := numberEditor{Base: base}

	if !editor.Rules().Has(ruleName) {
		rule, err := validation.BuiltIn(ruleName, nil, def.Label())
		if err != nil {
			return numberEditor{}, err
		}

		editor.implicit = rule
	}

	return editor, nil
}

func (e *numberEditor) SetNumber(ctx context.Context, raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		e.SetValue(ctx, nil, false)

		return
	}

	if number, err := strconv.ParseFloat(raw, 64); err == nil {
		e.SetValue(ctx, number, false)

		return
	}

	e.SetValue(ctx, raw, false)
}

func (e *numberEditor) Validate(_ context.Context, _ bool) error {
	value := e.CurrentValue()

	if e.implicit != nil {
		if err := e.implicit.Validate(value); err != nil {
			return err
		}
	}

	return e.ValidateAgainst(value)
}

// Integer edits a whole-number property.
type Integer struct {
	numberEditor
}

func NewInteger(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group) (*Integer, error) {
	editor, err := newNumberEditor(s, def, parent, "integer")
	if err != nil {
		return nil, err
	}

	return &Integer{numberEditor: editor}, nil
}

// Float edits a decimal-number property.
type Float struct {
	numberEditor
}

func NewFloat(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group) (*Float, error) {
	editor, err := newNumberEditor(s, def, parent, "float")
	if err != nil {
		return nil, err
	}

	return &Float{numberEditor: editor}, nil
}
