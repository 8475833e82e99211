package editors

import (
	"context"
	"strings"

	"github.com/propsheet/propsheet/pkg/groups"
	"github.com/propsheet/propsheet/pkg/inspector"
	"github.com/propsheet/propsheet/pkg/schema"
)

// StringList edits an array of strings through a line-per-entry dialog.
// Lines are trimmed and blank lines dropped on commit; order is preserved.
type StringList struct {
	inspector.Base

	dialog dialog[string]
}

func NewStringList(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group) (*StringList, error) {
	base, err := inspector.NewBase(s, def, parent)
	if err != nil {
		return nil, err
	}

	return &StringList{Base: base}, nil
}

// Open seeds the scratch buffer with one line per stored entry, falling
// back to the schema default.
func (e *StringList) Open() {
	value := e.CurrentValue()
	if value == nil {
		value = e.Definition().Default
	}

	lines := make([]string, 0)
	for _, item := range toSlice(value) {
		lines = append(lines, stringify(item))
	}

	e.dialog.Open(strings.Join(lines, "\n"))
}

func (e *StringList) IsOpen() bool { return e.dialog.IsOpen() }

func (e *StringList) Scratch() string { return e.dialog.Scratch() }

func (e *StringList) SetScratch(text string) { e.dialog.SetScratch(text) }

func (e *StringList) Commit(ctx context.Context) error {
	return e.dialog.Commit(func(buffer string) error {
		e.SetValue(ctx, parseLines(buffer), false)

		return nil
	})
}

func (e *StringList) Cancel() { e.dialog.Cancel() }

func (e *StringList) UndefinedValue() any { return []any{} }

func parseLines(buffer string) []any {
	out := make([]any, 0)

	for _, line := range strings.Split(buffer, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		out = append(out, line)
	}

	return out
}
