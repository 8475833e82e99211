package editors

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/propsheet/propsheet/pkg/groups"
	"github.com/propsheet/propsheet/pkg/inspector"
	"github.com/propsheet/propsheet/pkg/schema"
)

// Dictionary edits a string-keyed map through a row-per-entry dialog. Keys
// and values are verified on commit: an empty cell or a duplicate key is
// rejected with the offending row and cell named, and a refused commit
// leaves the dialog open with the scratch rows intact.
type Dictionary struct {
	inspector.Base

	dialog dialog[[]DictionaryRow]
}

// DictionaryRow is one scratch key/value pair.
type DictionaryRow struct {
	Key   string
	Value string
}

func NewDictionary(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group) (*Dictionary, error) {
	base, err := inspector.NewBase(s, def, parent)
	if err != nil {
		return nil, err
	}

	return &Dictionary{Base: base}, nil
}

func (e *Dictionary) SupportsExternalOverride() bool { return false }

func (e *Dictionary) UndefinedValue() any { return map[string]any{} }

// Open expands the effective stored map into scratch rows in sorted key
// order.
func (e *Dictionary) Open() {
	value := e.CurrentValue()
	if value == nil {
		value = e.Definition().Default
	}

	var rows []DictionaryRow

	if m, ok := value.(map[string]any); ok {
		keys := make([]string, 0, len(m))
		for key := range m {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		for _, key := range keys {
			rows = append(rows, DictionaryRow{Key: key, Value: stringify(m[key])})
		}
	}

	e.dialog.Open(rows)
}

func (e *Dictionary) IsOpen() bool { return e.dialog.IsOpen() }

func (e *Dictionary) Rows() []DictionaryRow {
	scratch := e.dialog.Scratch()
	rows := make([]DictionaryRow, len(scratch))
	copy(rows, scratch)

	return rows
}

func (e *Dictionary) AddRow() int {
	rows := append(e.dialog.Scratch(), DictionaryRow{})
	e.dialog.SetScratch(rows)

	return len(rows) - 1
}

func (e *Dictionary) SetRow(index int, key, value string) error {
	rows := e.dialog.Scratch()
	if index < 0 || index >= len(rows) {
		return fmt.Errorf("row %d out of range", index)
	}

	rows[index] = DictionaryRow{Key: key, Value: value}
	e.dialog.SetScratch(rows)

	return nil
}

func (e *Dictionary) RemoveRow(index int) error {
	rows := e.dialog.Scratch()
	if index < 0 || index >= len(rows) {
		return fmt.Errorf("row %d out of range", index)
	}

	e.dialog.SetScratch(append(rows[:index], rows[index+1:]...))

	return nil
}

// Commit verifies every row and writes the assembled map. The first empty
// key, empty value or duplicate key refuses the commit with a RowError
// naming the cell to refocus.
func (e *Dictionary) Commit(ctx context.Context) error {
	return e.dialog.Commit(func(rows []DictionaryRow) error {
		out := make(map[string]any, len(rows))

		for i, row := range rows {
			key := strings.TrimSpace(row.Key)
			value := strings.TrimSpace(row.Value)

			if key == "" {
				return &RowError{Row: i, Cell: "key", Err: errors.New("A key is required")}
			}

			if value == "" {
				return &RowError{Row: i, Cell: "value", Err: errors.New("A value is required")}
			}

			if _, exists := out[key]; exists {
				return &RowError{Row: i, Cell: "key", Err: fmt.Errorf("%q is already used by another entry", key)}
			}

			out[key] = value
		}

		e.SetValue(ctx, out, false)

		return nil
	})
}

func (e *Dictionary) Cancel() { e.dialog.Cancel() }
