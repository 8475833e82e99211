package editors

import (
	"context"
	"fmt"
	"sort"

	"github.com/propsheet/propsheet/pkg/groups"
	"github.com/propsheet/propsheet/pkg/inspector"
	"github.com/propsheet/propsheet/pkg/schema"
)

// ObjectList edits a list of uniform objects behind a row-selection dialog.
// Rows are scratch snapshots; the selected row is edited through a detached
// surface, and switching rows flushes the active surface's values back into
// its snapshot first. The committed value is an array, or a keyed map when
// the schema configures a key property, in which case keys must be
// non-empty and unique on every row switch and on commit.
type ObjectList struct {
	inspector.Base

	itemDoc *schema.Document

	open   bool
	rows   []*objectListRow
	active int
	child  *inspector.Surface
}

type objectListRow struct {
	values map[string]any
}

func NewObjectList(s *inspector.Surface, def *schema.PropertyDefinition, parent *groups.Group) (*ObjectList, error) {
	base, err := inspector.NewBase(s, def, parent)
	if err != nil {
		return nil, err
	}

	itemDoc, err := schema.FromProperties(def.ItemProperties)
	if err != nil {
		return nil, fmt.Errorf("item properties of %q: %w", def.Property, err)
	}

	return &ObjectList{Base: base, itemDoc: itemDoc, active: -1}, nil
}

func (e *ObjectList) SupportsExternalOverride() bool { return false }

// ChildSurface exposes the detached row surface while a row is selected, so
// hosts can render it. It is not part of the committed tree.
func (e *ObjectList) ChildSurface() *inspector.Surface { return e.child }

func (e *ObjectList) UndefinedValue() any {
	if e.Definition().KeyProperty != "" {
		return map[string]any{}
	}

	return []any{}
}

// Open parses the effective stored value into scratch rows. No row is
// selected initially.
func (e *ObjectList) Open() {
	if e.open {
		return
	}

	e.rows = e.parseRows()
	e.active = -1
	e.open = true
}

func (e *ObjectList) IsOpen() bool { return e.open }

func (e *ObjectList) RowCount() int { return len(e.rows) }

func (e *ObjectList) ActiveRow() int { return e.active }

// RowTitle renders a row's display label from the schema's title property.
func (e *ObjectList) RowTitle(index int) string {
	if index < 0 || index >= len(e.rows) {
		return ""
	}

	return stringify(e.rows[index].values[e.Definition().TitleProperty])
}

// SelectRow flushes the active row and opens the given row for editing on a
// fresh detached surface. In key mode a flush with an empty or duplicate
// key fails and the selection does not move.
func (e *ObjectList) SelectRow(ctx context.Context, index int) error {
	if !e.open {
		return ErrDialogClosed
	}

	if index < 0 || index >= len(e.rows) {
		return fmt.Errorf("row %d out of range", index)
	}

	if err := e.flushActiveRow(ctx); err != nil {
		return err
	}

	e.closeChild(ctx)

	child, err := inspector.NewDetached(ctx, e.Surface(), e.PropertyName(), e.itemDoc,
		inspector.CloneValues(e.rows[index].values), e.ParentGroup())
	if err != nil {
		return err
	}

	e.child = child
	e.active = index

	return nil
}

// AddRow flushes the active row, appends an empty row and selects it.
func (e *ObjectList) AddRow(ctx context.Context) (int, error) {
	if !e.open {
		return 0, ErrDialogClosed
	}

	if err := e.flushActiveRow(ctx); err != nil {
		return 0, err
	}

	e.rows = append(e.rows, &objectListRow{values: map[string]any{}})
	index := len(e.rows) - 1

	if err := e.SelectRow(ctx, index); err != nil {
		e.rows = e.rows[:index]

		return 0, err
	}

	return index, nil
}

// RemoveRow drops a row. Removing the active row closes its surface.
func (e *ObjectList) RemoveRow(ctx context.Context, index int) error {
	if !e.open {
		return ErrDialogClosed
	}

	if index < 0 || index >= len(e.rows) {
		return fmt.Errorf("row %d out of range", index)
	}

	if index == e.active {
		e.closeChild(ctx)
		e.active = -1
	} else if index < e.active {
		e.active--
	}

	e.rows = append(e.rows[:index], e.rows[index+1:]...)

	return nil
}

// Commit flushes the active row, verifies every key in key mode, writes the
// assembled value to the surface and closes the dialog. A refused commit
// leaves the dialog open with all scratch state intact.
func (e *ObjectList) Commit(ctx context.Context) error {
	if !e.open {
		return ErrDialogClosed
	}

	if err := e.flushActiveRow(ctx); err != nil {
		return err
	}

	if e.Definition().KeyProperty != "" {
		for i, row := range e.rows {
			if err := e.checkKey(row.values, i); err != nil {
				return err
			}
		}
	}

	e.SetValue(ctx, e.assemble(), false)
	e.closeDialog(ctx)

	return nil
}

// Cancel discards every scratch row and closes the dialog.
func (e *ObjectList) Cancel(ctx context.Context) {
	if !e.open {
		return
	}

	e.closeDialog(ctx)
}

func (e *ObjectList) Dispose(ctx context.Context) {
	e.closeChild(ctx)
	e.Base.Dispose(ctx)
}

// parseRows expands the stored value (or the schema default) into scratch
// snapshots. Keyed maps expand in sorted key order with the key folded into
// each row under the key property.
func (e *ObjectList) parseRows() []*objectListRow {
	value := e.Base.CurrentValue()
	if value == nil {
		value = e.Definition().Default
	}

	var rows []*objectListRow

	switch v := value.(type) {
	case []any:
		for _, item := range v {
			m, _ := item.(map[string]any)
			rows = append(rows, &objectListRow{values: inspector.CloneValues(m)})
		}

	case map[string]any:
		key := e.Definition().KeyProperty
		if key == "" {
			break
		}

		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}

		sort.Strings(names)

		for _, name := range names {
			m, _ := v[name].(map[string]any)
			values := inspector.CloneValues(m)
			values[key] = name
			rows = append(rows, &objectListRow{values: values})
		}
	}

	return rows
}

func (e *ObjectList) flushActiveRow(ctx context.Context) error {
	if e.child == nil || e.active < 0 {
		return nil
	}

	flushed := e.child.Values()

	if e.Definition().KeyProperty != "" {
		if err := e.checkKey(flushed, e.active); err != nil {
			return err
		}
	}

	e.rows[e.active].values = flushed

	return nil
}

// checkKey verifies one row's key against the dialog's other rows.
func (e *ObjectList) checkKey(values map[string]any, self int) error {
	key := e.Definition().KeyProperty

	name, _ := values[key].(string)
	if name == "" {
		return &RowError{Row: self, Cell: key, Err: fmt.Errorf("%q requires a value for %q", e.Definition().Label(), key)}
	}

	for i, row := range e.rows {
		if i == self {
			continue
		}

		other, _ := row.values[key].(string)
		if other == name {
			return &RowError{Row: self, Cell: key, Err: fmt.Errorf("%q is already used by another entry", name)}
		}
	}

	return nil
}

// assemble folds the scratch rows into the committed value shape.
func (e *ObjectList) assemble() any {
	key := e.Definition().KeyProperty

	if key != "" {
		out := make(map[string]any, len(e.rows))

		for _, row := range e.rows {
			values := inspector.CloneValues(row.values)
			name, _ := values[key].(string)
			delete(values, key)
			out[name] = values
		}

		return out
	}

	out := make([]any, 0, len(e.rows))
	for _, row := range e.rows {
		out = append(out, inspector.CloneValues(row.values))
	}

	return out
}

func (e *ObjectList) closeChild(ctx context.Context) {
	if e.child == nil {
		return
	}

	e.child.Dispose(ctx)
	e.child = nil
}

func (e *ObjectList) closeDialog(ctx context.Context) {
	e.closeChild(ctx)
	e.rows = nil
	e.active = -1
	e.open = false
}
