// Package host defines the boundary between the inspector engine and the
// component that renders it. The engine emits structural intents (build this
// row, expand these rows, mark this row invalid) and never touches layout,
// theming or pixel placement.
package host

import (
	"github.com/propsheet/propsheet/pkg/groups"
	"github.com/propsheet/propsheet/pkg/schema"
)

// RowHandle identifies one rendered row. Handles are opaque to the engine:
// it only ever passes them back to the host that issued them.
type RowHandle any

// RowHost is implemented by the rendering side. All calls are synchronous
// and run on the engine's serialized context.
type RowHost interface {
	// BuildRow materializes the row for one property, filed under the given
	// group. The path is the fully qualified property path.
	BuildRow(path string, def *schema.PropertyDefinition, group *groups.Group) RowHandle

	// BuildGroupRow materializes the header row of a collapsible section.
	BuildGroupRow(group *groups.Group) RowHandle

	// ApplyGroupLevel re-tags a row with the nesting depth of its group,
	// used after rows are relocated between surfaces.
	ApplyGroupLevel(row RowHandle, group *groups.Group)

	// FindGroupRows returns the rows filed under the group with the given
	// index, descending into collapsed subgroups when asked to.
	FindGroupRows(groupIndex string, includeCollapsed bool) []RowHandle

	// ToggleRowsExpanded shows or hides a set of rows.
	ToggleRowsExpanded(rows []RowHandle, expand bool)

	// MarkRowInvalid flags a row as failing validation.
	MarkRowInvalid(row RowHandle)

	// UnmarkAllInvalid clears every invalid marker set so far.
	UnmarkAllInvalid()

	// Focus moves input focus to a row.
	Focus(row RowHandle)

	// MoveRowsAfter relocates rows so they follow the anchor row, preserving
	// their relative order. Used to interleave a child surface's rows into
	// its parent's visual tree.
	MoveRowsAfter(rows []RowHandle, anchor RowHandle)
}

// NopHost discards every structural intent. It is the default host, letting
// the engine run fully headless (CLI validation, service embedding, tests).
type NopHost struct{}

func (NopHost) BuildRow(string, *schema.PropertyDefinition, *groups.Group) RowHandle { return nil }
func (NopHost) BuildGroupRow(*groups.Group) RowHandle                                { return nil }
func (NopHost) ApplyGroupLevel(RowHandle, *groups.Group)                             {}
func (NopHost) FindGroupRows(string, bool) []RowHandle                               { return nil }
func (NopHost) ToggleRowsExpanded([]RowHandle, bool)                                 {}
func (NopHost) MarkRowInvalid(RowHandle)                                             {}
func (NopHost) UnmarkAllInvalid()                                                    {}
func (NopHost) Focus(RowHandle)                                                      {}
func (NopHost) MoveRowsAfter([]RowHandle, RowHandle)                                 {}
