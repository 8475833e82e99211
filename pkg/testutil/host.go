package testutil

import (
	"github.com/propsheet/propsheet/pkg/groups"
	"github.com/propsheet/propsheet/pkg/host"
	"github.com/propsheet/propsheet/pkg/schema"
)

// RecordedRow is the row handle RecordingHost issues. Tests inspect its
// fields to assert on the structural intents the engine emitted.
type RecordedRow struct {
	Path    string
	Group   *groups.Group
	IsGroup bool
	Level   int
	Invalid bool
	Hidden  bool
}

// RecordingHost implements host.RowHost and records every structural intent
// for assertions.
type RecordingHost struct {
	RowsBuilt []*RecordedRow
	Focused   []*RecordedRow
	Moved     [][]host.RowHandle
	Order     []*RecordedRow
}

var _ host.RowHost = (*RecordingHost)(nil)

func NewRecordingHost() *RecordingHost {
	return &RecordingHost{}
}

func (h *RecordingHost) BuildRow(path string, _ *schema.PropertyDefinition, group *groups.Group) host.RowHandle {
	row := &RecordedRow{Path: path, Group: group, Level: groupLevel(group)}
	h.RowsBuilt = append(h.RowsBuilt, row)
	h.Order = append(h.Order, row)

	return row
}

func (h *RecordingHost) BuildGroupRow(group *groups.Group) host.RowHandle {
	row := &RecordedRow{Path: group.Index(), Group: group, IsGroup: true, Level: groupLevel(group)}
	h.RowsBuilt = append(h.RowsBuilt, row)
	h.Order = append(h.Order, row)

	return row
}

func (h *RecordingHost) ApplyGroupLevel(row host.RowHandle, group *groups.Group) {
	if r, ok := row.(*RecordedRow); ok {
		r.Level = groupLevel(group)
	}
}

func (h *RecordingHost) FindGroupRows(groupIndex string, includeCollapsed bool) []host.RowHandle {
	var rows []host.RowHandle

	for _, row := range h.Order {
		if row.Group == nil || row.IsGroup {
			continue
		}

		if !rowInGroup(row.Group, groupIndex, includeCollapsed) {
			continue
		}

		rows = append(rows, row)
	}

	return rows
}

func (h *RecordingHost) ToggleRowsExpanded(rows []host.RowHandle, expand bool) {
	for _, row := range rows {
		if r, ok := row.(*RecordedRow); ok {
			r.Hidden = !expand
		}
	}
}

func (h *RecordingHost) MarkRowInvalid(row host.RowHandle) {
	if r, ok := row.(*RecordedRow); ok {
		r.Invalid = true
	}
}

func (h *RecordingHost) UnmarkAllInvalid() {
	for _, row := range h.Order {
		row.Invalid = false
	}
}

func (h *RecordingHost) Focus(row host.RowHandle) {
	if r, ok := row.(*RecordedRow); ok {
		h.Focused = append(h.Focused, r)
	}
}

func (h *RecordingHost) MoveRowsAfter(rows []host.RowHandle, anchor host.RowHandle) {
	h.Moved = append(h.Moved, rows)

	anchorRow, ok := anchor.(*RecordedRow)
	if !ok {
		return
	}

	moving := make(map[*RecordedRow]struct{}, len(rows))

	ordered := make([]*RecordedRow, 0, len(rows))

	for _, row := range rows {
		if r, ok := row.(*RecordedRow); ok {
			moving[r] = struct{}{}

			ordered = append(ordered, r)
		}
	}

	kept := make([]*RecordedRow, 0, len(h.Order))

	for _, row := range h.Order {
		if _, moved := moving[row]; !moved {
			kept = append(kept, row)
		}
	}

	out := make([]*RecordedRow, 0, len(h.Order))

	for _, row := range kept {
		out = append(out, row)
		if row == anchorRow {
			out = append(out, ordered...)
		}
	}

	h.Order = out
}

// RowFor returns the recorded row built for a property path, nil when none
// was built.
func (h *RecordingHost) RowFor(path string) *RecordedRow {
	for _, row := range h.Order {
		if !row.IsGroup && row.Path == path {
			return row
		}
	}

	return nil
}

// GroupRowFor returns the recorded header row of a group index.
func (h *RecordingHost) GroupRowFor(index string) *RecordedRow {
	for _, row := range h.Order {
		if row.IsGroup && row.Path == index {
			return row
		}
	}

	return nil
}

// Paths lists the non-group row paths in current visual order.
func (h *RecordingHost) Paths() []string {
	paths := make([]string, 0, len(h.Order))

	for _, row := range h.Order {
		if !row.IsGroup {
			paths = append(paths, row.Path)
		}
	}

	return paths
}

func groupLevel(group *groups.Group) int {
	if group == nil {
		return 0
	}

	return group.Level()
}

func rowInGroup(group *groups.Group, index string, descend bool) bool {
	if group.Index() == index {
		return true
	}

	if !descend {
		return false
	}

	for g := group.Parent(); g != nil; g = g.Parent() {
		if g.Index() == index {
			return true
		}
	}

	return false
}
