// Package groups models the collapsible section tree of an inspector surface
// and its persisted expand state.
package groups

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/propsheet/propsheet/pkg/groupstate"
)

// ErrInstanceIDRequired aborts construction when no instance ID is supplied;
// expand state cannot be keyed without one.
var ErrInstanceIDRequired = errors.New("group manager requires an instance id")

// Group is one collapsible section. Groups are created through a Manager and
// live as long as their surface; the id is stable for that lifetime.
type Group struct {
	id        int
	title     string
	parent    *Group
	subgroups []*Group

	index string
}

// ID returns the manager-assigned ordinal of this group.
func (g *Group) ID() int { return g.id }

// Title returns the section title shown on the group row.
func (g *Group) Title() string { return g.title }

// Parent returns the enclosing group, nil for the root.
func (g *Group) Parent() *Group { return g.parent }

// Subgroups returns the directly nested groups in creation order.
func (g *Group) Subgroups() []*Group { return g.subgroups }

// IsRoot reports whether this is the implicit root section.
func (g *Group) IsRoot() bool { return g.parent == nil }

// Level reports the nesting depth, zero for the root.
func (g *Group) Level() int {
	level := 0
	for p := g.parent; p != nil; p = p.parent {
		level++
	}

	return level
}

// Index returns the dash-joined chain of ids from root to this group. It is
// computed once and cached; ids never change, so neither does the index. The
// index doubles as the persistence key for expand state and as the row tag
// the rendering host sees.
func (g *Group) Index() string {
	if g.index != "" {
		return g.index
	}

	var ids []string
	for node := g; node != nil; node = node.parent {
		ids = append(ids, strconv.Itoa(node.id))
	}

	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}

	g.index = strings.Join(ids, "-")

	return g.index
}

// Manager owns a surface tree's groups: it assigns ids, resolves expand
// state against the persisted store, and writes toggles through. One manager
// serves a root surface and all of its child surfaces, keeping indexes
// unique across the whole tree.
type Manager struct {
	instanceID string
	store      groupstate.Store
	logger     *slog.Logger

	root    *Group
	groups  []*Group
	byIndex map[string]*Group
	state   groupstate.State
	nextID  int
}

// NewManager loads the persisted expand state for the instance and prepares
// an empty tree with just the root group.
func NewManager(ctx context.Context, instanceID string, store groupstate.Store, logger *slog.Logger) (*Manager, error) {
	if instanceID == "" {
		return nil, ErrInstanceIDRequired
	}

	state, err := store.Read(ctx, instanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group state for %s: %w", instanceID, err)
	}

	root := &Group{id: 0}

	m := &Manager{
		instanceID: instanceID,
		store:      store,
		logger:     logger,
		root:       root,
		groups:     []*Group{root},
		byIndex:    map[string]*Group{root.Index(): root},
		state:      state,
		nextID:     1,
	}

	return m, nil
}

// InstanceID returns the persistence key this manager serves.
func (m *Manager) InstanceID() string { return m.instanceID }

// Root returns the implicit top-level group.
func (m *Manager) Root() *Group { return m.root }

// CreateGroup appends a new group under parent (the root when nil) and
// assigns it the next ordinal id. Creation order determines ids, so the same
// build sequence always yields the same indexes.
func (m *Manager) CreateGroup(title string, parent *Group) *Group {
	if parent == nil {
		parent = m.root
	}

	group := &Group{id: m.nextID, title: title, parent: parent}
	m.nextID++

	parent.subgroups = append(parent.subgroups, group)
	m.groups = append(m.groups, group)
	m.byIndex[group.Index()] = group

	return group
}

// Groups returns every group created so far, root first.
func (m *Manager) Groups() []*Group { return m.groups }

// GroupByIndex resolves a group from its index key, nil when unknown.
func (m *Manager) GroupByIndex(index string) *Group { return m.byIndex[index] }

// IsExpanded reports the effective expand state: the root is always
// expanded, everything else defaults to collapsed until toggled.
func (m *Manager) IsExpanded(group *Group) bool {
	if group.IsRoot() {
		return true
	}

	return m.state[group.Index()]
}

// SetExpanded records a toggle and writes the full state through to the
// store so a rebuild of the same instance sees it.
func (m *Manager) SetExpanded(ctx context.Context, group *Group, expanded bool) error {
	if group.IsRoot() {
		return nil
	}

	m.state[group.Index()] = expanded

	if err := m.store.Write(ctx, m.instanceID, m.state); err != nil {
		return fmt.Errorf("failed to persist group state for %s: %w", m.instanceID, err)
	}

	if m.logger != nil {
		m.logger.DebugContext(ctx, "group toggled",
			"instance_id", m.instanceID,
			"group_index", group.Index(),
			"expanded", expanded)
	}

	return nil
}

// SetExpandedByIndex is SetExpanded keyed by index, for callers that only
// hold the externally visible key.
func (m *Manager) SetExpandedByIndex(ctx context.Context, index string, expanded bool) error {
	group := m.byIndex[index]
	if group == nil {
		return fmt.Errorf("unknown group index %q", index)
	}

	return m.SetExpanded(ctx, group, expanded)
}

// ExpandAncestors expands every group on the path from the given group up to
// (but excluding) the root, making a row inside collapsed sections visible.
func (m *Manager) ExpandAncestors(ctx context.Context, group *Group) error {
	for node := group; node != nil && !node.IsRoot(); node = node.parent {
		if err := m.SetExpanded(ctx, node, true); err != nil {
			return err
		}
	}

	return nil
}
