// Package inspector implements the property inspector engine: surfaces that
// own a schema and a values map, editors that edit one property each,
// overrides that bind properties to external parameter references, and the
// registry resolving editor type tags to factories. Surfaces nest: an object
// property embeds a full child surface whose property paths are prefixed by
// the parent property's name.
//
// The engine is single-threaded by contract. All surface, editor and group
// operations run to completion on the calling goroutine; the only suspension
// points are option fetches, which run on the configured async runner and
// re-enter through the configured dispatcher.
package inspector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/propsheet/propsheet/pkg/groups"
	"github.com/propsheet/propsheet/pkg/groupstate"
	"github.com/propsheet/propsheet/pkg/groupstate/memory"
	"github.com/propsheet/propsheet/pkg/host"
	"github.com/propsheet/propsheet/pkg/options"
	"github.com/propsheet/propsheet/pkg/reference"
	"github.com/propsheet/propsheet/pkg/schema"
)

// Construction-time failures.
var (
	ErrRegistryRequired = errors.New("surface requires an editor registry")
	ErrDocumentRequired = errors.New("surface requires a schema document")
)

// ValidationError reports the first property that failed a validation walk,
// with its fully qualified path and the rule failure message.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("property %q: %s", e.Path, e.Err.Error())
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Config assembles a root surface. InstanceID, Document and Registry are
// required; everything else has working defaults for headless embedding.
type Config struct {
	// InstanceID keys persisted group expand state. Two surfaces sharing it
	// intentionally observe each other's expand state, so distinct logical
	// targets must never share one.
	InstanceID string

	// Document is the loaded property schema.
	Document *schema.Document

	// Values is the initial value map. The surface works on a deep copy.
	Values map[string]any

	// Registry resolves editor type tags. Every tag in the document is
	// resolved up front; unknown tags abort construction.
	Registry *Registry

	// GroupState persists group expansion, defaulting to an in-memory
	// store scoped to this surface.
	GroupState groupstate.Store

	// Host receives structural rendering intents, defaulting to a no-op.
	Host host.RowHost

	// Provider resolves dynamic option lists. Without one, dynamic editors
	// keep whatever options they have.
	Provider options.Provider

	// ClassTag is forwarded with every options request.
	ClassTag string

	Logger *slog.Logger

	// OnChange is invoked after change notification with the fully
	// qualified path and new value of every property change in the tree.
	OnChange func(path string, value any)

	// RunAsync starts an option fetch. The default runs it inline, which
	// keeps headless embedding deterministic; pass a goroutine runner plus
	// a serializing Dispatch to make fetches truly asynchronous.
	RunAsync func(fn func())

	// Dispatch re-enters the engine's serialized context with a fetch
	// completion or timer callback. The default runs it inline.
	Dispatch func(fn func())

	// DebounceInterval coalesces bursts of dependency-driven refreshes in
	// autocomplete-style editors. Zero disables the timers, refreshing
	// immediately.
	DebounceInterval time.Duration
}

type rowEntry struct {
	row   host.RowHandle
	group *groups.Group
}

// Surface is one self-contained property editing session, root or nested.
type Surface struct {
	doc    *schema.Document
	layout []schema.LayoutItem

	values         map[string]any
	originalValues map[string]any

	editors       []Editor
	editorsByName map[string]Editor
	overrides     map[string]*Override

	manager  *groups.Manager
	group    *groups.Group
	rowHost  host.RowHost
	provider options.Provider
	registry *Registry
	logger   *slog.Logger
	classTag string

	onChange func(path string, value any)
	runAsync func(fn func())
	dispatch func(fn func())
	debounce time.Duration

	parent       *Surface
	propertyName string

	// pathPrefix roots a detached surface's property paths without linking
	// it into a parent's notification tree.
	pathPrefix string

	rows      []rowEntry
	groupRows map[string]host.RowHandle

	changed  bool
	disposed bool
}

func runInline(fn func()) { fn() }

// New builds a root surface: parses the schema into its layout, loads the
// persisted group state, instantiates one editor per property in layout
// order and one override per override-capable property. Construction fails
// fatally on an absent instance ID, an unknown editor type anywhere in the
// document, or malformed editor configuration.
func New(ctx context.Context, cfg Config) (*Surface, error) {
	if cfg.Registry == nil {
		return nil, ErrRegistryRequired
	}

	if cfg.Document == nil {
		return nil, ErrDocumentRequired
	}

	if err := cfg.Registry.ValidateDocument(cfg.Document); err != nil {
		return nil, err
	}

	store := cfg.GroupState
	if store == nil {
		store = memory.NewStore()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	manager, err := groups.NewManager(ctx, cfg.InstanceID, store, logger)
	if err != nil {
		return nil, err
	}

	s := &Surface{
		doc:       cfg.Document,
		values:    CloneValues(cfg.Values),
		manager:   manager,
		group:     manager.Root(),
		rowHost:   cfg.Host,
		provider:  cfg.Provider,
		registry:  cfg.Registry,
		logger:    logger,
		classTag:  cfg.ClassTag,
		onChange:  cfg.OnChange,
		runAsync:  cfg.RunAsync,
		dispatch:  cfg.Dispatch,
		debounce:  cfg.DebounceInterval,
		groupRows: make(map[string]host.RowHandle),
	}

	if s.rowHost == nil {
		s.rowHost = host.NopHost{}
	}

	if s.runAsync == nil {
		s.runAsync = runInline
	}

	if s.dispatch == nil {
		s.dispatch = runInline
	}

	if err := s.construct(ctx); err != nil {
		s.Dispose(ctx)

		return nil, err
	}

	s.originalValues = s.Values()

	return s, nil
}

// NewChild builds a nested surface under a parent, rooted at the given
// group. The child shares the parent's group manager, host, provider,
// registry and async plumbing; its property paths are prefixed with
// propertyName. The child takes ownership of the values map.
func NewChild(ctx context.Context, parent *Surface, propertyName string, doc *schema.Document, values map[string]any, group *groups.Group) (*Surface, error) {
	if doc == nil {
		return nil, ErrDocumentRequired
	}

	if group == nil {
		group = parent.manager.Root()
	}

	if values == nil {
		values = make(map[string]any)
	}

	s := &Surface{
		doc:          doc,
		values:       values,
		manager:      parent.manager,
		group:        group,
		rowHost:      parent.rowHost,
		provider:     parent.provider,
		registry:     parent.registry,
		logger:       parent.logger,
		classTag:     parent.classTag,
		runAsync:     parent.runAsync,
		dispatch:     parent.dispatch,
		debounce:     parent.debounce,
		parent:       parent,
		propertyName: propertyName,
	}

	if err := s.construct(ctx); err != nil {
		s.Dispose(ctx)

		return nil, err
	}

	s.originalValues = s.Values()

	return s, nil
}

// NewDetached builds a standalone surface that borrows an owner's group
// manager, host, provider, registry and async plumbing but is its own
// notification root: edits stay inside it and never broadcast into the
// owner's tree. Its property paths are still rooted at the owner's property.
// Object-list row dialogs edit through detached surfaces so scratch edits
// leak nothing until committed.
func NewDetached(ctx context.Context, owner *Surface, propertyName string, doc *schema.Document, values map[string]any, group *groups.Group) (*Surface, error) {
	if doc == nil {
		return nil, ErrDocumentRequired
	}

	if group == nil {
		group = owner.manager.Root()
	}

	if values == nil {
		values = make(map[string]any)
	}

	s := &Surface{
		doc:        doc,
		values:     values,
		manager:    owner.manager,
		group:      group,
		rowHost:    owner.rowHost,
		provider:   owner.provider,
		registry:   owner.registry,
		logger:     owner.logger,
		classTag:   owner.classTag,
		runAsync:   owner.runAsync,
		dispatch:   owner.dispatch,
		debounce:   owner.debounce,
		pathPrefix: owner.PropertyPath(propertyName),
		groupRows:  make(map[string]host.RowHandle),
	}

	if err := s.construct(ctx); err != nil {
		s.Dispose(ctx)

		return nil, err
	}

	s.originalValues = s.Values()

	return s, nil
}

// construct walks the parsed layout, creating groups for markers and one
// editor per property entry. Properties belonging to a named group are filed
// under the group created for the marker immediately preceding them;
// ungrouped properties are filed under the surface's base group.
func (s *Surface) construct(ctx context.Context) error {
	s.layout = s.doc.Layout()
	s.editorsByName = make(map[string]Editor, s.doc.Len())
	s.overrides = make(map[string]*Override)

	current := s.group

	for i := range s.layout {
		item := &s.layout[i]

		switch item.Type {
		case schema.ItemTypeGroup:
			group := s.manager.CreateGroup(item.Group, s.group)
			current = group

			row := s.rowHost.BuildGroupRow(group)
			s.TrackRow(row, group)
			s.MapGroupRow(group, row)

		case schema.ItemTypeProperty:
			def := item.Property

			parent := current
			if def.Group == "" {
				parent = s.group
			}

			editor, err := s.registry.Create(s, def, parent)
			if err != nil {
				return fmt.Errorf("failed to create editor for %q: %w", s.PropertyPath(def.Property), err)
			}

			s.editors = append(s.editors, editor)
			s.editorsByName[def.Property] = editor

			if err := editor.Build(ctx); err != nil {
				return fmt.Errorf("failed to build editor for %q: %w", s.PropertyPath(def.Property), err)
			}

			if editor.SupportsExternalOverride() {
				s.overrides[def.Property] = newOverride(ctx, s, editor)
			}
		}
	}

	return nil
}

// InstanceID returns the group-state key this surface's tree is filed under.
func (s *Surface) InstanceID() string { return s.manager.InstanceID() }

// ClassTag returns the inspector class tag forwarded to the options provider.
func (s *Surface) ClassTag() string { return s.Root().classTag }

// Document returns the schema this surface edits.
func (s *Surface) Document() *schema.Document { return s.doc }

// Groups returns the group manager shared by this surface's whole tree.
func (s *Surface) Groups() *groups.Manager { return s.manager }

// Group returns the group this surface's rows are rooted under: the manager
// root for a root surface, the owning editor's group for a nested one.
func (s *Surface) Group() *groups.Group { return s.group }

// Host returns the rendering host.
func (s *Surface) Host() host.RowHost { return s.rowHost }

// Provider returns the options provider, nil when none is configured.
func (s *Surface) Provider() options.Provider { return s.provider }

// Registry returns the editor registry.
func (s *Surface) Registry() *Registry { return s.registry }

// Logger returns the surface's logger.
func (s *Surface) Logger() *slog.Logger { return s.logger }

// Parent returns the owning surface, nil at the root.
func (s *Surface) Parent() *Surface { return s.parent }

// Root walks up to the outermost surface.
func (s *Surface) Root() *Surface {
	root := s
	for root.parent != nil {
		root = root.parent
	}

	return root
}

// Editors returns the surface's editors in layout order.
func (s *Surface) Editors() []Editor { return s.editors }

// EditorByName resolves an editor by its property name, nil when unknown.
func (s *Surface) EditorByName(name string) Editor { return s.editorsByName[name] }

// OverrideFor returns the override of an override-capable property, nil for
// composite properties and unknown names.
func (s *Surface) OverrideFor(name string) *Override { return s.overrides[name] }

// DebounceInterval returns the configured refresh coalescing window.
func (s *Surface) DebounceInterval() time.Duration { return s.debounce }

// Disposed reports whether the surface has been torn down.
func (s *Surface) Disposed() bool { return s.disposed }

// SetOnChange registers the change callback on a root surface.
func (s *Surface) SetOnChange(fn func(path string, value any)) { s.onChange = fn }

// PropertyValue reads a property's working value; nil means absent.
func (s *Surface) PropertyValue(name string) any { return s.values[name] }

// SetPropertyValue writes a property's working value, deleting the key when
// value is nil. Unless suppressed, every editor in the root surface's entire
// tree is notified with the fully qualified path, then the root's change
// callback fires. With forceEditorUpdate the owning editor re-syncs its
// displayed state first.
func (s *Surface) SetPropertyValue(ctx context.Context, name string, value any, suppressNotify, forceEditorUpdate bool) {
	if value == nil {
		delete(s.values, name)
	} else {
		s.values[name] = value
	}

	if s.originalValues != nil {
		s.changed = !reflect.DeepEqual(s.Values(), s.originalValues)
	}

	if forceEditorUpdate {
		if editor := s.editorsByName[name]; editor != nil {
			editor.UpdateDisplayedValue(ctx, value)
		}
	}

	if suppressNotify {
		return
	}

	path := s.PropertyPath(name)
	root := s.Root()
	root.broadcast(ctx, path, value)

	if root.onChange != nil {
		root.onChange(path, value)
	}
}

func (s *Surface) broadcast(ctx context.Context, path string, value any) {
	for _, editor := range s.editors {
		editor.PropertyChanged(ctx, path, value)

		if child := editor.ChildSurface(); child != nil {
			child.broadcast(ctx, path, value)
		}
	}
}

// PropertyPath returns the fully qualified path of a property: the dot
// joined chain of ancestor property names down to name. It is the stable
// key dependency lists and change notifications use.
func (s *Surface) PropertyPath(name string) string {
	path := name

	node := s
	for ; node.parent != nil; node = node.parent {
		path = node.propertyName + "." + path
	}

	if node.pathPrefix != "" {
		path = node.pathPrefix + "." + path
	}

	return path
}

// LookupValue resolves a fully qualified property path against the root
// surface's current extraction. On a detached surface the root prefix is
// stripped first, so sibling dependencies resolve against the scratch
// values being edited.
func (s *Surface) LookupValue(path string) (any, bool) {
	root := s.Root()

	if root.pathPrefix != "" {
		path = strings.TrimPrefix(path, root.pathPrefix+".")
	}

	return reference.LookupPath(root.Values(), path)
}

// ResolveDependencyPath turns a depends entry into a fully qualified path:
// names of sibling properties resolve relative to this surface, anything
// else is taken as an already-rooted path.
func (s *Surface) ResolveDependencyPath(dep string) string {
	if s.doc.Property(dep) != nil {
		return s.PropertyPath(dep)
	}

	return dep
}

// Values extracts the surface's current output map. Per property, in layout
// order: an active override wins and emits its wrapped reference; otherwise
// the editor's value, falling back to the schema default and then to the
// editor's undefined value. Properties resolving to the Removed sentinel or
// tripping an ignore policy are dropped.
func (s *Surface) Values() map[string]any {
	out := make(map[string]any)

	for i := range s.layout {
		item := &s.layout[i]
		if item.Type != schema.ItemTypeProperty {
			continue
		}

		def := item.Property
		name := def.Property

		if o := s.overrides[name]; o != nil && o.Active() {
			out[name] = o.Value()

			continue
		}

		value := s.extractEditorValue(def)
		if value == nil || IsRemoved(value) {
			continue
		}

		if def.IgnoreIfEmpty && IsEmptyValue(value) {
			continue
		}

		if def.IgnoreIfDefault && def.Default != nil && reflect.DeepEqual(value, def.Default) {
			continue
		}

		out[name] = value
	}

	return out
}

// ValidValues is the Values walk with validation folded in: a property whose
// override or editor fails a silent validation is set to the Invalid
// sentinel instead of its value, and the caller decides how to react per
// property. It never reports an error itself.
func (s *Surface) ValidValues(ctx context.Context) map[string]any {
	out := make(map[string]any)

	for i := range s.layout {
		item := &s.layout[i]
		if item.Type != schema.ItemTypeProperty {
			continue
		}

		def := item.Property
		name := def.Property

		if o := s.overrides[name]; o != nil && o.Active() {
			if err := o.Validate(true); err != nil {
				out[name] = Invalid
			} else {
				out[name] = o.Value()
			}

			continue
		}

		editor := s.editorsByName[name]
		if err := editor.Validate(ctx, true); err != nil {
			out[name] = Invalid

			continue
		}

		value := s.extractEditorValue(def)
		if value == nil || IsRemoved(value) {
			continue
		}

		if def.IgnoreIfEmpty && IsEmptyValue(value) {
			continue
		}

		if def.IgnoreIfDefault && def.Default != nil && reflect.DeepEqual(value, def.Default) {
			continue
		}

		out[name] = value
	}

	return out
}

func (s *Surface) extractEditorValue(def *schema.PropertyDefinition) any {
	editor := s.editorsByName[def.Property]

	value := editor.CurrentValue()
	if value == nil {
		value = def.Default
	}

	if value == nil {
		value = editor.UndefinedValue()
	}

	return value
}

// Validate walks every editor in layout order, preferring an active
// override's validation over the editor's own, and stops at the first
// failure. Outside silent mode the failing editor's row is marked invalid,
// its ancestor group rows are marked and expanded so the failure is visible,
// and the row is focused. Silent mode has no host side effects at all.
func (s *Surface) Validate(ctx context.Context, silent bool) error {
	if !silent && s.parent == nil {
		s.rowHost.UnmarkAllInvalid()
	}

	for i := range s.layout {
		item := &s.layout[i]
		if item.Type != schema.ItemTypeProperty {
			continue
		}

		name := item.Property.Property
		editor := s.editorsByName[name]

		var err error
		if o := s.overrides[name]; o != nil && o.Active() {
			err = o.Validate(silent)
		} else {
			err = editor.Validate(ctx, silent)
		}

		if err == nil {
			continue
		}

		// A nested surface already revealed the failing editor during its
		// own walk; reveal here only for failures local to this surface.
		var nested *ValidationError
		if errors.As(err, &nested) {
			return nested
		}

		if !silent {
			s.revealFailure(ctx, editor)
		}

		return &ValidationError{Path: s.PropertyPath(name), Err: err}
	}

	return nil
}

func (s *Surface) revealFailure(ctx context.Context, editor Editor) {
	row := editor.Row()
	s.rowHost.MarkRowInvalid(row)

	root := s.Root()
	for g := editor.ParentGroup(); g != nil && !g.IsRoot(); g = g.Parent() {
		if groupRow, ok := root.groupRows[g.Index()]; ok {
			s.rowHost.MarkRowInvalid(groupRow)
		}

		s.rowHost.ToggleRowsExpanded(s.rowHost.FindGroupRows(g.Index(), true), true)
	}

	if err := s.manager.ExpandAncestors(ctx, editor.ParentGroup()); err != nil {
		s.logger.WarnContext(ctx, "failed to persist group expansion",
			"instance_id", s.InstanceID(), "error", err)
	}

	s.rowHost.Focus(row)
}

// Changed reports the cheap change flag: whether any set anywhere in the
// tree left the extraction differing from the construction snapshot.
func (s *Surface) Changed() bool {
	if s.changed {
		return true
	}

	for _, editor := range s.editors {
		if child := editor.ChildSurface(); child != nil && child.Changed() {
			return true
		}
	}

	return false
}

// HasChanges reports structural inequality between the current extraction
// and the snapshot taken at construction.
func (s *Surface) HasChanges() bool {
	return !reflect.DeepEqual(s.Values(), s.originalValues)
}

// HasChangesFrom compares the current extraction against a caller-supplied
// baseline instead of the construction snapshot.
func (s *Surface) HasChangesFrom(baseline map[string]any) bool {
	return !reflect.DeepEqual(s.Values(), baseline)
}

// OriginalValues returns the extraction snapshot taken at construction.
func (s *Surface) OriginalValues() map[string]any { return s.originalValues }

// TrackRow appends a row to the surface's visual flow. Nil handles (from
// hosts that render nothing) are skipped.
func (s *Surface) TrackRow(row host.RowHandle, group *groups.Group) {
	if row == nil {
		return
	}

	s.rows = append(s.rows, rowEntry{row: row, group: group})
}

// MapGroupRow registers a row as a group's header row, tree-wide, so
// validation can mark and expand ancestor groups across surfaces.
func (s *Surface) MapGroupRow(group *groups.Group, row host.RowHandle) {
	if row == nil {
		return
	}

	root := s.Root()
	root.groupRows[group.Index()] = row
}

// GroupRow resolves a group's header row anywhere in the tree.
func (s *Surface) GroupRow(index string) host.RowHandle {
	return s.Root().groupRows[index]
}

// Rows returns the surface's rows in build order.
func (s *Surface) Rows() []host.RowHandle {
	rows := make([]host.RowHandle, len(s.rows))
	for i, entry := range s.rows {
		rows[i] = entry.row
	}

	return rows
}

// MergeChildSurface relocates a child surface's rows to follow the anchor
// row in this surface's visual tree, re-tagging each row with its group's
// nesting depth. This is the one operation that crosses into the rendering
// host's layout domain.
func (s *Surface) MergeChildSurface(child *Surface, anchor host.RowHandle) {
	if len(child.rows) == 0 {
		return
	}

	s.rowHost.MoveRowsAfter(child.Rows(), anchor)

	for _, entry := range child.rows {
		s.rowHost.ApplyGroupLevel(entry.row, entry.group)
	}
}

// FetchOptions resolves an option list through the configured provider. The
// request carries the root surface's full current value set. It is started
// on the async runner; the completion re-enters through the dispatcher and
// is dropped silently when the surface was disposed in the meantime.
func (s *Surface) FetchOptions(ctx context.Context, propertyPath string, complete func(opts []schema.Option, err error)) {
	if s.provider == nil {
		return
	}

	req := options.Request{
		Values:       s.Root().Values(),
		PropertyPath: propertyPath,
		ClassTag:     s.Root().classTag,
	}

	provider := s.provider

	s.runAsync(func() {
		opts, err := provider.RequestOptions(ctx, req)

		s.dispatch(func() {
			if s.disposed {
				return
			}

			complete(opts, err)
		})
	})
}

// Dispatch re-enters the surface's serialized context from a timer or other
// external callback.
func (s *Surface) Dispatch(fn func()) { s.dispatch(fn) }

// Dispose tears the surface down depth-first: every editor (which disposes
// its child surface and timers), then every override, then all references.
// Async completions landing after disposal are no-ops.
func (s *Surface) Dispose(ctx context.Context) {
	if s.disposed {
		return
	}

	s.disposed = true

	for _, editor := range s.editors {
		editor.Dispose(ctx)
	}

	for _, o := range s.overrides {
		o.Dispose()
	}

	s.editors = nil
	s.editorsByName = nil
	s.overrides = nil
	s.rows = nil
	s.groupRows = nil
	s.onChange = nil
}
