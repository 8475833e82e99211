package inspector

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"plugin"
	"sort"

	"github.com/propsheet/propsheet/pkg/groups"
	"github.com/propsheet/propsheet/pkg/schema"
)

// Factory builds one editor instance for a property filed under the given
// group. Factories validate their type-specific configuration and fail
// construction on defects.
type Factory func(s *Surface, def *schema.PropertyDefinition, parent *groups.Group) (Editor, error)

// EditorPlugin is the symbol an editor plugin exports under the name
// "EditorPlugin": a named factory for one additional editor type.
type EditorPlugin interface {
	Type() string
	Create(s *Surface, def *schema.PropertyDefinition, parent *groups.Group) (Editor, error)
}

// Registry maps editor type tags to factories. Surface construction resolves
// every property's tag against it up front, so an unknown tag fails at load
// time rather than at first render.
type Registry struct {
	logger    *slog.Logger
	factories map[string]Factory
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		logger:    logger,
		factories: make(map[string]Factory),
	}
}

// Register binds a type tag to a factory, replacing any previous binding.
func (r *Registry) Register(editorType string, factory Factory) {
	r.factories[editorType] = factory
}

// RegisterPlugin binds a loaded plugin's type to its factory.
func (r *Registry) RegisterPlugin(p EditorPlugin) {
	r.Register(p.Type(), p.Create)
}

// Has reports whether a type tag is registered.
func (r *Registry) Has(editorType string) bool {
	_, ok := r.factories[editorType]

	return ok
}

// Types lists the registered type tags in lexical order.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}

	sort.Strings(types)

	return types
}

// Create instantiates an editor for the property, failing on unknown tags.
func (r *Registry) Create(s *Surface, def *schema.PropertyDefinition, parent *groups.Group) (Editor, error) {
	factory, ok := r.factories[def.Type]
	if !ok {
		return nil, fmt.Errorf("editor type %q not registered for property %q", def.Type, def.Property)
	}

	return factory(s, def, parent)
}

// ValidateDocument checks that every property in the document, including
// nested object and object-list properties, names a registered editor type.
func (r *Registry) ValidateDocument(doc *schema.Document) error {
	return r.validateProperties(doc.Properties(), "")
}

func (r *Registry) validateProperties(props []*schema.PropertyDefinition, path string) error {
	for _, p := range props {
		name := p.Property
		if path != "" {
			name = path + "." + name
		}

		if !r.Has(p.Type) {
			return fmt.Errorf("editor type %q not registered for property %q", p.Type, name)
		}

		if err := r.validateProperties(p.Properties, name); err != nil {
			return err
		}

		if err := r.validateProperties(p.ItemProperties, name); err != nil {
			return err
		}
	}

	return nil
}

// HealthCheck reports whether the registry is usable.
func (r *Registry) HealthCheck() (string, bool) {
	if len(r.factories) == 0 {
		return "No editor types registered", false
	}

	return fmt.Sprintf("%d editor types registered", len(r.factories)), true
}

// LoadPlugins loads every editor plugin under pluginsPath/editors and
// registers it. Plugins are .so files built with -buildmode=plugin exporting
// an EditorPlugin symbol named "EditorPlugin".
func (r *Registry) LoadPlugins(pluginsPath string) error {
	rootPath := pluginsPath + "/editors"
	root := os.DirFS(rootPath)

	pluginPathList, err := fs.Glob(root, "**/*.so")
	if err != nil {
		return err
	}

	l := r.logger.With(slog.String("path", rootPath))
	l.Info("Loading editor plugins")

	for _, p := range pluginPathList {
		plg, err := plugin.Open(rootPath + "/" + p)
		if err != nil {
			panic(err)
		}

		v, err := plg.Lookup("EditorPlugin")
		if err != nil {
			panic(err)
		}

		editorPlugin, ok := v.(EditorPlugin)
		if !ok {
			panic("Could not cast plugin " + p + " to EditorPlugin")
		}

		r.RegisterPlugin(editorPlugin)

		l.Info("Loaded editor plugin", slog.String("plugin", p), slog.String("type", editorPlugin.Type()))
	}

	return nil
}
