package editors

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/propsheet/propsheet/pkg/inspector"
	"github.com/propsheet/propsheet/pkg/schema"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRegistry() *inspector.Registry {
	registry := inspector.NewRegistry(testLogger())
	Register(registry)

	return registry
}

func buildSurface(t *testing.T, doc *schema.Document, values map[string]any, mutate ...func(*inspector.Config)) *inspector.Surface {
	t.Helper()

	cfg := inspector.Config{
		InstanceID: "instance-1",
		Document:   doc,
		Values:     values,
		Registry:   testRegistry(),
		Logger:     testLogger(),
	}

	for _, m := range mutate {
		m(&cfg)
	}

	surface, err := inspector.New(context.Background(), cfg)
	require.NoError(t, err)

	t.Cleanup(func() { surface.Dispose(context.Background()) })

	return surface
}

func TestRegister_CoversEveryBuiltinKind(t *testing.T) {
	registry := testRegistry()

	kinds := []string{
		schema.TypeString,
		schema.TypeInteger,
		schema.TypeFloat,
		schema.TypeCheckbox,
		schema.TypeDropdown,
		schema.TypeAutocomplete,
		schema.TypeText,
		schema.TypeSet,
		schema.TypeObject,
		schema.TypeObjectList,
		schema.TypeStringList,
		schema.TypeStringListAutocomplete,
		schema.TypeDictionary,
	}

	for _, kind := range kinds {
		require.True(t, registry.Has(kind), "missing editor kind %q", kind)
	}

	require.Len(t, registry.Types(), len(kinds))
}
