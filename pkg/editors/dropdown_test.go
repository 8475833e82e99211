package editors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propsheet/propsheet/pkg/inspector"
	"github.com/propsheet/propsheet/pkg/schema"
	"github.com/propsheet/propsheet/pkg/testutil"
)

func dropdownDoc(extra ...func(*schema.PropertyDefinition)) *schema.Document {
	opts := append([]func(*schema.PropertyDefinition){
		testutil.WithType(schema.TypeDropdown),
		testutil.WithDepends("region"),
	}, extra...)

	return testutil.CreateTestDocument(
		testutil.CreateTestProperty("region"),
		testutil.CreateTestProperty("zone", opts...),
	)
}

func TestDropdown_StaticItems(t *testing.T) {
	doc := testutil.CreateTestDocument(
		testutil.CreateTestProperty("mode",
			testutil.WithType(schema.TypeDropdown),
			testutil.WithItems("auto", "manual"),
		),
	)
	surface := buildSurface(t, doc, nil)

	editor, ok := surface.EditorByName("mode").(*Dropdown)
	require.True(t, ok)

	require.Len(t, editor.Options(), 2)
	assert.Equal(t, "auto", surface.Values()["mode"], "no placeholder means the first option is the undefined value")

	editor.Select(context.Background(), "manual")
	assert.Equal(t, "manual", surface.Values()["mode"])
}

func TestDropdown_PlaceholderLeavesNoValueRepresentable(t *testing.T) {
	doc := testutil.CreateTestDocument(
		testutil.CreateTestProperty("mode",
			testutil.WithType(schema.TypeDropdown),
			testutil.WithItems("auto", "manual"),
			testutil.WithPlaceholder("choose a mode"),
		),
	)
	surface := buildSurface(t, doc, nil)

	_, present := surface.Values()["mode"]
	assert.False(t, present, "with a placeholder an untouched dropdown extracts nothing")
}

func TestDropdown_DependencyRefreshRetainsOfferedSelection(t *testing.T) {
	provider := testutil.NewCountingProvider()
	provider.SetOptions("zone", "shared", "a-only")

	surface := buildSurface(t, dropdownDoc(), nil, func(cfg *inspector.Config) { cfg.Provider = provider })

	ctx := context.Background()

	editor, ok := surface.EditorByName("zone").(*Dropdown)
	require.True(t, ok)

	editor.Select(ctx, "shared")

	provider.SetOptions("zone", "shared", "b-only")
	surface.SetPropertyValue(ctx, "region", "b", false, false)

	assert.Equal(t, "shared", surface.PropertyValue("zone"), "a still-offered selection survives a refresh")
}

func TestDropdown_DependencyRefreshDropsVanishedSelection(t *testing.T) {
	provider := testutil.NewCountingProvider()
	provider.SetOptions("zone", "a-1", "a-2")

	surface := buildSurface(t, dropdownDoc(), nil, func(cfg *inspector.Config) { cfg.Provider = provider })

	ctx := context.Background()

	editor, ok := surface.EditorByName("zone").(*Dropdown)
	require.True(t, ok)

	editor.Select(ctx, "a-2")

	provider.SetOptions("zone", "b-1", "b-2")
	surface.SetPropertyValue(ctx, "region", "b", false, false)

	assert.Equal(t, "b-1", surface.PropertyValue("zone"), "a vanished selection falls back to the first option")
}

func TestDropdown_StaleResponseDiscarded(t *testing.T) {
	provider := testutil.NewCountingProvider()

	var pending []func()

	surface := buildSurface(t, dropdownDoc(), nil, func(cfg *inspector.Config) {
		cfg.Provider = provider
		cfg.RunAsync = func(fn func()) { pending = append(pending, fn) }
	})

	ctx := context.Background()

	editor, ok := surface.EditorByName("zone").(*Dropdown)
	require.True(t, ok)

	require.Len(t, pending, 1, "construction primes one fetch")
	provider.SetOptions("zone", "initial")
	pending[0]()
	require.Equal(t, []schema.Option{{Value: "initial"}}, editor.Options())

	surface.SetPropertyValue(ctx, "region", "a", false, false)
	surface.SetPropertyValue(ctx, "region", "b", false, false)
	require.Len(t, pending, 3, "each distinct dependency value issues a fetch")

	// The fetch for region=b completes first; the older region=a response
	// lands afterwards and must not overwrite it.
	provider.SetOptions("zone", "b-zone")
	pending[2]()
	provider.SetOptions("zone", "a-zone")
	pending[1]()

	assert.Equal(t, []schema.Option{{Value: "b-zone"}}, editor.Options())
}

func TestDropdown_OverrideDeactivationRefreshesOptions(t *testing.T) {
	provider := testutil.NewCountingProvider()
	provider.SetOptions("zone", "z-1")

	surface := buildSurface(t, dropdownDoc(), map[string]any{"zone": "{{ params.ZONE }}"},
		func(cfg *inspector.Config) { cfg.Provider = provider })

	require.Equal(t, 1, provider.CallCount("zone"))

	o := surface.OverrideFor("zone")
	require.NotNil(t, o)
	require.True(t, o.Active())

	o.Deactivate(context.Background())

	assert.Equal(t, 2, provider.CallCount("zone"), "deactivation must re-resolve unconditionally")
}
