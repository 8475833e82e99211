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

func setDoc(extra ...func(*schema.PropertyDefinition)) *schema.Document {
	opts := append([]func(*schema.PropertyDefinition){
		testutil.WithType(schema.TypeSet),
		testutil.WithItems("red", "green", "blue"),
	}, extra...)

	return testutil.CreateTestDocument(testutil.CreateTestProperty("colors", opts...))
}

func TestSet_MembershipFollowsItemOrder(t *testing.T) {
	surface := buildSurface(t, setDoc(), nil)

	editor, ok := surface.EditorByName("colors").(*Set)
	require.True(t, ok)

	ctx := context.Background()

	// Ticked out of order; extraction still runs red before green.
	editor.SetMember(ctx, "green", true)
	editor.SetMember(ctx, "red", true)

	assert.Equal(t, []any{"red", "green"}, surface.Values()["colors"])

	editor.SetMember(ctx, "red", false)
	assert.Equal(t, []any{"green"}, surface.Values()["colors"])
}

func TestSet_SeedsMembershipFromStoredValue(t *testing.T) {
	surface := buildSurface(t, setDoc(), map[string]any{"colors": []any{"blue"}})

	editor, ok := surface.EditorByName("colors").(*Set)
	require.True(t, ok)

	assert.True(t, editor.IsMember("blue"))
	assert.False(t, editor.IsMember("red"))
	assert.Equal(t, []any{"blue"}, surface.Values()["colors"])
}

func TestSet_BuildsOneGroupedRowPerItem(t *testing.T) {
	recording := testutil.NewRecordingHost()
	surface := buildSurface(t, setDoc(), nil, func(cfg *inspector.Config) { cfg.Host = recording })

	editor, ok := surface.EditorByName("colors").(*Set)
	require.True(t, ok)

	assert.True(t, editor.GroupedEditor())
	require.NotNil(t, editor.Group())
	assert.False(t, editor.SupportsExternalOverride())

	paths := recording.Paths()
	assert.Contains(t, paths, "colors")
	assert.Contains(t, paths, "colors.red")
	assert.Contains(t, paths, "colors.green")
	assert.Contains(t, paths, "colors.blue")
}

func TestSet_DynamicItemsResolveThroughProvider(t *testing.T) {
	provider := testutil.NewCountingProvider()
	provider.SetOptions("regions", "eu", "us")

	doc := testutil.CreateTestDocument(
		testutil.CreateTestProperty("tier"),
		testutil.CreateTestProperty("regions",
			testutil.WithType(schema.TypeSet),
			testutil.WithDepends("tier"),
		),
	)
	surface := buildSurface(t, doc, nil, func(cfg *inspector.Config) { cfg.Provider = provider })

	editor, ok := surface.EditorByName("regions").(*Set)
	require.True(t, ok)

	require.Equal(t, 1, provider.CallCount("regions"))
	require.Len(t, editor.Items(), 2)
}

func TestSet_DependencyRefreshDropsVanishedMembers(t *testing.T) {
	provider := testutil.NewCountingProvider()
	provider.SetOptions("regions", "eu", "us")

	doc := testutil.CreateTestDocument(
		testutil.CreateTestProperty("tier"),
		testutil.CreateTestProperty("regions",
			testutil.WithType(schema.TypeSet),
			testutil.WithDepends("tier"),
		),
	)
	surface := buildSurface(t, doc, nil, func(cfg *inspector.Config) { cfg.Provider = provider })

	editor, ok := surface.EditorByName("regions").(*Set)
	require.True(t, ok)

	ctx := context.Background()

	editor.SetMember(ctx, "eu", true)
	editor.SetMember(ctx, "us", true)
	require.Equal(t, []any{"eu", "us"}, surface.Values()["regions"])

	provider.SetOptions("regions", "us")
	surface.SetPropertyValue(ctx, "tier", "basic", false, false)

	assert.Equal(t, []any{"us"}, surface.Values()["regions"], "membership no longer offered is dropped")
	assert.True(t, editor.IsMember("us"))
	assert.False(t, editor.IsMember("eu"))
}

func TestSet_ExternalWriteRederivesChecks(t *testing.T) {
	surface := buildSurface(t, setDoc(), nil)

	editor, ok := surface.EditorByName("colors").(*Set)
	require.True(t, ok)

	surface.SetPropertyValue(context.Background(), "colors", []any{"red", "blue"}, false, true)

	assert.True(t, editor.IsMember("red"))
	assert.False(t, editor.IsMember("green"))
	assert.True(t, editor.IsMember("blue"))
}
