package editors

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propsheet/propsheet/pkg/inspector"
	"github.com/propsheet/propsheet/pkg/schema"
	"github.com/propsheet/propsheet/pkg/testutil"
)

func autocompleteDoc() *schema.Document {
	return testutil.CreateTestDocument(
		testutil.CreateTestProperty("service"),
		testutil.CreateTestProperty("endpoint",
			testutil.WithType(schema.TypeAutocomplete),
			testutil.WithDepends("service"),
		),
	)
}

func TestAutocomplete_FreeTextIsNeverBlocked(t *testing.T) {
	surface := buildSurface(t, autocompleteDoc(), nil)

	editor, ok := surface.EditorByName("endpoint").(*Autocomplete)
	require.True(t, ok)

	assert.Empty(t, editor.Suggestions(), "no provider means no suggestions")

	editor.SetText(context.Background(), "https://example.test")
	assert.Equal(t, "https://example.test", surface.Values()["endpoint"])
}

func TestAutocomplete_SuggestionsFollowDependencies(t *testing.T) {
	provider := testutil.NewCountingProvider()
	provider.SetOptions("endpoint", "https://a.test")

	surface := buildSurface(t, autocompleteDoc(), nil, func(cfg *inspector.Config) { cfg.Provider = provider })

	editor, ok := surface.EditorByName("endpoint").(*Autocomplete)
	require.True(t, ok)

	require.Equal(t, 1, provider.CallCount("endpoint"))
	assert.Equal(t, []schema.Option{{Value: "https://a.test"}}, editor.Suggestions())

	provider.SetOptions("endpoint", "https://b.test")
	surface.SetPropertyValue(context.Background(), "service", "b", false, false)

	assert.Equal(t, 2, provider.CallCount("endpoint"), "zero debounce refreshes inline")
	assert.Equal(t, []schema.Option{{Value: "https://b.test"}}, editor.Suggestions())
}

func TestAutocomplete_DebounceCoalescesBursts(t *testing.T) {
	provider := testutil.NewCountingProvider()
	provider.SetOptions("endpoint", "https://a.test")

	surface := buildSurface(t, autocompleteDoc(), nil, func(cfg *inspector.Config) {
		cfg.Provider = provider
		cfg.DebounceInterval = 20 * time.Millisecond
	})

	require.Equal(t, 1, provider.CallCount("endpoint"), "the priming fetch is not debounced")

	ctx := context.Background()

	surface.SetPropertyValue(ctx, "service", "a", false, false)
	surface.SetPropertyValue(ctx, "service", "ab", false, false)
	surface.SetPropertyValue(ctx, "service", "abc", false, false)

	assert.Equal(t, 1, provider.CallCount("endpoint"), "burst changes must not fetch inline")

	assert.Eventually(t, func() bool {
		return provider.CallCount("endpoint") == 2
	}, time.Second, 5*time.Millisecond, "the burst coalesces into one refresh")

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 2, provider.CallCount("endpoint"))
}
