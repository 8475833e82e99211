package editors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propsheet/propsheet/pkg/schema"
	"github.com/propsheet/propsheet/pkg/testutil"
)

func textDoc(extra ...func(*schema.PropertyDefinition)) *schema.Document {
	opts := append([]func(*schema.PropertyDefinition){
		testutil.WithType(schema.TypeText),
	}, extra...)

	return testutil.CreateTestDocument(testutil.CreateTestProperty("script", opts...))
}

func TestText_CommitWritesScratchVerbatim(t *testing.T) {
	surface := buildSurface(t, textDoc(), nil)

	editor, ok := surface.EditorByName("script").(*Text)
	require.True(t, ok)

	editor.Open()
	editor.SetScratch("line one\nline two")
	require.NoError(t, editor.Commit(context.Background()))

	assert.False(t, editor.IsOpen())
	assert.Equal(t, "line one\nline two", surface.Values()["script"])
}

func TestText_CommitEmptyBufferClearsValue(t *testing.T) {
	surface := buildSurface(t, textDoc(), map[string]any{"script": "old"})

	editor, ok := surface.EditorByName("script").(*Text)
	require.True(t, ok)

	editor.Open()
	editor.SetScratch("")
	require.NoError(t, editor.Commit(context.Background()))

	assert.Nil(t, surface.PropertyValue("script"))
	assert.Equal(t, "", surface.Values()["script"], "cleared text extracts as the undefined value")
}

func TestText_CancelDiscardsScratch(t *testing.T) {
	surface := buildSurface(t, textDoc(), map[string]any{"script": "keep me"})

	editor, ok := surface.EditorByName("script").(*Text)
	require.True(t, ok)

	editor.Open()
	editor.SetScratch("throwaway")
	editor.Cancel()

	assert.Equal(t, "keep me", surface.Values()["script"])

	editor.Open()
	assert.Equal(t, "keep me", editor.Scratch(), "reopening seeds from the untouched value")
}

func TestText_OpenFallsBackToDefault(t *testing.T) {
	surface := buildSurface(t, textDoc(testutil.WithDefault("template")), nil)

	editor, ok := surface.EditorByName("script").(*Text)
	require.True(t, ok)

	editor.Open()
	assert.Equal(t, "template", editor.Scratch())
}

func TestText_CommitWithoutOpenFails(t *testing.T) {
	surface := buildSurface(t, textDoc(), nil)

	editor, ok := surface.EditorByName("script").(*Text)
	require.True(t, ok)

	require.ErrorIs(t, editor.Commit(context.Background()), ErrDialogClosed)
}
