package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propsheet/propsheet/pkg/groupstate"
)

func openTest(t *testing.T) (*Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "groupstate.db")

	store, err := NewStore(path)
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close(context.Background()) })

	return store, path
}

func TestStore_RoundTrip(t *testing.T) {
	store, _ := openTest(t)
	ctx := context.Background()

	state, err := store.Read(ctx, "fresh")
	require.NoError(t, err)
	assert.Empty(t, state)

	want := groupstate.State{"1": true, "2-1": false}
	require.NoError(t, store.Write(ctx, "fresh", want))

	state, err = store.Read(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, want, state)
}

func TestStore_WriteReplacesState(t *testing.T) {
	store, _ := openTest(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "a", groupstate.State{"1": true, "2": true}))
	require.NoError(t, store.Write(ctx, "a", groupstate.State{"2": false}))

	state, err := store.Read(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, groupstate.State{"2": false}, state)
}

func TestStore_SurvivesReopen(t *testing.T) {
	store, path := openTest(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "inspector", groupstate.State{"3": true}))
	require.NoError(t, store.Close(ctx))

	reopened, err := NewStore(path)
	require.NoError(t, err)

	defer func() { _ = reopened.Close(ctx) }()

	state, err := reopened.Read(ctx, "inspector")
	require.NoError(t, err)
	assert.Equal(t, groupstate.State{"3": true}, state)
}

func TestStore_HealthCheck(t *testing.T) {
	store, _ := openTest(t)
	assert.NoError(t, store.HealthCheck(context.Background()))
}
