package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propsheet/propsheet/pkg/groupstate"
)

func TestStore_ReadUnknownInstance(t *testing.T) {
	store := NewStore()

	state, err := store.Read(context.Background(), "never-written")
	require.NoError(t, err)
	assert.Empty(t, state)
}

func TestStore_WriteThenRead(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.Write(ctx, "inspector-1", groupstate.State{"1": true, "1-2": false})
	require.NoError(t, err)

	state, err := store.Read(ctx, "inspector-1")
	require.NoError(t, err)
	assert.Equal(t, groupstate.State{"1": true, "1-2": false}, state)
}

func TestStore_InstancesAreIsolated(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "a", groupstate.State{"1": true}))
	require.NoError(t, store.Write(ctx, "b", groupstate.State{"1": false}))

	stateA, err := store.Read(ctx, "a")
	require.NoError(t, err)

	stateB, err := store.Read(ctx, "b")
	require.NoError(t, err)

	assert.True(t, stateA["1"])
	assert.False(t, stateB["1"])
}

func TestStore_ReadReturnsCopy(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "a", groupstate.State{"1": true}))

	state, err := store.Read(ctx, "a")
	require.NoError(t, err)

	state["1"] = false
	state["2"] = true

	again, err := store.Read(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, groupstate.State{"1": true}, again)
}
