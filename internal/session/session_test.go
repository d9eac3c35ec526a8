package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreDefaultsToIdle(t *testing.T) {
	store := NewMemoryStore()
	require.Equal(t, StateIdle, store.Get(42))
}

func TestMemoryStoreSetAndGet(t *testing.T) {
	store := NewMemoryStore()

	store.Set(42, StateAwaitingTypefullyKey)
	require.Equal(t, StateAwaitingTypefullyKey, store.Get(42))

	// States are per identity.
	require.Equal(t, StateIdle, store.Get(7))

	store.Set(42, StateAwaitingDeleteConfirmation)
	require.Equal(t, StateAwaitingDeleteConfirmation, store.Get(42))
}

func TestMemoryStoreResetToIdle(t *testing.T) {
	store := NewMemoryStore()
	store.Set(42, StateAwaitingOpenaiKey)
	store.Set(42, StateIdle)
	require.Equal(t, StateIdle, store.Get(42))
}

func TestStateString(t *testing.T) {
	require.Equal(t, "idle", StateIdle.String())
	require.Equal(t, "awaiting_typefully_key", StateAwaitingTypefullyKey.String())
	require.Equal(t, "awaiting_openai_key", StateAwaitingOpenaiKey.String())
	require.Equal(t, "awaiting_delete_confirmation", StateAwaitingDeleteConfirmation.String())
}
