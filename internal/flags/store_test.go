package flags

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := NewStore(client)
	require.NoError(t, err)
	return store
}

func TestStore_UpsertAndGet(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	flag, err := store.Upsert(ctx, SwapEnabled, true)
	require.NoError(t, err)
	assert.Equal(t, SwapEnabled, flag.Key)
	assert.True(t, flag.Value)
	assert.NotZero(t, flag.UpdatedAt)

	got, err := store.Get(ctx, SwapEnabled)
	require.NoError(t, err)
	assert.Equal(t, flag.Key, got.Key)
	assert.Equal(t, flag.Value, got.Value)

	// Upsert flips the value in place.
	_, err = store.Upsert(ctx, SwapEnabled, false)
	require.NoError(t, err)
	got, err = store.Get(ctx, SwapEnabled)
	require.NoError(t, err)
	assert.False(t, got.Value)
}

func TestStore_GetMissing(t *testing.T) {
	store := setupStore(t)

	flag, err := store.Get(context.Background(), "nonexistent.flag")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, flag)
}

func TestStore_Enabled(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	// Unset flags default to enabled.
	enabled, err := store.Enabled(ctx, IssuanceEnabled)
	require.NoError(t, err)
	assert.True(t, enabled)

	_, err = store.Upsert(ctx, IssuanceEnabled, false)
	require.NoError(t, err)

	enabled, err = store.Enabled(ctx, IssuanceEnabled)
	require.NoError(t, err)
	assert.False(t, enabled)

	_, err = store.Upsert(ctx, IssuanceEnabled, true)
	require.NoError(t, err)

	enabled, err = store.Enabled(ctx, IssuanceEnabled)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestStore_List(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	flags, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, flags)

	want := map[string]bool{
		IssuanceEnabled: true,
		SwapEnabled:     false,
		"maintenance":   true,
	}
	for key, value := range want {
		_, err := store.Upsert(ctx, key, value)
		require.NoError(t, err)
	}

	flags, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, flags, 3)

	got := make(map[string]bool, len(flags))
	for _, f := range flags {
		got[f.Key] = f.Value
	}
	assert.Equal(t, want, got)
}

func TestStore_Delete(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, SwapEnabled, false)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, SwapEnabled))

	_, err = store.Get(ctx, SwapEnabled)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is a no-op.
	assert.NoError(t, store.Delete(ctx, SwapEnabled))

	// And the kill switch falls back to enabled.
	enabled, err := store.Enabled(ctx, SwapEnabled)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestStore_InvalidKeys(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for _, key := range []string{"", " ", "bad key", "bad:key", "bad\nkey"} {
		_, err := store.Upsert(ctx, key, true)
		assert.Error(t, err, "key %q should be rejected", key)
	}

	for _, key := range []string{"a", "swap.enabled", "flag-123", "a_b.c-d"} {
		_, err := store.Upsert(ctx, key, true)
		assert.NoError(t, err, "key %q should be accepted", key)
	}
}
