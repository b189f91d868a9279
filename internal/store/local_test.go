package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalBackendLoadMissing(t *testing.T) {
	backend, err := NewLocalBackend(t.TempDir())
	require.NoError(t, err)

	_, _, err = backend.Load(context.Background(), "orders")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalBackendRoundTrip(t *testing.T) {
	backend, err := NewLocalBackend(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	v1, err := backend.Store(ctx, "orders", []byte("order_id,owner\nORD-001,sale01\n"), "")
	require.NoError(t, err)
	require.NotEmpty(t, v1)

	data, version, err := backend.Load(ctx, "orders")
	require.NoError(t, err)
	require.Equal(t, v1, version)
	require.Equal(t, "order_id,owner\nORD-001,sale01\n", string(data))
}

func TestLocalBackendVersionConflict(t *testing.T) {
	backend, err := NewLocalBackend(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	v1, err := backend.Store(ctx, "orders", []byte("a\n1\n"), "")
	require.NoError(t, err)

	// A second writer advances the dataset
	v2, err := backend.Store(ctx, "orders", []byte("a\n1\n2\n"), v1)
	require.NoError(t, err)
	require.NotEqual(t, v1, v2)

	// Writing with the stale marker must be rejected, not merged
	_, err = backend.Store(ctx, "orders", []byte("a\n1\n3\n"), v1)
	require.ErrorIs(t, err, ErrVersionConflict)

	// Creating over an existing dataset is also a conflict
	_, err = backend.Store(ctx, "orders", []byte("a\n"), "")
	require.ErrorIs(t, err, ErrVersionConflict)

	// The winning write is intact
	data, _, err := backend.Load(ctx, "orders")
	require.NoError(t, err)
	require.Equal(t, "a\n1\n2\n", string(data))
}
