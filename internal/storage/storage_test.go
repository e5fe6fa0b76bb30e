package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "geeks_orders")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "geeks_orders", "[]"))
	require.NoError(t, m.Set(ctx, "geeks_orders", `[{"id":"ORD-000001"}]`))

	v, ok, err := m.Get(ctx, "geeks_orders")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"ORD-000001"}]`, v)

	require.NoError(t, m.Delete(ctx, "geeks_orders"))
	require.NoError(t, m.Delete(ctx, "geeks_orders"))

	_, ok, err = m.Get(ctx, "geeks_orders")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_Closed(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Ping(ctx))
	require.NoError(t, m.Close())

	require.ErrorIs(t, m.Ping(ctx), ErrClosed)
	require.ErrorIs(t, m.Set(ctx, "k", "v"), ErrClosed)
	require.ErrorIs(t, m.Delete(ctx, "k"), ErrClosed)
	_, _, err := m.Get(ctx, "k")
	require.ErrorIs(t, err, ErrClosed)
}
