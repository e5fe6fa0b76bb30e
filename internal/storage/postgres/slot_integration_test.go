//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "storefront",
				"POSTGRES_PASSWORD": "storefront",
				"POSTGRES_DB":       "storefront",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://storefront:storefront@%s:%s/storefront?sslmode=disable", host, port.Port())
}

func TestSlot_Postgres(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, startPostgres(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Ping(ctx))

	_, ok, err := s.Get(ctx, "geeks_orders")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "geeks_orders", "[]"))
	require.NoError(t, s.Set(ctx, "geeks_orders", `[{"id":"ORD-000001"}]`))

	v, ok, err := s.Get(ctx, "geeks_orders")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"ORD-000001"}]`, v)

	require.NoError(t, s.Delete(ctx, "geeks_orders"))
	require.NoError(t, s.Delete(ctx, "geeks_orders"))
	_, ok, err = s.Get(ctx, "geeks_orders")
	require.NoError(t, err)
	assert.False(t, ok)
}
