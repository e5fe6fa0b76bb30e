package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appkg "github.com/xenking/storefront/internal/app"
	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
)

func seed(t *testing.T, cfg appkg.StorageConfig, ids ...string) {
	t.Helper()
	ctx := context.Background()

	backend, err := appkg.OpenBackend(ctx, cfg)
	require.NoError(t, err)
	defer func() { require.NoError(t, backend.Close()) }()

	store := order.NewStore(backend, zap.NewNop(), order.WithKey(cfg.Key))
	for _, id := range ids {
		require.NoError(t, store.Save(ctx, order.Order{
			ID:    id,
			Items: []cart.Line{{ProductID: 5, Name: "Classic T-Shirt", Price: 400, Size: "M", Quantity: 1}},
			Total: 450,
			ShippingInfo: order.ShippingInfo{
				FirstName: "Mona", LastName: "Hassan", BuildingNumber: "12", StreetName: "Tahrir",
				City: "Cairo", Country: "Egypt", PhoneNumber: "01234567890",
			},
			Date: "10/19/2026, 2:04:05 PM",
		}))
	}
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	cfg := appkg.StorageConfig{
		Backend: appkg.BackendLevelDB,
		Path:    filepath.Join(t.TempDir(), "db"),
		Key:     order.DefaultKey,
	}
	seed(t, cfg, "ORD-000002", "ORD-000001")

	exec := func(args ...string) (string, error) {
		var out bytes.Buffer
		err := run(ctx, cfg, "count", args, &out)
		return out.String(), err
	}

	out, err := exec("list")
	require.NoError(t, err)
	assert.Regexp(t, `(?s)ORD-000001.*ORD-000002`, out)

	out, err = exec("show", "ORD-000002")
	require.NoError(t, err)
	assert.Contains(t, out, `"id":"ORD-000002"`)

	_, err = exec("show", "ORD-000404")
	require.ErrorIs(t, err, order.ErrNotFound)

	dump := filepath.Join(t.TempDir(), "orders.jsonl.gz")
	_, err = exec("export", dump)
	require.NoError(t, err)

	_, err = exec("remove", "ORD-000001")
	require.NoError(t, err)
	_, err = exec("clear")
	require.NoError(t, err)

	out, err = exec("list")
	require.NoError(t, err)
	assert.NotContains(t, out, "ORD-")

	_, err = exec("import", dump)
	require.NoError(t, err)
	out, err = exec("list")
	require.NoError(t, err)
	assert.Contains(t, out, "ORD-000001")
	assert.Contains(t, out, "ORD-000002")
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()
	cfg := appkg.StorageConfig{Backend: appkg.BackendMemory, Key: order.DefaultKey}

	tests := []struct {
		name   string
		policy string
		args   []string
	}{
		{name: "unknown command", policy: "count", args: []string{"purge"}},
		{name: "missing argument", policy: "count", args: []string{"show"}},
		{name: "bad policy", policy: "uuid", args: []string{"list"}},
		{name: "missing file", policy: "count", args: []string{"import", filepath.Join(t.TempDir(), "nope.gz")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, run(ctx, cfg, tt.policy, tt.args, &bytes.Buffer{}))
		})
	}
}
