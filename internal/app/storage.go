package app

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/storage"
	"github.com/xenking/storefront/internal/storage/leveldb"
	"github.com/xenking/storefront/internal/storage/postgres"
)

// OpenBackend opens the slot backend selected by cfg. The caller closes it.
func OpenBackend(ctx context.Context, cfg StorageConfig) (storage.Backend, error) {
	switch cfg.Backend {
	case BackendMemory:
		return storage.NewMemory(), nil
	case BackendLevelDB:
		s, err := leveldb.Open(cfg.Path)
		if err != nil {
			return nil, errors.Wrap(err, "open leveldb")
		}
		return s, nil
	case BackendPostgres:
		s, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "open postgres")
		}
		return s, nil
	default:
		return nil, errors.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
