// Package leveldb implements storage.Backend on an embedded LevelDB database,
// the default durable slot for a single storefront process.
package leveldb

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/xenking/storefront/internal/storage"
)

var _ storage.Backend = (*Slot)(nil)

// Slot stores each key as one LevelDB record. Writes are synced to disk
// before returning so an acknowledged order survives a crash.
type Slot struct {
	db *leveldb.DB
}

// Open opens (creating if needed) the database directory at path.
func Open(path string) (*Slot, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "open leveldb %q", path)
	}
	return &Slot{db: db}, nil
}

// Get implements storage.Slot.
func (s *Slot) Get(_ context.Context, key string) (string, bool, error) {
	v, err := s.db.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return "", false, nil
		}
		return "", false, wrapClosed(err, "get %q", key)
	}
	return string(v), true, nil
}

// Set implements storage.Slot.
func (s *Slot) Set(_ context.Context, key, value string) error {
	if err := s.db.Put([]byte(key), []byte(value), &opt.WriteOptions{Sync: true}); err != nil {
		return wrapClosed(err, "put %q", key)
	}
	return nil
}

// Delete implements storage.Slot.
func (s *Slot) Delete(_ context.Context, key string) error {
	if err := s.db.Delete([]byte(key), &opt.WriteOptions{Sync: true}); err != nil {
		return wrapClosed(err, "delete %q", key)
	}
	return nil
}

// Ping reports whether the database is still open.
func (s *Slot) Ping(_ context.Context) error {
	if _, err := s.db.GetProperty("leveldb.num-files-at-level0"); err != nil {
		return wrapClosed(err, "ping")
	}
	return nil
}

// Close closes the underlying database.
func (s *Slot) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, "close leveldb")
	}
	return nil
}

func wrapClosed(err error, format string, args ...any) error {
	if errors.Is(err, leveldb.ErrClosed) {
		return storage.ErrClosed
	}
	return errors.Wrapf(err, format, args...)
}
