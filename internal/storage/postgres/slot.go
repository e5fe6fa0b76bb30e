// Package postgres implements storage.Backend on a PostgreSQL table, for
// deployments where several storefront processes share one order slot.
package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/storage"
)

const (
	getSlotSQL = `SELECT value FROM kv_slots WHERE key = $1`

	setSlotSQL = `INSERT INTO kv_slots (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

	deleteSlotSQL = `DELETE FROM kv_slots WHERE key = $1`
)

var _ storage.Backend = (*Slot)(nil)

// Slot stores each key as one row of kv_slots. Concurrent writers from
// different processes are last-write-wins.
type Slot struct {
	pool *pgxpool.Pool
}

// NewSlot returns a Slot that uses the given pool. The pool is owned by the
// Slot and closed by Close.
func NewSlot(pool *pgxpool.Pool) *Slot {
	return &Slot{pool: pool}
}

// Open connects to databaseURL, applies the schema and returns a Slot.
func Open(ctx context.Context, databaseURL string) (*Slot, error) {
	pool, err := NewPool(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return NewSlot(pool), nil
}

// Get implements storage.Slot.
func (s *Slot) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	if err := s.pool.QueryRow(ctx, getSlotSQL, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, errors.Wrapf(err, "get slot %q", key)
	}
	return value, true, nil
}

// Set implements storage.Slot.
func (s *Slot) Set(ctx context.Context, key, value string) error {
	if _, err := s.pool.Exec(ctx, setSlotSQL, key, value); err != nil {
		return errors.Wrapf(err, "set slot %q", key)
	}
	return nil
}

// Delete implements storage.Slot.
func (s *Slot) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, deleteSlotSQL, key); err != nil {
		return errors.Wrapf(err, "delete slot %q", key)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Slot) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *Slot) Close() error {
	s.pool.Close()
	return nil
}
