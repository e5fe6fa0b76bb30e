// Package storage defines the single-slot key-value contract the order store
// persists through, and an in-memory implementation of it.
//
// A slot holds one string value per key. Reads return the whole value and
// writes replace it wholesale: there are no partial updates and no
// transactions. Backends live in sub-packages (leveldb, postgres).
package storage

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
)

// ErrClosed is returned by operations on a backend that has been closed.
var ErrClosed = errors.New("storage closed")

// Slot is a durable string-valued key-value facility.
type Slot interface {
	// Get returns the value stored under key. The boolean is false when the
	// key is absent, in which case err is nil.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set overwrites the value stored under key.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Backend is a Slot with a lifecycle, as opened by the application.
type Backend interface {
	Slot
	Ping(ctx context.Context) error
	Close() error
}

var _ Backend = (*Memory)(nil)

// Memory is a process-local Backend. Values do not survive a restart.
type Memory struct {
	mu     sync.RWMutex
	data   map[string]string
	closed bool
}

// NewMemory returns an empty Memory backend.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get implements Slot.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.data[key]
	return v, ok, nil
}

// Set implements Slot.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.data[key] = value
	return nil
}

// Delete implements Slot.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	delete(m.data, key)
	return nil
}

// Ping reports ErrClosed once the backend is closed.
func (m *Memory) Ping(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}
	return nil
}

// Close releases the stored values. Subsequent calls fail with ErrClosed.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}
