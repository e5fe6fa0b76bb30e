package order

import (
	"context"
	"strconv"
	"sync"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/storage"
)

// DefaultKey is the storage key holding the order collection.
const DefaultKey = "geeks_orders"

// Store is the durable order collection kept as one JSON array under a single
// storage key. Every operation holds the store lock for its whole duration,
// so concurrent callers within a process observe each other's writes in full.
// Writers in other processes sharing the slot are last-write-wins.
type Store struct {
	mu     sync.Mutex
	slot   storage.Slot
	key    string
	policy IDPolicy
	lg     *zap.Logger

	dropped metric.Int64Counter
	retries metric.Int64Counter
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithKey sets the storage key. Defaults to DefaultKey.
func WithKey(key string) StoreOption {
	return func(s *Store) { s.key = key }
}

// WithIDPolicy sets the identifier policy. Defaults to IDPolicyCount.
func WithIDPolicy(p IDPolicy) StoreOption {
	return func(s *Store) { s.policy = p }
}

// WithStoreMeter records dropped records and save retries on m.
func WithStoreMeter(m metric.Meter) StoreOption {
	return func(s *Store) {
		if c, err := m.Int64Counter("storefront.orders.dropped_records",
			metric.WithDescription("Stored orders skipped by the tolerant reader"),
		); err == nil {
			s.dropped = c
		}
		if c, err := m.Int64Counter("storefront.orders.save_retries",
			metric.WithDescription("Repair and retry writes issued while saving orders"),
		); err == nil {
			s.retries = c
		}
	}
}

// NewStore creates a Store over slot.
func NewStore(slot storage.Slot, lg *zap.Logger, opts ...StoreOption) *Store {
	noopMeter := noop.NewMeterProvider().Meter("")
	dropped, _ := noopMeter.Int64Counter("dropped")
	retries, _ := noopMeter.Int64Counter("retries")

	s := &Store{
		slot:    slot,
		key:     DefaultKey,
		policy:  IDPolicyCount,
		lg:      lg,
		dropped: dropped,
		retries: retries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key of the collection.
func (s *Store) Key() string { return s.key }

// Policy returns the identifier policy.
func (s *Store) Policy() IDPolicy { return s.policy }

func (s *Store) seqKey() string { return s.key + "_seq" }

// List returns every stored order that passes the schema, in storage order.
// Storage and parse failures are logged and yield an empty collection.
func (s *Store) List(ctx context.Context) []Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.list(ctx)
}

// Get returns the first stored order with the given ID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %s", id)
	}
	for _, r := range records {
		if r.order.ID == id {
			o := r.order
			return &o, nil
		}
	}
	return nil, ErrNotFound
}

// Save appends o to the collection.
//
// An order failing Validate is discarded and ErrInvalidOrder returned. After a
// successful write the collection is read back; if it does not hold the new
// order it is written once more. If the first write fails the collection is
// reloaded and the write retried once; a second failure returns an error
// wrapping ErrNotPersisted. Nothing is written when the collection cannot be
// read, so a failed read never overwrites stored orders.
func (s *Store) Save(ctx context.Context, o Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(ctx, o)
}

// Create assigns the next identifier to o and saves it. The returned order
// carries the assigned ID even when the error wraps ErrNotPersisted. If the
// identifier cannot be determined because storage is unreadable, nothing is
// saved and the error does not wrap ErrNotPersisted.
func (s *Store) Create(ctx context.Context, o Order) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.next(ctx)
	if err != nil {
		return o, errors.Wrap(err, "next order id")
	}
	o.ID = FormatID(n)

	err = s.save(ctx, o)
	if err == nil || errors.Is(err, ErrNotPersisted) {
		s.advance(ctx, n)
	}
	return o, err
}

// NextID returns the identifier the next Create would assign.
func (s *Store) NextID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.next(ctx)
	if err != nil {
		return "", errors.Wrap(err, "next order id")
	}
	return FormatID(n), nil
}

// Remove deletes every order with the given ID and returns how many were
// removed. The collection is rewritten even when nothing matched, but not
// when it cannot be read.
func (s *Store) Remove(ctx context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return 0, errors.Wrapf(err, "remove order %s", id)
	}
	kept := make([]record, 0, len(records))
	for _, r := range records {
		if r.order.ID != id {
			kept = append(kept, r)
		}
	}
	if err := s.write(ctx, kept); err != nil {
		return 0, errors.Wrapf(err, "remove order %s", id)
	}
	return len(records) - len(kept), nil
}

// RemoveAll deletes the whole collection. The sequence counter, if any, is
// kept.
func (s *Store) RemoveAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.slot.Delete(ctx, s.key); err != nil {
		return errors.Wrap(err, "remove all orders")
	}
	return nil
}

// Replace overwrites the collection with orders. Every order must pass
// Validate; nothing is written otherwise. Under IDPolicySequence the counter
// is raised to the highest imported number.
func (s *Store) Replace(ctx context.Context, orders []Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	highest := 0
	for i, o := range orders {
		if err := Validate(o); err != nil {
			return errors.Wrapf(err, "order %d", i)
		}
		if n, ok := Number(o.ID); ok && n > highest {
			highest = n
		}
	}
	records := make([]record, 0, len(orders))
	for _, o := range orders {
		records = append(records, newRecord(o))
	}
	if err := s.write(ctx, records); err != nil {
		return errors.Wrap(err, "replace orders")
	}
	if highest > 0 {
		s.advance(ctx, highest)
	}
	return nil
}

// load reads the stored records. Only a failed storage read is an error: a
// missing or unparsable value is an empty collection, as List reports it.
func (s *Store) load(ctx context.Context) ([]record, error) {
	raw, ok, err := s.slot.Get(ctx, s.key)
	if err != nil {
		s.lg.Error("Failed to read orders", zap.String("key", s.key), zap.Error(err))
		return nil, errors.Wrap(err, "read orders")
	}
	if !ok {
		return []record{}, nil
	}

	records, err := decodeRecords([]byte(raw), func(index int, err error) {
		s.lg.Warn("Dropping invalid stored order",
			zap.String("key", s.key),
			zap.Int("index", index),
			zap.Error(err),
		)
		s.dropped.Add(ctx, 1)
	})
	if err != nil {
		s.lg.Error("Failed to parse orders", zap.String("key", s.key), zap.Error(err))
		return []record{}, nil
	}
	return records, nil
}

func (s *Store) list(ctx context.Context) []Order {
	records, err := s.load(ctx)
	if err != nil {
		return []Order{}
	}
	return recordOrders(records)
}

func (s *Store) write(ctx context.Context, records []record) error {
	return s.slot.Set(ctx, s.key, encodeRecords(records))
}

func notPersisted(id string, err error) error {
	return errors.Errorf("%w: order %s: %w", ErrNotPersisted, id, err)
}

func (s *Store) save(ctx context.Context, o Order) error {
	if err := Validate(o); err != nil {
		s.lg.Error("Discarding invalid order", zap.String("id", o.ID), zap.Error(err))
		return err
	}
	added := newRecord(o)

	records, err := s.load(ctx)
	if err != nil {
		return notPersisted(o.ID, err)
	}
	records = append(records, added)
	if err := s.write(ctx, records); err != nil {
		s.lg.Warn("Failed to save order, retrying",
			zap.String("id", o.ID),
			zap.Error(err),
		)
		s.retries.Add(ctx, 1)

		records, err := s.load(ctx)
		if err != nil {
			return notPersisted(o.ID, err)
		}
		if err := s.write(ctx, append(records, added)); err != nil {
			s.lg.Error("Failed to save order", zap.String("id", o.ID), zap.Error(err))
			return notPersisted(o.ID, err)
		}
		return nil
	}

	// A failed verification read counts as a mismatch: records already holds
	// the full collection, so rewriting it loses nothing.
	stored, err := s.load(ctx)
	if err != nil || len(stored) != len(records) {
		s.lg.Warn("Stored orders mismatch after save, rewriting",
			zap.String("id", o.ID),
			zap.Int("expected", len(records)),
			zap.Int("stored", len(stored)),
		)
		s.retries.Add(ctx, 1)
		if err := s.write(ctx, records); err != nil {
			s.lg.Error("Failed to rewrite orders", zap.String("id", o.ID), zap.Error(err))
			return notPersisted(o.ID, err)
		}
	}
	return nil
}

// next returns the number for the next identifier under the store policy.
func (s *Store) next(ctx context.Context) (int, error) {
	records, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	count := len(records) + 1
	if s.policy != IDPolicySequence {
		return count, nil
	}
	seq, err := s.sequence(ctx)
	if err != nil {
		return 0, err
	}
	return max(seq+1, count), nil
}

func (s *Store) sequence(ctx context.Context) (int, error) {
	raw, ok, err := s.slot.Get(ctx, s.seqKey())
	if err != nil {
		s.lg.Error("Failed to read order sequence", zap.String("key", s.seqKey()), zap.Error(err))
		return 0, errors.Wrap(err, "read order sequence")
	}
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		s.lg.Warn("Ignoring invalid order sequence",
			zap.String("key", s.seqKey()),
			zap.String("value", raw),
		)
		return 0, nil
	}
	return n, nil
}

// advance records n as the last assigned number under IDPolicySequence. An
// unreadable counter is left alone rather than risk lowering it.
func (s *Store) advance(ctx context.Context, n int) {
	if s.policy != IDPolicySequence {
		return
	}
	seq, err := s.sequence(ctx)
	if err != nil || n <= seq {
		return
	}
	if err := s.slot.Set(ctx, s.seqKey(), strconv.Itoa(n)); err != nil {
		s.lg.Error("Failed to write order sequence",
			zap.String("key", s.seqKey()),
			zap.Int("value", n),
			zap.Error(err),
		)
	}
}
