package cart

import (
	"sync"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a cart id is unknown to the Registry.
var ErrNotFound = errors.New("cart not found")

// Registry hosts one Cart per shopper session, keyed by a random id.
// Callers only touch a Cart inside View or Update, which hold that cart's
// lock for the duration of the callback. The registry lock only guards the
// id lookup, so a slow callback on one cart never blocks the others.
type Registry struct {
	mu    sync.Mutex
	carts map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	cart    *Cart
	deleted bool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{carts: make(map[string]*entry)}
}

// Create registers a new empty cart and returns its id.
func (r *Registry) Create() string {
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts[id] = &entry{cart: New()}
	return id
}

// View calls fn with the cart for id.
func (r *Registry) View(id string, fn func(c *Cart)) error {
	return r.Update(id, func(c *Cart) error {
		fn(c)
		return nil
	})
}

// Update calls fn with the cart for id and returns its error. Calls for the
// same id are serialized.
func (r *Registry) Update(id string, fn func(c *Cart) error) error {
	r.mu.Lock()
	e, ok := r.carts[id]
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Deleted while waiting for the cart lock.
	if e.deleted {
		return ErrNotFound
	}
	return fn(e.cart)
}

// Delete forgets the cart for id. Unknown ids are ignored. A callback already
// running on the cart finishes first.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	e, ok := r.carts[id]
	delete(r.carts, id)
	r.mu.Unlock()
	if !ok {
		return
	}

	e.mu.Lock()
	e.deleted = true
	e.mu.Unlock()
}

// Len returns the number of registered carts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.carts)
}
