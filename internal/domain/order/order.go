package order

import (
	"fmt"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/cart"
)

// ShippingFee is the flat fee added to every order total.
const ShippingFee = 50

// DateLayout formats Order.Date.
const DateLayout = "1/2/2006, 3:04:05 PM"

// Sentinel errors for order placement and storage.
var (
	ErrEmptyCart    = errors.New("cart is empty")
	ErrInvalidOrder = errors.New("invalid order")
	ErrNotPersisted = errors.New("order not persisted")
	ErrNotFound     = errors.New("order not found")
)

// InvalidQuantityError indicates a cart line with a non-positive quantity.
type InvalidQuantityError struct {
	ProductID int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %d", e.ProductID)
}

// Order is an immutable snapshot of a completed checkout.
type Order struct {
	ID           string
	Items        []cart.Line
	Total        int
	ShippingInfo ShippingInfo
	Date         string
}

// Subtotal returns the order total without the shipping fee, recomputed
// from the items.
func (o Order) Subtotal() int {
	return cart.Subtotal(o.Items)
}

// FormatDate renders t the way Order.Date stores it.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Validate checks that o has every field a stored order must carry. It is the
// write-side counterpart of Order.Decode.
func Validate(o Order) error {
	switch {
	case o.ID == "":
		return errors.Wrap(ErrInvalidOrder, "missing id")
	case o.Items == nil:
		return errors.Wrap(ErrInvalidOrder, "missing items")
	case o.Date == "":
		return errors.Wrap(ErrInvalidOrder, "missing date")
	}
	return nil
}
