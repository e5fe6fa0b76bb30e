package product

import (
	"context"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrInvalidSize is returned when a size is not offered for a product.
	ErrInvalidSize = errors.New("size not offered for product")
)

// Product represents a catalog item available for purchase. Price is in whole
// currency units.
type Product struct {
	ID     int
	Name   string
	Price  int
	Image  string
	Type   string
	Gender string
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int) (*Product, error)
}
