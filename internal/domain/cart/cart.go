// Package cart holds the shopping cart: a list of product lines with
// reducer-style mutations, and a registry hosting one cart per session.
package cart

import (
	"slices"

	"github.com/xenking/storefront/internal/domain/product"
)

// Line is one product in the cart. A cart holds at most one Line per
// ProductID; Size is fixed when the line is first added.
type Line struct {
	ProductID int
	Name      string
	Price     int
	Image     string
	Type      string
	Gender    string
	Size      string
	Quantity  int
}

// Total returns Price multiplied by Quantity.
func (l Line) Total() int {
	return l.Price * l.Quantity
}

// Cart is the in-memory cart of a single shopper. It is not safe for
// concurrent use; see Registry.
type Cart struct {
	lines []Line
	open  bool
}

// New returns an empty, closed cart.
func New() *Cart {
	return &Cart{}
}

// Add puts one unit of p into the cart. If a line for p already exists its
// quantity is incremented and size is ignored. Add opens the cart view.
func (c *Cart) Add(p product.Product, size string) {
	c.open = true

	if i := c.index(p.ID); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Type:      p.Type,
		Gender:    p.Gender,
		Size:      size,
		Quantity:  1,
	})
}

// UpdateQuantity sets the quantity of the line for productID, clamping
// negative values to zero. A zero quantity removes the line. Unknown ids are
// ignored.
func (c *Cart) UpdateQuantity(productID, quantity int) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	if quantity <= 0 {
		c.lines = slices.Delete(c.lines, i, i+1)
		return
	}
	c.lines[i].Quantity = quantity
}

// Remove drops the line for productID, if any.
func (c *Cart) Remove(productID int) {
	c.lines = slices.DeleteFunc(c.lines, func(l Line) bool {
		return l.ProductID == productID
	})
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	return slices.Clone(c.lines)
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Count returns the total number of units across all lines.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Subtotal returns the sum of price * quantity across all lines.
func (c *Cart) Subtotal() int {
	return Subtotal(c.lines)
}

// IsOpen reports whether the cart view is open.
func (c *Cart) IsOpen() bool { return c.open }

// Open marks the cart view open.
func (c *Cart) Open() { c.open = true }

// Close marks the cart view closed.
func (c *Cart) Close() { c.open = false }

func (c *Cart) index(productID int) int {
	return slices.IndexFunc(c.lines, func(l Line) bool {
		return l.ProductID == productID
	})
}

// Subtotal returns the sum of price * quantity across lines.
func Subtotal(lines []Line) int {
	sum := 0
	for _, l := range lines {
		sum += l.Total()
	}
	return sum
}
