package product

import (
	"context"
	"slices"
)

var _ Repository = (*Catalog)(nil)

// Catalog is a read-only, in-process Repository.
type Catalog struct {
	products []Product
	byID     map[int]int
}

// NewCatalog returns a Catalog over a copy of products.
func NewCatalog(products []Product) *Catalog {
	c := &Catalog{
		products: slices.Clone(products),
		byID:     make(map[int]int, len(products)),
	}
	for i, p := range c.products {
		c.byID[p.ID] = i
	}
	return c
}

// DefaultCatalog returns the storefront's reference catalog.
func DefaultCatalog() *Catalog {
	return NewCatalog(reference)
}

// List returns all products in catalog order.
func (c *Catalog) List(_ context.Context) ([]Product, error) {
	return slices.Clone(c.products), nil
}

// GetByID returns a single product by its identifier.
func (c *Catalog) GetByID(_ context.Context, id int) (*Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	p := c.products[i]
	return &p, nil
}

var reference = []Product{
	{ID: 1, Name: "Pocket Cargo", Price: 1200, Type: "Pants", Gender: "Male",
		Image: "https://gonative.eg/cdn/shop/files/CCxGN-46_181d55b3-80ff-4775-812d-f69eb46cb89e.jpg?v=1733926115&width=1000"},
	{ID: 2, Name: "Knitted Pants", Price: 800, Type: "Pants", Gender: "Male",
		Image: "https://gonative.eg/cdn/shop/files/CCxGN-234.jpg?v=1742565793&width=300"},
	{ID: 3, Name: "Knitted Quarter-Zipper Sweater", Price: 1500, Type: "Sweater", Gender: "Male",
		Image: "https://gonative.eg/cdn/shop/files/CCxGN-234_f5c3df22-d0a9-4c13-b5db-ab412ab183fc.jpg?v=1733920256&width=300"},
	{ID: 4, Name: "Twenty Seven Sweater", Price: 1800, Type: "Sweater", Gender: "Male",
		Image: "https://gonative.eg/cdn/shop/files/CCxGN-42.jpg?v=1733925822&width=300"},
	{ID: 5, Name: "Classic T-Shirt", Price: 400, Type: "T-Shirt", Gender: "Unisex",
		Image: "https://swettailor.com/cdn/shop/products/ST_0004s_0001_BLACKSOFTESTTEE-FRONT.jpg?v=1619189065"},
	{ID: 6, Name: "Sport Shorts", Price: 600, Type: "Shorts", Gender: "Male",
		Image: "https://eg.jumia.is/unsafe/fit-in/500x500/filters:fill(white)/product/62/572742/1.jpg?3408"},
	{ID: 7, Name: "Running Shoes", Price: 2400, Type: "Shoes", Gender: "Male",
		Image: "https://runkeeper.com/cms/wp-content/uploads/sites/4/2021/04/SS23_GEL-CUMULUS-25_Highlight_CHIASI0016_SH09_03_FINAL.jpg"},
	{ID: 8, Name: "Denim Jacket", Price: 2000, Type: "Jackets", Gender: "Female",
		Image: "https://gonative.eg/cdn/shop/files/CCxEdited-81.jpg?v=1732025262&width=800"},
	{ID: 9, Name: "V-Neck T-Shirt", Price: 450, Type: "T-Shirt", Gender: "Unisex",
		Image: "https://m.media-amazon.com/images/I/71Qxh4rULYL.AC_SL1500.jpg"},
	{ID: 10, Name: "Cargo Shorts", Price: 700, Type: "Shorts", Gender: "Male",
		Image: "https://xcdn.next.co.uk/common/items/default/default/itemimages/3_4Ratio/product/lge/M74181s.jpg?im=Resize,width=750"},
	{ID: 11, Name: "Canvas Sneakers", Price: 1200, Type: "Shoes", Gender: "Unisex",
		Image: "https://m.media-amazon.com/images/I/41+A+aTE7-L.AC_SY580.jpg"},
	{ID: 12, Name: "Bomber Jacket", Price: 2200, Type: "Jackets", Gender: "Female",
		Image: "https://gonative.eg/cdn/shop/files/CCxGN-225_dc204ab2-f90c-4918-acac-df7a0d5aafa9.jpg?v=1740403471&width=800"},
}
