package product

import (
	"cmp"
	"slices"
	"strings"
)

// MaxPrice is the upper bound of the default price filter.
const MaxPrice = 2400

// Types lists the product categories offered by the filter sidebar.
var Types = []string{"T-Shirt", "Shorts", "Pants", "Jackets", "Shoes", "Sweater"}

// Genders lists the gender categories offered by the filter sidebar.
var Genders = []string{"Male", "Female", "Unisex"}

// Filter selects products for the listing. Empty Types or Genders match
// every product.
type Filter struct {
	MinPrice int
	MaxPrice int
	Types    []string
	Genders  []string
	// Query is matched case-insensitively against the product name.
	Query string
}

// DefaultFilter returns a Filter matching the whole reference catalog.
func DefaultFilter() Filter {
	return Filter{MinPrice: 0, MaxPrice: MaxPrice}
}

// Match reports whether p passes every criterion of f.
func (f Filter) Match(p Product) bool {
	if p.Price < f.MinPrice || p.Price > f.MaxPrice {
		return false
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, p.Type) {
		return false
	}
	if len(f.Genders) > 0 && !slices.Contains(f.Genders, p.Gender) {
		return false
	}
	return strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Query))
}

// Sort orders a product listing.
type Sort string

const (
	SortNameAsc   Sort = "a-z"
	SortNameDesc  Sort = "z-a"
	SortPriceAsc  Sort = "price-low-high"
	SortPriceDesc Sort = "price-high-low"
)

// ParseSort maps a sort option to a Sort. Unknown values fall back to
// SortNameAsc.
func ParseSort(s string) Sort {
	switch v := Sort(s); v {
	case SortNameAsc, SortNameDesc, SortPriceAsc, SortPriceDesc:
		return v
	default:
		return SortNameAsc
	}
}

// Select returns the products matching f, ordered by s. The input slice is
// not modified.
func Select(products []Product, f Filter, s Sort) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}

	switch ParseSort(string(s)) {
	case SortNameDesc:
		slices.SortStableFunc(out, func(a, b Product) int { return compareNames(b, a) })
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b Product) int { return cmp.Compare(a.Price, b.Price) })
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b Product) int { return cmp.Compare(b.Price, a.Price) })
	default:
		slices.SortStableFunc(out, compareNames)
	}
	return out
}

// compareNames orders names case-insensitively, falling back to a byte
// comparison so the order is total.
func compareNames(a, b Product) int {
	if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	return strings.Compare(a.Name, b.Name)
}
