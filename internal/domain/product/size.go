package product

import (
	"slices"
	"strings"
)

var (
	apparelSizes = []string{"XS", "S", "M", "L", "XL", "2XL", "3XL"}
	waistSizes   = []string{"32", "34", "36", "38", "40", "42", "44", "46", "48", "50", "52", "54", "56", "58"}
	shoeSizes    = []string{"35", "36", "37", "38", "39", "40", "41", "42", "43", "44", "45", "46", "47"}
	basicSizes   = []string{"S", "M", "L", "XL"}
)

// SizeOptions returns the sizes offered for a product type. The match is
// case-insensitive; unknown types get a basic S to XL range.
func SizeOptions(productType string) []string {
	switch strings.ToLower(productType) {
	case "t-shirt", "jackets", "sweater":
		return slices.Clone(apparelSizes)
	case "shorts", "pants":
		return slices.Clone(waistSizes)
	case "shoes":
		return slices.Clone(shoeSizes)
	default:
		return slices.Clone(basicSizes)
	}
}

// ValidSize reports whether size is offered for p.
func ValidSize(p Product, size string) bool {
	return size != "" && slices.Contains(SizeOptions(p.Type), size)
}
