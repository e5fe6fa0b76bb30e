package order

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

// FormatID renders the order identifier for sequence number n.
func FormatID(n int) string {
	return fmt.Sprintf("ORD-%06d", n)
}

// Number extracts the numeric part of an order identifier: the leading
// digits after the first '-'. It reports false when there are none.
func Number(id string) (int, bool) {
	parts := strings.Split(id, "-")
	if len(parts) < 2 {
		return 0, false
	}
	digits := parts[1]
	end := 0
	for end < len(digits) && digits[end] >= '0' && digits[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(digits[:end])
	if err != nil {
		return math.MaxInt, true
	}
	return n, true
}

// Label is the display form of an order identifier, e.g. "Order #000001".
func Label(id string) string {
	_, rest, ok := strings.Cut(id, "-")
	if !ok {
		return "Order #" + id
	}
	return "Order #" + rest
}

// SortByNumber sorts orders in place by the numeric part of their ID. Orders
// without one keep their relative order after all numbered ones.
func SortByNumber(orders []Order) {
	slices.SortStableFunc(orders, func(a, b Order) int {
		na, okA := Number(a.ID)
		nb, okB := Number(b.ID)
		switch {
		case okA && okB:
			return cmp.Compare(na, nb)
		case okA:
			return -1
		case okB:
			return 1
		default:
			return 0
		}
	})
}

// IDPolicy selects how new order identifiers are assigned.
type IDPolicy string

const (
	// IDPolicyCount numbers a new order as one more than the number of
	// stored orders. Removing an order makes the next ID reuse an existing
	// number.
	IDPolicyCount IDPolicy = "count"
	// IDPolicySequence keeps a persisted counter next to the collection, so
	// numbers are never reused.
	IDPolicySequence IDPolicy = "sequence"
)

// ParseIDPolicy parses s; the empty string selects IDPolicyCount.
func ParseIDPolicy(s string) (IDPolicy, error) {
	switch IDPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", IDPolicyCount:
		return IDPolicyCount, nil
	case IDPolicySequence:
		return IDPolicySequence, nil
	default:
		return "", errors.Errorf("unknown id policy %q", s)
	}
}
