package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatID(t *testing.T) {
	assert.Equal(t, "ORD-000001", FormatID(1))
	assert.Equal(t, "ORD-123456", FormatID(123456))
	assert.Equal(t, "ORD-1234567", FormatID(1234567))
}

func TestNumber(t *testing.T) {
	tests := []struct {
		id     string
		want   int
		wantOK bool
	}{
		{id: "ORD-000042", want: 42, wantOK: true},
		{id: "ORD-7abc", want: 7, wantOK: true},
		{id: "ORD-000002-b", want: 2, wantOK: true},
		{id: "ORD-", wantOK: false},
		{id: "ORD-x1", wantOK: false},
		{id: "legacy", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			n, ok := Number(tt.id)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Order #000001", Label("ORD-000001"))
	assert.Equal(t, "Order #legacy", Label("legacy"))
}

func TestSortByNumber(t *testing.T) {
	orders := []Order{
		{ID: "ORD-000010"},
		{ID: "broken"},
		{ID: "ORD-000002", Total: 1},
		{ID: "ORD-x"},
		{ID: "ORD-000002", Total: 2},
		{ID: "ORD-000001"},
	}
	SortByNumber(orders)

	got := make([]string, 0, len(orders))
	for _, o := range orders {
		got = append(got, o.ID)
	}
	require.Equal(t, []string{"ORD-000001", "ORD-000002", "ORD-000002", "ORD-000010", "broken", "ORD-x"}, got)
	require.Equal(t, 1, orders[1].Total, "equal numbers keep their order")
}

func TestParseIDPolicy(t *testing.T) {
	for in, want := range map[string]IDPolicy{
		"":          IDPolicyCount,
		"count":     IDPolicyCount,
		" Sequence": IDPolicySequence,
	} {
		got, err := ParseIDPolicy(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParseIDPolicy("uuid")
	require.Error(t, err)
}
