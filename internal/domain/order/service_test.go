package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/storage"
)

func newTestService(t *testing.T, slot storage.Slot, opts ...ServiceOption) *Service {
	t.Helper()
	opts = append([]ServiceOption{WithClock(fixedClock)}, opts...)
	return NewService(newTestStore(t, slot), zap.NewNop(), opts...)
}

func TestService_PlaceOrder(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemory())

	lines := []cart.Line{pocketCargo(1)}
	o, err := svc.PlaceOrder(ctx, lines, validShipping())
	require.NoError(t, err)

	assert.Equal(t, "ORD-000001", o.ID)
	assert.Equal(t, 1250, o.Total)
	assert.Equal(t, "10/19/2026, 2:04:05 PM", o.Date)
	assert.Equal(t, validShipping(), o.ShippingInfo)
	assert.Equal(t, lines, o.Items)

	lines[0].Quantity = 9
	assert.Equal(t, 1, o.Items[0].Quantity, "items are snapshotted")

	stored := svc.Store().List(ctx)
	require.Len(t, stored, 1)
	assert.Equal(t, *o, stored[0])
}

func TestService_PlaceOrderTotals(t *testing.T) {
	ctx := context.Background()
	lines := []cart.Line{
		pocketCargo(2),
		{ProductID: 4, Name: "Basic Tee", Price: 450, Size: "L", Quantity: 3},
	}

	o, err := newTestService(t, storage.NewMemory()).PlaceOrder(ctx, lines, validShipping())
	require.NoError(t, err)
	assert.Equal(t, 2400+1350+ShippingFee, o.Total)

	o, err = newTestService(t, storage.NewMemory(), WithShippingFee(0)).PlaceOrder(ctx, lines, validShipping())
	require.NoError(t, err)
	assert.Equal(t, 3750, o.Total)
}

func TestService_PlaceOrderSequentialIDs(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemory())
	lines := []cart.Line{pocketCargo(1)}

	first, err := svc.PlaceOrder(ctx, lines, validShipping())
	require.NoError(t, err)
	second, err := svc.PlaceOrder(ctx, lines, validShipping())
	require.NoError(t, err)
	require.Equal(t, "ORD-000001", first.ID)
	require.Equal(t, "ORD-000002", second.ID)

	_, err = svc.Store().Remove(ctx, first.ID)
	require.NoError(t, err)

	// Count-based numbering reuses the number of the surviving order.
	third, err := svc.PlaceOrder(ctx, lines, validShipping())
	require.NoError(t, err)
	require.Equal(t, "ORD-000002", third.ID)
}

func TestService_PlaceOrderRejects(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		lines []cart.Line
		info  func(*ShippingInfo)
		check func(t *testing.T, err error)
	}{
		{
			name:  "empty cart",
			lines: nil,
			check: func(t *testing.T, err error) { require.ErrorIs(t, err, ErrEmptyCart) },
		},
		{
			name:  "zero quantity",
			lines: []cart.Line{pocketCargo(0)},
			check: func(t *testing.T, err error) {
				var qerr *InvalidQuantityError
				require.True(t, errors.As(err, &qerr))
				require.Equal(t, 1, qerr.ProductID)
			},
		},
		{
			name:  "short phone number",
			lines: []cart.Line{pocketCargo(1)},
			info:  func(s *ShippingInfo) { s.PhoneNumber = "123" },
			check: func(t *testing.T, err error) {
				var verr *ValidationError
				require.True(t, errors.As(err, &verr))
				require.Equal(t, PhoneMessage, verr.Fields["phoneNumber"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := storage.NewMemory()
			svc := newTestService(t, slot)

			info := validShipping()
			if tt.info != nil {
				tt.info(&info)
			}
			o, err := svc.PlaceOrder(ctx, tt.lines, info)
			require.Nil(t, o)
			tt.check(t, err)
			require.Empty(t, svc.Store().List(ctx))
		})
	}
}

func TestService_PlaceOrderNotPersisted(t *testing.T) {
	ctx := context.Background()
	slot := &flakySlot{Memory: storage.NewMemory(), failSets: 2}
	svc := newTestService(t, slot)

	o, err := svc.PlaceOrder(ctx, []cart.Line{pocketCargo(1)}, validShipping())
	require.ErrorIs(t, err, ErrNotPersisted)
	require.NotNil(t, o)
	require.Equal(t, "ORD-000001", o.ID)
	require.Equal(t, 1250, o.Total)
	require.Empty(t, svc.Store().List(ctx))
}

func TestService_PlaceOrderStorageUnreadable(t *testing.T) {
	ctx := context.Background()
	slot := &unreadableSlot{Memory: storage.NewMemory(), failGets: []int{1}}
	svc := newTestService(t, slot)

	o, err := svc.PlaceOrder(ctx, []cart.Line{pocketCargo(1)}, validShipping())
	require.ErrorIs(t, err, errRead)
	require.NotErrorIs(t, err, ErrNotPersisted)
	require.Nil(t, o, "no order is confirmed without an identifier")
	require.Zero(t, slot.sets)
}
