package order

import (
	"context"
	"slices"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/cart"
)

// Service encapsulates checkout: it turns cart lines and shipping info into a
// stored order.
type Service struct {
	store  *Store
	lg     *zap.Logger
	fee    int
	now    func() time.Time
	tracer trace.Tracer
	placed metric.Int64Counter
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithShippingFee overrides ShippingFee.
func WithShippingFee(fee int) ServiceOption {
	return func(s *Service) { s.fee = fee }
}

// WithClock sets the time source for order dates.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithTracer traces PlaceOrder with t.
func WithTracer(t trace.Tracer) ServiceOption {
	return func(s *Service) { s.tracer = t }
}

// WithServiceMeter counts placed orders on m.
func WithServiceMeter(m metric.Meter) ServiceOption {
	return func(s *Service) {
		if c, err := m.Int64Counter("storefront.orders.placed",
			metric.WithDescription("Orders placed at checkout"),
		); err == nil {
			s.placed = c
		}
	}
}

// NewService creates an order Service backed by store.
func NewService(store *Store, lg *zap.Logger, opts ...ServiceOption) *Service {
	placed, _ := noop.NewMeterProvider().Meter("").Int64Counter("placed")
	s := &Service{
		store:  store,
		lg:     lg,
		fee:    ShippingFee,
		now:    time.Now,
		tracer: nooptrace.NewTracerProvider().Tracer(""),
		placed: placed,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ShippingFee returns the fee added to every order.
func (s *Service) ShippingFee() int { return s.fee }

// Store returns the underlying order store.
func (s *Service) Store() *Store { return s.store }

// PlaceOrder validates lines and info, snapshots them into an order with the
// next identifier and total = subtotal + shipping fee, and saves it.
//
// When saving fails the order is still returned together with an error
// wrapping ErrNotPersisted, so the caller can confirm the checkout and warn
// that the order was not recorded.
func (s *Service) PlaceOrder(ctx context.Context, lines []cart.Line, info ShippingInfo) (_ *Order, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.PlaceOrder",
		trace.WithAttributes(attribute.Int("order.lines", len(lines))),
	)
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: l.ProductID}
		}
	}
	if err := ValidateShipping(info); err != nil {
		return nil, err
	}

	items := slices.Clone(lines)
	o := Order{
		Items:        items,
		Total:        cart.Subtotal(items) + s.fee,
		ShippingInfo: info,
		Date:         FormatDate(s.now()),
	}

	created, err := s.store.Create(ctx, o)
	if err != nil && !errors.Is(err, ErrNotPersisted) {
		return nil, errors.Wrap(err, "create order")
	}

	span.SetAttributes(
		attribute.String("order.id", created.ID),
		attribute.Int("order.total", created.Total),
	)
	s.placed.Add(ctx, 1, metric.WithAttributes(attribute.Bool("persisted", err == nil)))

	if err != nil {
		return &created, err
	}
	s.lg.Info("Order placed",
		zap.String("id", created.ID),
		zap.Int("total", created.Total),
		zap.Int("items", len(created.Items)),
	)
	return &created, nil
}
