package app

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/handler"
	"github.com/xenking/storefront/internal/storage"
	"github.com/xenking/storefront/pkg/health"
	"github.com/xenking/storefront/pkg/httpmiddleware"
)

const instrumentationName = "github.com/xenking/storefront"

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("id_policy", cfg.Orders.IDPolicy),
	)

	backend, err := OpenBackend(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			lg.Error("Close storage", zap.Error(err))
		}
	}()

	h, healthSvc, err := newHandler(ctx, lg, cfg, backend, m.TracerProvider(), m.MeterProvider())
	if err != nil {
		return err
	}
	healthSvc.Start(ctx, 10*time.Second)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		BaseContext: func(net.Listener) context.Context {
			return zctx.Base(context.Background(), lg)
		},
		Handler: h,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		healthSvc.SetReady(true)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	// Graceful shutdown: wait for cancellation, drain, then stop.
	g.Go(func() error {
		<-gctx.Done()
		healthSvc.SetReady(false)
		if ctx.Err() != nil {
			lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
			time.Sleep(cfg.Graceful.ReadinessDelay)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		return nil
	})
	return g.Wait()
}

// newHandler builds the domain services over backend and returns the fully
// wrapped HTTP handler together with the health service it reports to. The
// health checks are registered but not started.
func newHandler(
	ctx context.Context,
	lg *zap.Logger,
	cfg *Config,
	backend storage.Backend,
	tp trace.TracerProvider,
	mp metric.MeterProvider,
) (http.Handler, *health.Health, error) {
	policy, err := order.ParseIDPolicy(cfg.Orders.IDPolicy)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parse id policy")
	}
	meter := mp.Meter(instrumentationName)

	// Domain services.
	store := order.NewStore(backend, lg.Named("orders"),
		order.WithKey(cfg.Storage.Key),
		order.WithIDPolicy(policy),
		order.WithStoreMeter(meter),
	)
	orderService := order.NewService(store, lg.Named("checkout"),
		order.WithShippingFee(cfg.Orders.ShippingFee),
		order.WithTracer(tp.Tracer(instrumentationName)),
		order.WithServiceMeter(meter),
	)

	// Health check service.
	healthSvc := health.New()
	healthSvc.Add(health.Readiness, "storage", health.PingCheck(cfg.Storage.Backend, backend),
		health.Timeout(5*time.Second),
	)
	healthSvc.Add(health.Liveness, "goroutines", health.GoroutineCountCheck(10000))

	// Mux: health endpoints + API routes on one server.
	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	handler.New(
		handler.Config{AdminKey: cfg.AdminKey},
		product.DefaultCatalog(),
		cart.NewRegistry(),
		orderService,
	).Register(mux)
	if cfg.AdminKey == "" {
		lg.Warn("Admin key is empty, admin routes are open")
	}

	routeFinder := httpmiddleware.MakeRouteFinder(mux)
	return httpmiddleware.Wrap(mux,
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			Origins:          cfg.CORS.Origins,
			Headers:          []string{"Content-Type", handler.AdminKeyHeader, httpmiddleware.RequestIDHeader},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
		httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
		}),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(lg),
		httpmiddleware.Instrument("storefront", routeFinder, tp, mp),
		httpmiddleware.LogRequests(routeFinder),
	), healthSvc, nil
}
