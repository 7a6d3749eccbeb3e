// Package app wires the deadgravel server together.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ironsignalworks/deadgravel/internal/gelato"
	"github.com/ironsignalworks/deadgravel/internal/handler"
	"github.com/ironsignalworks/deadgravel/internal/order"
	"github.com/ironsignalworks/deadgravel/internal/site"
	"github.com/ironsignalworks/deadgravel/pkg/health"
	"github.com/ironsignalworks/deadgravel/pkg/httpmiddleware"
)

const serviceName = "deadgravel"

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m httpmiddleware.TelemetryProvider, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	healthSvc := health.New()
	root, err := newRouter(ctx, m, cfg, healthSvc)
	if err != nil {
		return err
	}

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       10 * time.Second,
		// Order creation waits for the partner.
		WriteTimeout:   cfg.Gelato.Timeout + 5*time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
		Addr:           cfg.Addr,
		Handler:        root,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return healthSvc.Run(gctx, 10*time.Second)
	})
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})

	healthSvc.SetReady(true)
	return g.Wait()
}

// newRouter builds the instrumented HTTP handler and registers health checks
// on healthSvc.
func newRouter(ctx context.Context, m httpmiddleware.TelemetryProvider, cfg *Config, healthSvc *health.Health) (http.Handler, error) {
	lg := zctx.From(ctx)

	partner := gelato.NewClient(gelato.Config{
		BaseURL: cfg.Gelato.BaseURL,
		APIKey:  cfg.Gelato.APIKey,
		Timeout: cfg.Gelato.Timeout,
	},
		gelato.WithTracerProvider(m.TracerProvider()),
		gelato.WithMeterProvider(m.MeterProvider()),
	)
	if !partner.Configured() {
		lg.Warn("Gelato API key is not configured; order creation will fail until it is set")
	}

	orderService, err := order.NewService(partner,
		order.Config{Channel: cfg.Gelato.Channel},
		m.MeterProvider().Meter(serviceName),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create order service")
	}

	healthSvc.Add(health.Liveness, "goroutines", health.GoroutineCountCheck(10000))
	healthSvc.Add(health.Liveness, "gc-pause", health.GCMaxPauseCheck(time.Second))
	healthSvc.Add(health.Readiness, "gelato-credential",
		health.ConfiguredCheck(partner.Configured, order.ErrMissingCredential),
		health.WithThresholds(1, 1),
	)

	routes := site.NewRoutes(cfg.SiteURL)
	hcfg := handler.HandlerConfig{
		ImageBaseURL: cfg.ImageBaseURL,
		MaxBodySize:  cfg.MaxBodySize,
		OrderRateLimit: httpmiddleware.RateLimitConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
		},
	}
	if cfg.StaticDir != "" {
		shell, err := site.NewShell(cfg.StaticDir, routes)
		if err != nil {
			return nil, errors.Wrap(err, "create site shell")
		}
		hcfg.Shell = shell
	}
	h := handler.NewHandler(hcfg, orderService, routes, site.DefaultCatalog())

	r := chi.NewRouter()
	r.Get("/livez", healthSvc.LiveEndpoint)
	r.Get("/readyz", healthSvc.ReadyEndpoint)
	h.Register(ctx, r)

	routeFinder := httpmiddleware.MakeRouteFinder(r)
	return httpmiddleware.Wrap(r,
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(lg),
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins:     cfg.CORS.Origins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			ExposeHeaders:    []string{httpmiddleware.RequestIDHeader},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
		httpmiddleware.Instrument(serviceName, routeFinder, m),
		httpmiddleware.LogRequests(routeFinder),
		httpmiddleware.Labeler(routeFinder),
	), nil
}
