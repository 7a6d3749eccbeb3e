// Package handler implements the HTTP endpoints of the deadgravel server.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-faster/jx"

	"github.com/ironsignalworks/deadgravel/internal/site"
	"github.com/ironsignalworks/deadgravel/pkg/httpmiddleware"
)

// DefaultMaxBodySize caps the create-order request body.
const DefaultMaxBodySize = 2 << 20

// OrderService creates partner orders from raw request payloads.
type OrderService interface {
	Configured() bool
	Create(ctx context.Context, payload []byte) (jx.Raw, error)
}

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	// ImageBaseURL is prepended to relative merch image paths. When empty,
	// paths are returned as stored in the catalogue.
	ImageBaseURL string
	// MaxBodySize caps the create-order body. Defaults to DefaultMaxBodySize.
	MaxBodySize int64
	// OrderRateLimit is applied to order creation only. A zero Max disables it.
	OrderRateLimit httpmiddleware.RateLimitConfig
	// Shell, when set, serves the built client on "/" and every other GET
	// path without an API route.
	Shell http.Handler
}

// Handler serves the public API.
type Handler struct {
	orders       OrderService
	routes       *site.Routes
	catalog      site.Catalog
	imageBaseURL string
	maxBodySize  int64
	rateLimit    httpmiddleware.RateLimitConfig
	shell        http.Handler
	now          func() time.Time
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg HandlerConfig,
	orders OrderService,
	routes *site.Routes,
	catalog site.Catalog,
) *Handler {
	maxBody := cfg.MaxBodySize
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}
	return &Handler{
		orders:       orders,
		routes:       routes,
		catalog:      catalog,
		imageBaseURL: cfg.ImageBaseURL,
		maxBodySize:  maxBody,
		rateLimit:    cfg.OrderRateLimit,
		shell:        cfg.Shell,
		now:          time.Now,
	}
}

// Register mounts the API routes on r.
func (h *Handler) Register(ctx context.Context, r chi.Router) {
	if h.shell != nil {
		r.Get("/", h.shell.ServeHTTP)
		r.Get("/*", h.shell.ServeHTTP)
	} else {
		r.Get("/", h.Root)
	}
	r.Get("/health", h.Health)
	r.Get("/api/site/meta", h.SiteMeta)
	r.Get("/api/merch", h.Merch)

	r.Group(func(r chi.Router) {
		r.Use(h.requireCredential)
		if h.rateLimit.Max > 0 {
			r.Use(httpmiddleware.RateLimit(ctx, h.rateLimit))
		}
		r.Use(middleware.RequestSize(h.maxBodySize))
		r.Post("/api/gelato/create-order", h.CreateOrder)
	})
}

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeMessage writes {"error": msg}.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("error", func(e *jx.Encoder) { e.Str(msg) })
	})
	writeJSON(w, status, &e)
}
