// Package gelato is a client for the Gelato order API.
package gelato

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ironsignalworks/deadgravel/internal/order"
)

const (
	// DefaultBaseURL is the production order API.
	DefaultBaseURL = "https://order.gelatoapis.com"
	// DefaultTimeout bounds a whole create-order exchange.
	DefaultTimeout = 30 * time.Second

	createOrderPath = "/v4/orders"
	apiKeyHeader    = "X-API-KEY"

	maxResponseSize = 8 << 20
)

// Compile-time check ensuring Client satisfies order.Partner.
var _ order.Partner = (*Client)(nil)

// Config holds the connection settings for the order API.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type options struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// Option configures a Client.
type Option func(*options)

// WithTracerProvider sets the tracer provider for outgoing spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithMeterProvider sets the meter provider for client metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// Client calls the order API. It never retries.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a Client.
func NewClient(cfg Config, opts ...Option) *Client {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var otelOpts []otelhttp.Option
	if o.tracerProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithTracerProvider(o.tracerProvider))
	}
	if o.meterProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithMeterProvider(o.meterProvider))
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport, otelOpts...),
		},
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// CreateOrder posts req to the order endpoint. A non-2xx status yields
// *order.UpstreamError carrying the raw body; a 2xx body that is not JSON is
// an error.
func (c *Client) CreateOrder(ctx context.Context, req *order.PartnerOrderRequest) (jx.Raw, error) {
	var e jx.Encoder
	req.Encode(&e)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+createOrderPath, bytes.NewReader(e.Bytes()))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "send request")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &order.UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}
	if !jx.Valid(body) {
		return nil, errors.Errorf("decode response: invalid JSON (status %d, %d bytes)", resp.StatusCode, len(body))
	}
	return jx.Raw(body), nil
}
