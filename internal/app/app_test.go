package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap/zaptest"

	"github.com/ironsignalworks/deadgravel/pkg/health"
)

type noopTelemetry struct{}

func (noopTelemetry) TracerProvider() trace.TracerProvider { return tracenoop.NewTracerProvider() }
func (noopTelemetry) MeterProvider() metric.MeterProvider  { return metricnoop.NewMeterProvider() }

func testConfig(t *testing.T, apiKey string) *Config {
	t.Helper()
	t.Setenv("PORT", "")
	t.Setenv("GELATO_API_KEY", apiKey)
	return testLoad(t)
}

func newTestRouter(t *testing.T, cfg *Config) (http.Handler, *health.Health) {
	t.Helper()
	ctx := zctx.Base(context.Background(), zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(ctx)
	t.Cleanup(cancel)

	h := health.New()
	r, err := newRouter(ctx, noopTelemetry{}, cfg, h)
	require.NoError(t, err)
	return r, h
}

// runHealthOnce runs the registered checks once.
func runHealthOnce(t *testing.T, h *health.Health) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, h.Run(ctx, time.Hour))
}

func get(h http.Handler, path string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouter_Probes(t *testing.T) {
	r, h := newTestRouter(t, testConfig(t, "key"))
	runHealthOnce(t, h)

	assert.Equal(t, http.StatusOK, get(r, "/livez", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(r, "/readyz", nil).Code, "not ready until marked")

	h.SetReady(true)
	assert.Equal(t, http.StatusOK, get(r, "/readyz", nil).Code)
}

func TestRouter_ReadinessWithoutCredential(t *testing.T) {
	r, h := newTestRouter(t, testConfig(t, ""))
	h.SetReady(true)
	runHealthOnce(t, h)

	w := get(r, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "gelato-credential")

	assert.Equal(t, http.StatusOK, get(r, "/livez", nil).Code)
	assert.Equal(t, http.StatusOK, get(r, "/health", nil).Code)
}

func TestRouter_Middleware(t *testing.T) {
	r, _ := newTestRouter(t, testConfig(t, "key"))

	w := get(r, "/", map[string]string{"Origin": "http://localhost:5173"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK /", w.Body.String())
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_CreateOrderUnconfigured(t *testing.T) {
	r, _ := newTestRouter(t, testConfig(t, ""))

	req := httptest.NewRequest(http.MethodPost, "/api/gelato/create-order", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Missing GELATO_API_KEY in environment"}`, w.Body.String())
}

func TestRouter_StaticDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"),
		[]byte(`<html><head><title>x</title></head><body></body></html>`), 0o600))

	cfg := testConfig(t, "key")
	cfg.StaticDir = dir
	r, _ := newTestRouter(t, cfg)

	w := get(r, "/merch", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<title>Dead Gravel | Merch</title>")

	cfg.StaticDir = filepath.Join(dir, "missing")
	_, err := newRouter(context.Background(), noopTelemetry{}, cfg, health.New())
	require.Error(t, err)
}
