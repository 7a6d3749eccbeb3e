package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probeBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func passing() CheckFunc {
	return func(context.Context) error { return nil }
}

func failing(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

func serve(t *testing.T, handler http.HandlerFunc) (int, probeBody) {
	t.Helper()
	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body probeBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

// runChecks runs every registered check n times.
func runChecks(h *Health, n int) {
	for range n {
		for _, c := range h.checks {
			c.run(context.Background())
		}
	}
}

func TestLiveEndpoint_AllPassing(t *testing.T) {
	h := New()
	h.Add(Liveness, "goroutines", passing())
	h.Add(Liveness, "gc", passing())

	code, body := serve(t, h.LiveEndpoint)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
	assert.Empty(t, body.Checks)
}

func TestLiveEndpoint_FailingCheck(t *testing.T) {
	h := New()
	h.Add(Liveness, "goroutines", failing("too many"))

	runChecks(h, 3)

	code, body := serve(t, h.LiveEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, map[string]string{"goroutines": "too many"}, body.Checks)
}

func TestLiveEndpoint_FailureBelowThreshold(t *testing.T) {
	h := New()
	h.Add(Liveness, "flaky", failing("temporary"))

	runChecks(h, 2)

	code, _ := serve(t, h.LiveEndpoint)
	assert.Equal(t, http.StatusOK, code)
}

func TestReadyEndpoint(t *testing.T) {
	h := New()
	h.Add(Readiness, "partner", passing())
	h.Add(Liveness, "dead", failing("x"), WithThresholds(1, 1))
	runChecks(h, 1)

	code, body := serve(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, map[string]string{"_readiness": "service is not ready"}, body.Checks)

	h.SetReady(true)
	code, body = serve(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusOK, code, "liveness failures do not affect readiness")
	assert.Equal(t, "ok", body.Status)

	h.SetReady(false)
	code, _ = serve(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestReadyEndpoint_ImmediateThreshold(t *testing.T) {
	errMissing := errors.New("partner API key is not configured")
	configured := false

	h := New()
	h.SetReady(true)
	h.Add(Readiness, "gelato-credential",
		ConfiguredCheck(func() bool { return configured }, errMissing),
		WithThresholds(1, 1),
	)

	runChecks(h, 1)
	code, body := serve(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "partner API key is not configured", body.Checks["gelato-credential"])

	configured = true
	runChecks(h, 1)
	code, _ = serve(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusOK, code)
}

func TestCheckRecovery(t *testing.T) {
	var (
		mu   sync.Mutex
		fail = true
	)
	h := New()
	h.Add(Liveness, "toggle", func(context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return errors.New("down")
		}
		return nil
	})

	runChecks(h, 3)
	assert.False(t, h.Live().OK())

	mu.Lock()
	fail = false
	mu.Unlock()
	runChecks(h, 1)
	assert.True(t, h.Live().OK())
}

func TestCheckTimeout(t *testing.T) {
	h := New()
	h.Add(Liveness, "slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, WithTimeout(10*time.Millisecond), WithThresholds(1, 1))

	runChecks(h, 1)
	assert.Equal(t, context.DeadlineExceeded.Error(), h.Live().Failures["slow"])
}

func TestRun(t *testing.T) {
	h := New()
	h.Add(Liveness, "dead", failing("x"), WithThresholds(1, 1))
	h.Add(Readiness, "ok", passing())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx, 5*time.Millisecond) }()

	require.Eventually(t, func() bool { return !h.Live().OK() }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestConcurrentAccess(t *testing.T) {
	h := New()
	h.SetReady(true)
	h.Add(Readiness, "ok", passing())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = h.Run(ctx, time.Millisecond) }()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				w := httptest.NewRecorder()
				h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
				assert.Equal(t, http.StatusOK, w.Code)
			}
		}()
	}
	wg.Wait()
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(100000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}

func TestGCMaxPauseCheck(t *testing.T) {
	assert.NoError(t, GCMaxPauseCheck(time.Hour)(context.Background()))
}
