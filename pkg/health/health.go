// Package health implements liveness and readiness probes.
//
// Checks run periodically in the background. A check turns unhealthy after a
// number of consecutive failures and healthy again after a number of
// consecutive successes, so a single slow probe does not flap the endpoint.
package health

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
	"golang.org/x/sync/errgroup"
)

// Kind selects the probe a check contributes to.
type Kind uint8

const (
	// Liveness checks report whether the process should be restarted.
	Liveness Kind = iota
	// Readiness checks report whether the process should receive traffic.
	Readiness
)

// CheckFunc returns nil when the checked component is healthy.
type CheckFunc func(ctx context.Context) error

// CheckOption configures a check.
type CheckOption func(*check)

// WithTimeout bounds a single check run. Defaults to one second.
func WithTimeout(d time.Duration) CheckOption {
	return func(c *check) { c.timeout = d }
}

// WithThresholds sets how many consecutive failures mark a check unhealthy
// and how many consecutive successes mark it healthy again. Defaults to 3
// and 1.
func WithThresholds(failures, successes int) CheckOption {
	return func(c *check) {
		c.failAfter = max(failures, 1)
		c.recoverAfter = max(successes, 1)
	}
}

// check is run by a single goroutine; only healthy and lastErr are read
// concurrently.
type check struct {
	name         string
	kind         Kind
	fn           CheckFunc
	timeout      time.Duration
	failAfter    int
	recoverAfter int

	healthy atomic.Bool
	lastErr atomic.Pointer[string]

	fails int
	oks   int
}

func (c *check) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.fn(ctx); err != nil {
		msg := err.Error()
		c.lastErr.Store(&msg)
		c.oks = 0
		c.fails++
		if c.fails >= c.failAfter {
			c.healthy.Store(false)
		}
		return
	}
	c.lastErr.Store(nil)
	c.fails = 0
	c.oks++
	if c.oks >= c.recoverAfter {
		c.healthy.Store(true)
	}
}

func (c *check) failure() string {
	if msg := c.lastErr.Load(); msg != nil {
		return *msg
	}
	return "check is unhealthy"
}

// Health is a registry of probe checks. A new Health is not ready until
// SetReady(true) is called.
type Health struct {
	ready atomic.Bool

	mu     sync.RWMutex
	checks []*check
}

// New creates an empty Health.
func New() *Health {
	return &Health{}
}

// Add registers a check. Checks start healthy.
func (h *Health) Add(kind Kind, name string, fn CheckFunc, opts ...CheckOption) {
	c := &check{
		name:         name,
		kind:         kind,
		fn:           fn,
		timeout:      time.Second,
		failAfter:    3,
		recoverAfter: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.healthy.Store(true)

	h.mu.Lock()
	h.checks = append(h.checks, c)
	h.mu.Unlock()
}

func (h *Health) snapshot(kind Kind) []*check {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.DeleteFunc(slices.Clone(h.checks), func(c *check) bool {
		return c.kind != kind
	})
}

// Run executes every registered check immediately and then at each interval
// until ctx is done.
func (h *Health) Run(ctx context.Context, interval time.Duration) error {
	h.mu.RLock()
	checks := slices.Clone(h.checks)
	h.mu.RUnlock()

	g, ctx := errgroup.WithContext(ctx)
	for _, c := range checks {
		g.Go(func() error {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				c.run(ctx)
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		})
	}
	return g.Wait()
}

// SetReady sets the manual readiness flag.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// Report is the state of one probe.
type Report struct {
	// Failures maps unhealthy check names to their last error.
	Failures map[string]string
}

// OK reports whether the probe passes.
func (r Report) OK() bool {
	return len(r.Failures) == 0
}

// Encode writes r as {"status":"ok"} or {"status":"unhealthy","checks":{...}}.
func (r Report) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("status")
	if r.OK() {
		e.Str("ok")
		e.ObjEnd()
		return
	}
	e.Str("unhealthy")
	e.FieldStart("checks")
	e.ObjStart()
	names := make([]string, 0, len(r.Failures))
	for name := range r.Failures {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		e.FieldStart(name)
		e.Str(r.Failures[name])
	}
	e.ObjEnd()
	e.ObjEnd()
}

func (h *Health) report(kind Kind) Report {
	r := Report{Failures: map[string]string{}}
	for _, c := range h.snapshot(kind) {
		if !c.healthy.Load() {
			r.Failures[c.name] = c.failure()
		}
	}
	return r
}

// Live returns the liveness report.
func (h *Health) Live() Report {
	return h.report(Liveness)
}

// Ready returns the readiness report. It fails while the manual flag is off.
func (h *Health) Ready() Report {
	r := h.report(Readiness)
	if !h.ready.Load() {
		r.Failures["_readiness"] = "service is not ready"
	}
	return r
}

// LiveEndpoint serves the liveness probe.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeReport(w, h.Live())
}

// ReadyEndpoint serves the readiness probe.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeReport(w, h.Ready())
}

func writeReport(w http.ResponseWriter, r Report) {
	var e jx.Encoder
	r.Encode(&e)

	status := http.StatusOK
	if !r.OK() {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
