// Package health serves liveness and readiness probes.
//
// Every check runs on its own ticker. A check turns unhealthy after
// FailureThreshold consecutive failures and healthy again after
// SuccessThreshold consecutive successes, so a single slow ping does not flip
// the probe.
package health

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
)

// CheckFunc reports the health of one component; nil means healthy.
type CheckFunc func(ctx context.Context) error

// Kind selects the probe a check contributes to.
type Kind uint8

const (
	// Liveness checks gate /livez.
	Liveness Kind = iota
	// Readiness checks gate /readyz.
	Readiness
)

// Option configures a registered check.
type Option func(*check)

// Timeout bounds a single run of the check. Defaults to one second.
func Timeout(d time.Duration) Option {
	return func(c *check) { c.timeout = d }
}

// Thresholds sets how many consecutive failures mark the check unhealthy and
// how many consecutive successes mark it healthy again. Defaults to 3 and 1.
func Thresholds(failure, success int) Option {
	return func(c *check) {
		c.failureThreshold = max(failure, 1)
		c.successThreshold = max(success, 1)
	}
}

// check is one registered probe. run is only called from the check's own
// goroutine (or directly in tests), so the streak counters need no locking;
// healthy and lastErr are read by HTTP handlers.
type check struct {
	name             string
	fn               CheckFunc
	timeout          time.Duration
	failureThreshold int
	successThreshold int

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	fails int
	oks   int
}

func (c *check) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.fn(ctx)
	c.lastErr.Store(&err)

	if err != nil {
		c.oks = 0
		c.fails++
		if c.fails >= c.failureThreshold {
			c.healthy.Store(false)
		}
		return
	}
	c.fails = 0
	c.oks++
	if c.oks >= c.successThreshold {
		c.healthy.Store(true)
	}
}

func (c *check) failure() (string, bool) {
	if c.healthy.Load() {
		return "", false
	}
	if p := c.lastErr.Load(); p != nil && *p != nil {
		return (*p).Error(), true
	}
	return "check is unhealthy", true
}

// Health holds the registered checks and the manual readiness flag.
type Health struct {
	ready atomic.Bool

	mu     sync.RWMutex
	checks map[Kind][]*check
	cancel context.CancelFunc
}

// New creates a Health that is not ready until SetReady(true).
func New() *Health {
	return &Health{checks: make(map[Kind][]*check)}
}

// Add registers a check under kind. Checks start healthy.
func (h *Health) Add(kind Kind, name string, fn CheckFunc, opts ...Option) {
	c := &check{
		name:             name,
		fn:               fn,
		timeout:          time.Second,
		failureThreshold: 3,
		successThreshold: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.healthy.Store(true)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[kind] = append(h.checks[kind], c)
}

func (h *Health) snapshot(kind Kind) []*check {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.checks[kind])
}

// Start runs every registered check immediately and then once per interval
// until Stop or ctx cancellation.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	if h.cancel != nil {
		h.cancel()
	}
	h.cancel = cancel
	var all []*check
	for _, cs := range h.checks {
		all = append(all, cs...)
	}
	h.mu.Unlock()

	for _, c := range all {
		go loop(ctx, c, interval)
	}
}

func loop(ctx context.Context, c *check, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.run(ctx)
		}
	}
}

// Stop cancels the check goroutines. It is safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady sets the manual readiness flag. The server sets it once listening
// and clears it when shutdown begins.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the service is marked ready and every readiness
// check is passing.
func (h *Health) IsReady() bool {
	return h.ready.Load() && len(failures(h.snapshot(Readiness))) == 0
}

// LiveEndpoint serves /livez.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, failures(h.snapshot(Liveness)))
}

// ReadyEndpoint serves /readyz.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	failed := failures(h.snapshot(Readiness))
	if !h.ready.Load() {
		failed["_readiness"] = "service is not ready"
	}
	writeStatus(w, failed)
}

func failures(checks []*check) map[string]string {
	out := make(map[string]string)
	for _, c := range checks {
		if msg, failed := c.failure(); failed {
			out[c.name] = msg
		}
	}
	return out
}

// writeStatus responds {"status":"ok"} or 503 with
// {"status":"unhealthy","checks":{name: error}}.
func writeStatus(w http.ResponseWriter, failed map[string]string) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("status")

	status := http.StatusOK
	if len(failed) == 0 {
		e.Str("ok")
	} else {
		status = http.StatusServiceUnavailable
		e.Str("unhealthy")
		e.FieldStart("checks")
		e.ObjStart()
		names := make([]string, 0, len(failed))
		for name := range failed {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			e.FieldStart(name)
			e.Str(failed[name])
		}
		e.ObjEnd()
	}
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
