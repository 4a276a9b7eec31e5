// Package pacing provides the shared call-pacing gate for the LLM provider.
// The provider's quota is global to the process, so every caller goes
// through one gate instance rather than pacing independently.
package pacing

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After waits for the duration to elapse and then sends the current time.
	After(d time.Duration) <-chan time.Time
}

// systemClock is the production clock.
type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Config holds pacing configuration for the shared endpoint.
type Config struct {
	// MinInterval is the minimum delay applied before every call.
	MinInterval time.Duration

	// RequestsPerSecond caps the sustained call rate on top of MinInterval.
	// Zero disables the cap.
	RequestsPerSecond float64

	// BurstSize is the maximum burst size for the rate cap.
	BurstSize int
}

// Gate serialises access to the shared provider endpoint. It combines a
// token bucket with a minimum inter-call spacing and a backoff window set
// when the provider signals throttling.
type Gate struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	clock   Clock

	minInterval time.Duration
	nextAt      time.Time
	retryAt     time.Time
}

// NewGate creates a pacing gate for one shared endpoint.
func NewGate(cfg Config) *Gate {
	limit := rate.Inf
	burst := cfg.BurstSize
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		if burst <= 0 {
			burst = 1
		}
	}

	return &Gate{
		limiter:     rate.NewLimiter(limit, burst),
		clock:       systemClock{},
		minInterval: cfg.MinInterval,
	}
}

// SetClock replaces the gate's clock. Tests use this to substitute a
// deterministic clock and verify exact wait counts.
func (g *Gate) SetClock(c Clock) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clock = c
}

// Wait blocks until the next call is allowed, then advances the shared
// pacing state so subsequent callers observe the same minimum spacing.
// It honours any backoff window recorded by RecordRateLimit first.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	now := g.clock.Now()
	until := g.nextAt
	if g.retryAt.After(until) {
		until = g.retryAt
	}
	wait := until.Sub(now)
	if wait < 0 {
		wait = 0
	}
	// Advance the gate before sleeping: concurrent callers queue behind
	// this reservation instead of racing for the same slot.
	start := now.Add(wait)
	g.nextAt = start.Add(g.minInterval)
	clock := g.clock
	g.mu.Unlock()

	if wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clock.After(wait):
		}
	}

	return g.limiter.Wait(ctx)
}

// RecordRateLimit records a throttling signal from the provider and opens
// a backoff window that every caller must sit out.
func (g *Gate) RecordRateLimit(backoff time.Duration) {
	if backoff <= 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	retryAt := g.clock.Now().Add(backoff)
	if retryAt.After(g.retryAt) {
		g.retryAt = retryAt
	}
}
