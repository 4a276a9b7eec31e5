// Package paced decorates an LLM service with the shared pacing gate and
// bounded retry on throttling. Every provider call in the process goes
// through one of these wrappers around the same gate, so the provider's
// global quota is respected regardless of which component is calling.
package paced

import (
	"context"
	"fmt"
	"time"

	"github.com/raildocs-labs/raildocs-cli/internal/adapters/driven/llm/pacing"
	"github.com/raildocs-labs/raildocs-cli/internal/core/domain"
	"github.com/raildocs-labs/raildocs-cli/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.LLMService = (*Client)(nil)

// Default retry behaviour, matching the provider's documented backoff.
const (
	DefaultRetryDelay  = 30 * time.Second
	DefaultMaxAttempts = 3
)

// Config holds retry configuration.
type Config struct {
	// RetryDelay is the fixed backoff applied after a throttling signal.
	RetryDelay time.Duration

	// MaxAttempts is the total number of attempts per call, including the
	// first. Exceeding it surfaces domain.ErrRateLimited to the caller.
	MaxAttempts int
}

// Client is a pacing and retry decorator around an LLM service.
type Client struct {
	inner       driven.LLMService
	gate        *pacing.Gate
	retryDelay  time.Duration
	maxAttempts int
}

// Wrap decorates inner with the shared gate. inner may be nil, in which
// case every call fails fast with domain.ErrConfiguration so callers can
// switch to fallback mode without spending the retry budget.
func Wrap(inner driven.LLMService, gate *pacing.Gate, cfg Config) *Client {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}

	return &Client{
		inner:       inner,
		gate:        gate,
		retryDelay:  cfg.RetryDelay,
		maxAttempts: cfg.MaxAttempts,
	}
}

// Generate produces text completion from a prompt, paced and retried.
func (c *Client) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	return c.do(ctx, func() (string, error) {
		return c.inner.Generate(ctx, prompt, opts)
	})
}

// Chat conducts a multi-turn conversation, paced and retried.
func (c *Client) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	return c.do(ctx, func() (string, error) {
		return c.inner.Chat(ctx, messages, opts)
	})
}

// do runs one provider call through the gate. Throttling is retried after
// the fixed backoff up to the attempt bound; other provider failures are
// not transient and surface immediately.
func (c *Client) do(ctx context.Context, call func() (string, error)) (string, error) {
	if c.inner == nil {
		return "", domain.ErrConfiguration
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.gate.Wait(ctx); err != nil {
			return "", err
		}

		out, err := call()
		if err == nil {
			return out, nil
		}
		if !domain.Retryable(err) {
			return "", err
		}

		lastErr = err
		c.gate.RecordRateLimit(c.retryDelay)
	}

	return "", fmt.Errorf("%d attempts exhausted: %w", c.maxAttempts, lastErr)
}

// ModelName returns the wrapped model name.
func (c *Client) ModelName() string {
	if c.inner == nil {
		return ""
	}
	return c.inner.ModelName()
}

// Ping validates the wrapped service is reachable. Pings bypass the gate:
// they are cheap reachability checks, not quota-bearing inference calls.
func (c *Client) Ping(ctx context.Context) error {
	if c.inner == nil {
		return domain.ErrConfiguration
	}
	return c.inner.Ping(ctx)
}

// Close releases the wrapped service's resources.
func (c *Client) Close() error {
	if c.inner == nil {
		return nil
	}
	return c.inner.Close()
}
