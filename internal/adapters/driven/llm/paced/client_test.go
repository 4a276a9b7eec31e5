package paced

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raildocs-labs/raildocs-cli/internal/adapters/driven/llm/pacing"
	"github.com/raildocs-labs/raildocs-cli/internal/core/domain"
	"github.com/raildocs-labs/raildocs-cli/internal/core/ports/driven"
)

// scriptedLLM returns canned outcomes in order, then repeats the last one.
type scriptedLLM struct {
	mu       sync.Mutex
	outcomes []error
	calls    int
}

func (s *scriptedLLM) next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i >= len(s.outcomes) {
		i = len(s.outcomes) - 1
	}
	return s.outcomes[i]
}

func (s *scriptedLLM) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *scriptedLLM) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	if err := s.next(); err != nil {
		return "", err
	}
	return "ok", nil
}

func (s *scriptedLLM) Chat(context.Context, []driven.ChatMessage, driven.ChatOptions) (string, error) {
	if err := s.next(); err != nil {
		return "", err
	}
	return "ok", nil
}

func (s *scriptedLLM) ModelName() string          { return "scripted" }
func (s *scriptedLLM) Ping(context.Context) error { return nil }
func (s *scriptedLLM) Close() error               { return nil }

// fakeClock advances instantly on After and records every requested wait.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.waits = append(c.waits, d)
	c.now = c.now.Add(d)
	now := c.now
	c.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}

func (c *fakeClock) recorded() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.waits...)
}

func newGate(clock *fakeClock) *pacing.Gate {
	g := pacing.NewGate(pacing.Config{MinInterval: time.Second})
	g.SetClock(clock)
	return g
}

func rateLimitedErr() error {
	return fmt.Errorf("status 429: %w", domain.ErrRateLimited)
}

func TestClient_SuccessFirstAttempt(t *testing.T) {
	llm := &scriptedLLM{outcomes: []error{nil}}
	c := Wrap(llm, newGate(newFakeClock()), Config{MaxAttempts: 3, RetryDelay: 30 * time.Second})

	out, err := c.Generate(context.Background(), "prompt", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 1, llm.callCount())
}

func TestClient_RetriesThrottlingToBound(t *testing.T) {
	clock := newFakeClock()
	llm := &scriptedLLM{outcomes: []error{rateLimitedErr()}}
	c := Wrap(llm, newGate(clock), Config{MaxAttempts: 3, RetryDelay: 30 * time.Second})

	_, err := c.Generate(context.Background(), "prompt", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, 3, llm.callCount())

	// The configured backoff elapses before each retry.
	waits := clock.recorded()
	require.Len(t, waits, 2)
	assert.Equal(t, 30*time.Second, waits[0])
	assert.Equal(t, 30*time.Second, waits[1])
}

func TestClient_RecoversAfterThrottling(t *testing.T) {
	llm := &scriptedLLM{outcomes: []error{rateLimitedErr(), nil}}
	c := Wrap(llm, newGate(newFakeClock()), Config{MaxAttempts: 3, RetryDelay: 30 * time.Second})

	out, err := c.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "q"}}, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 2, llm.callCount())
}

func TestClient_ProviderErrorNotRetried(t *testing.T) {
	llm := &scriptedLLM{outcomes: []error{fmt.Errorf("status 401: %w", domain.ErrProvider)}}
	c := Wrap(llm, newGate(newFakeClock()), Config{MaxAttempts: 3, RetryDelay: 30 * time.Second})

	_, err := c.Generate(context.Background(), "prompt", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.Equal(t, 1, llm.callCount())
}

func TestClient_NilInnerFailsFast(t *testing.T) {
	c := Wrap(nil, newGate(newFakeClock()), Config{})

	_, err := c.Generate(context.Background(), "prompt", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = c.Chat(context.Background(), nil, driven.ChatOptions{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	assert.ErrorIs(t, c.Ping(context.Background()), domain.ErrConfiguration)
	assert.NoError(t, c.Close())
}

func TestClient_SharedGateSpacesCallers(t *testing.T) {
	clock := newFakeClock()
	gate := newGate(clock)

	a := Wrap(&scriptedLLM{outcomes: []error{nil}}, gate, Config{})
	b := Wrap(&scriptedLLM{outcomes: []error{nil}}, gate, Config{})

	_, err := a.Generate(context.Background(), "one", driven.GenerateOptions{})
	require.NoError(t, err)
	_, err = b.Generate(context.Background(), "two", driven.GenerateOptions{})
	require.NoError(t, err)

	// The second caller queues behind the first caller's spacing window.
	waits := clock.recorded()
	require.Len(t, waits, 1)
	assert.Equal(t, time.Second, waits[0])
}
