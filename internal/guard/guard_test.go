package guard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result := rl.Check(ctx, "admin")
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	clock := newClock()
	rl := NewRateLimiter(2, time.Minute)
	rl.now = clock.now
	ctx := context.Background()

	rl.Check(ctx, "admin")
	clock.advance(10 * time.Second)
	rl.Check(ctx, "admin")
	result := rl.Check(ctx, "admin")

	assert.False(t, result.Allowed)
	assert.Equal(t, "rate_limiter", result.Guard)
	assert.Equal(t, 50*time.Second, result.RetryAfter)
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	clock := newClock()
	rl := NewRateLimiter(1, time.Minute)
	rl.now = clock.now
	ctx := context.Background()

	require.True(t, rl.Check(ctx, "admin").Allowed)
	require.False(t, rl.Check(ctx, "admin").Allowed)

	clock.advance(61 * time.Second)
	assert.True(t, rl.Check(ctx, "admin").Allowed)
}

func TestRateLimiter_SeparateKeys(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	ctx := context.Background()

	r1 := rl.Check(ctx, "key-a")
	r2 := rl.Check(ctx, "key-b")

	assert.True(t, r1.Allowed)
	assert.True(t, r2.Allowed)
}

func TestRateLimiter_ZeroLimitDisabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute)
	for i := 0; i < 10; i++ {
		assert.True(t, rl.Check(context.Background(), "admin").Allowed)
	}
}

func TestCircuitBreaker_ClosedByDefault(t *testing.T) {
	cb := NewCircuitBreaker(3, 5*time.Second)

	result := cb.Check(context.Background(), "board_cache")
	assert.True(t, result.Allowed)
	assert.Equal(t, CircuitClosed, cb.State("board_cache"))
}

func TestCircuitBreaker_OpensOnThreshold(t *testing.T) {
	cb := NewCircuitBreaker(2, 5*time.Second)
	ctx := context.Background()

	cb.Check(ctx, "board_cache")
	cb.RecordFailure("board_cache")
	cb.RecordFailure("board_cache")

	result := cb.Check(ctx, "board_cache")
	assert.False(t, result.Allowed)
	assert.Equal(t, "circuit_breaker", result.Guard)
	assert.Equal(t, CircuitOpen, cb.State("board_cache"))
}

func TestCircuitBreaker_SuccessResets(t *testing.T) {
	cb := NewCircuitBreaker(2, 5*time.Second)
	ctx := context.Background()

	cb.Check(ctx, "board_cache")
	cb.RecordFailure("board_cache")
	cb.RecordSuccess("board_cache")
	cb.RecordFailure("board_cache")

	result := cb.Check(ctx, "board_cache")
	assert.True(t, result.Allowed)
}

func TestCircuitBreaker_HalfOpenTrial(t *testing.T) {
	clock := newClock()
	cb := NewCircuitBreaker(1, 5*time.Second)
	cb.now = clock.now
	ctx := context.Background()

	cb.RecordFailure("board_cache")
	require.False(t, cb.Check(ctx, "board_cache").Allowed)

	clock.advance(5 * time.Second)
	require.True(t, cb.Check(ctx, "board_cache").Allowed, "first trial call")
	assert.False(t, cb.Check(ctx, "board_cache").Allowed, "second call while the first is in flight")
	assert.Equal(t, CircuitHalfOpen, cb.State("board_cache"))

	cb.RecordFailure("board_cache")
	assert.Equal(t, CircuitOpen, cb.State("board_cache"))

	clock.advance(5 * time.Second)
	require.True(t, cb.Check(ctx, "board_cache").Allowed)
	cb.RecordSuccess("board_cache")
	assert.Equal(t, CircuitClosed, cb.State("board_cache"))
	assert.True(t, cb.Check(ctx, "board_cache").Allowed)
}

func TestIdempotencyGuard_AllowsFirst(t *testing.T) {
	ig := NewIdempotencyGuard(16, time.Minute)

	result := ig.Check(context.Background(), "req-123")
	assert.True(t, result.Allowed)
}

func TestIdempotencyGuard_BlocksDuplicate(t *testing.T) {
	ig := NewIdempotencyGuard(16, time.Minute)
	ctx := context.Background()

	ig.Check(ctx, "req-123")
	result := ig.Check(ctx, "req-123")

	assert.False(t, result.Allowed)
	assert.Equal(t, "idempotency", result.Guard)
}

func TestIdempotencyGuard_EmptyKeyAllowed(t *testing.T) {
	ig := NewIdempotencyGuard(16, time.Minute)
	ctx := context.Background()

	r1 := ig.Check(ctx, "")
	r2 := ig.Check(ctx, "")

	assert.True(t, r1.Allowed)
	assert.True(t, r2.Allowed)
}

func TestIdempotencyGuard_RemoveAllowsRetry(t *testing.T) {
	ig := NewIdempotencyGuard(16, time.Minute)
	ctx := context.Background()

	ig.Check(ctx, "req-456")
	ig.Remove("req-456")

	result := ig.Check(ctx, "req-456")
	require.True(t, result.Allowed)
}
