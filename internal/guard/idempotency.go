package guard

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// IdempotencyGuard remembers recently seen Idempotency-Key values so a retried
// write is not applied twice. Keys expire after ttl; at most size are kept.
type IdempotencyGuard struct {
	mu   sync.Mutex
	seen *expirable.LRU[string, struct{}]
}

// NewIdempotencyGuard creates an in-memory idempotency guard.
func NewIdempotencyGuard(size int, ttl time.Duration) *IdempotencyGuard {
	return &IdempotencyGuard{seen: expirable.NewLRU[string, struct{}](size, nil, ttl)}
}

// Check claims key. The first claim is allowed, repeats are rejected until the
// key expires or is removed. An empty key is always allowed.
func (ig *IdempotencyGuard) Check(_ context.Context, key string) Result {
	if key == "" {
		return allow()
	}

	ig.mu.Lock()
	defer ig.mu.Unlock()

	if ig.seen.Contains(key) {
		return Result{
			Allowed: false,
			Reason:  "duplicate request: idempotency key already processed",
			Guard:   "idempotency",
		}
	}
	ig.seen.Add(key, struct{}{})
	return allow()
}

// Remove releases a key so the request may be retried, used when the
// guarded write failed.
func (ig *IdempotencyGuard) Remove(key string) {
	ig.seen.Remove(key)
}
