// Package guard holds in-process request guards: rate limiting, idempotency
// keys, and a circuit breaker for optional dependencies.
package guard

import "time"

// Result is the verdict of a single guard check.
type Result struct {
	Allowed    bool
	Reason     string
	Guard      string
	RetryAfter time.Duration
}

func allow() Result { return Result{Allowed: true} }
