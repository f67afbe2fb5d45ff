package handler

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/betpool/tracker/internal/auth"
	"github.com/betpool/tracker/internal/domain"
	"github.com/betpool/tracker/internal/guard"
	"github.com/go-chi/chi/v5/middleware"
)

// IdempotencyHeader carries the client's key for a retryable write.
const IdempotencyHeader = "Idempotency-Key"

// Checker is a guard keyed by caller.
type Checker interface {
	Check(ctx context.Context, key string) guard.Result
}

// RateLimit rejects callers that exceed the limiter, keyed by token subject.
// It must run after auth.AuthenticateAdmin.
func RateLimit(limiter Checker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := limiter.Check(r.Context(), auth.SubjectFromContext(r.Context()))
			if !res.Allowed {
				if res.RetryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
				}
				RespondError(w, domain.ErrRateLimited(res.Reason))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Idempotent rejects a replayed Idempotency-Key with 409. Keys are scoped to
// the token subject and released again when the write fails, so a client may
// retry after an error. Requests without the header pass through.
func Idempotent(ig *guard.IdempotencyGuard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(IdempotencyHeader)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			key := auth.SubjectFromContext(r.Context()) + ":" + r.Method + " " + r.URL.Path + ":" + raw

			if res := ig.Check(r.Context(), key); !res.Allowed {
				RespondError(w, domain.ErrConflict(res.Reason))
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if statusOf(ww) >= 400 {
				ig.Remove(key)
			}
		})
	}
}
