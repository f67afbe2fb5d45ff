package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/betpool/tracker/internal/domain"
)

// LedgerReader is the slice of the engine the health endpoint reports on.
type LedgerReader interface {
	Version() uint64
	Mode() domain.PoolMode
}

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type healthResponse struct {
	Status  string            `json:"status"`
	Version uint64            `json:"version"`
	Mode    string            `json:"mode"`
	Checks  map[string]string `json:"checks"`
}

// HealthHandler returns a health check endpoint covering the store and cache.
func HealthHandler(ledger LedgerReader, checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		resp := healthResponse{
			Status:  "healthy",
			Version: ledger.Version(),
			Mode:    string(ledger.Mode()),
			Checks:  make(map[string]string, len(checks)),
		}
		status := http.StatusOK
		for name, c := range checks {
			if err := c.HealthCheck(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "unhealthy"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		RespondJSON(w, status, resp)
	}
}
