package projection

import (
	"context"
	"fmt"
	"time"

	"github.com/betpool/tracker/internal/domain"
	"github.com/betpool/tracker/internal/stats"
)

// Board is the cached statistics view for one snapshot version.
type Board struct {
	Version     uint64                   `json:"version"`
	Mode        domain.PoolMode          `json:"mode"`
	Leaderboard []stats.LeaderboardEntry `json:"leaderboard"`
	Awards      []stats.Award            `json:"awards"`
	HotHand     *stats.HotHandResult     `json:"hot_hand"`
	Summary     stats.Summary            `json:"summary"`
	ComputedAt  string                   `json:"computed_at"`
}

func boardKey(mode domain.PoolMode) string {
	return fmt.Sprintf("projection:board:%s", mode)
}

// PutBoard caches a board.
func PutBoard(ctx context.Context, store Store, b Board, ttl time.Duration) error {
	b.ComputedAt = time.Now().UTC().Format(time.RFC3339)
	return SetJSON(ctx, store, boardKey(b.Mode), b, ttl)
}

// GetBoard retrieves the cached board for a mode.
func GetBoard(ctx context.Context, store Store, mode domain.PoolMode) (*Board, error) {
	var b Board
	if err := GetJSON(ctx, store, boardKey(mode), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// InvalidateBoard removes the cached board for a mode.
func InvalidateBoard(ctx context.Context, store Store, mode domain.PoolMode) error {
	return store.Delete(ctx, boardKey(mode))
}
