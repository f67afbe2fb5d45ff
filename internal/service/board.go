package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/betpool/tracker/internal/domain"
	"github.com/betpool/tracker/internal/guard"
	"github.com/betpool/tracker/internal/metrics"
	"github.com/betpool/tracker/internal/projection"
	"github.com/betpool/tracker/internal/stats"
)

const (
	invalidateTimeout = 2 * time.Second
	cacheCircuit      = "board_cache"
)

// SnapshotSource is the read side of the ledger engine.
type SnapshotSource interface {
	Snapshot() *domain.Snapshot
	Version() uint64
	Mode() domain.PoolMode
}

// BoardService serves the statistics board, caching it per snapshot version.
type BoardService struct {
	source  SnapshotSource
	store   projection.Store
	ttl     time.Duration
	breaker *guard.CircuitBreaker
	logger  *slog.Logger
}

// NewBoardService creates a BoardService.
func NewBoardService(source SnapshotSource, store projection.Store, ttl time.Duration, logger *slog.Logger) *BoardService {
	return &BoardService{source: source, store: store, ttl: ttl, logger: logger}
}

// WithBreaker makes the service skip the cache while cb reports it failing.
func (s *BoardService) WithBreaker(cb *guard.CircuitBreaker) *BoardService {
	s.breaker = cb
	return s
}

// Board returns the board for the current snapshot, from cache when the cached
// version matches.
func (s *BoardService) Board(ctx context.Context) (*projection.Board, error) {
	mode := s.source.Mode()
	version := s.source.Version()

	if !s.cacheAllowed(ctx) {
		metrics.BoardCacheBypassed.Inc()
		board := ComputeBoard(s.source.Snapshot(), mode)
		return &board, nil
	}

	cached, err := projection.GetBoard(ctx, s.store, mode)
	switch {
	case err == nil && cached.Version == version:
		s.recordCache(nil)
		metrics.BoardCacheHits.Inc()
		return cached, nil
	case err != nil && !errors.Is(err, projection.ErrMiss):
		s.logger.Warn("board cache read failed", "error", err)
		s.recordCache(err)
		metrics.BoardCacheMisses.Inc()
		board := ComputeBoard(s.source.Snapshot(), mode)
		return &board, nil
	}
	metrics.BoardCacheMisses.Inc()

	board := ComputeBoard(s.source.Snapshot(), mode)
	err = projection.PutBoard(ctx, s.store, board, s.ttl)
	if err != nil {
		s.logger.Warn("board cache write failed", "version", board.Version, "error", err)
	}
	s.recordCache(err)
	return &board, nil
}

func (s *BoardService) cacheAllowed(ctx context.Context) bool {
	if s.breaker == nil {
		return true
	}
	return s.breaker.Check(ctx, cacheCircuit).Allowed
}

func (s *BoardService) recordCache(err error) {
	if s.breaker == nil {
		return
	}
	if err != nil {
		s.breaker.RecordFailure(cacheCircuit)
		return
	}
	s.breaker.RecordSuccess(cacheCircuit)
}

// MemberStats returns one member's statistics.
func (s *BoardService) MemberStats(memberID int64) (*stats.MemberStats, error) {
	snap := s.source.Snapshot()
	if _, ok := snap.Member(memberID); !ok {
		return nil, domain.ErrNotFound("member", fmt.Sprint(memberID))
	}
	ms := stats.ForMember(snap.Bets, memberID)
	return &ms, nil
}

// Invalidate drops the cached board. It is registered as the engine's commit hook.
func (s *BoardService) Invalidate(version uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), invalidateTimeout)
	defer cancel()

	if err := projection.InvalidateBoard(ctx, s.store, s.source.Mode()); err != nil {
		s.logger.Warn("board cache invalidate failed", "version", version, "error", err)
	}
}

// ComputeBoard derives every board statistic from a snapshot.
func ComputeBoard(snap *domain.Snapshot, mode domain.PoolMode) projection.Board {
	return projection.Board{
		Version:     snap.Version,
		Mode:        mode,
		Leaderboard: stats.Leaderboard(snap.Members, snap.Bets),
		Awards:      stats.Awards(snap.Members, snap.Bets),
		HotHand:     stats.HotHand(snap.Members, snap.Bets),
		Summary:     stats.Summarize(snap),
	}
}
