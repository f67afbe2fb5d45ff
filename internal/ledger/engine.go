package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/betpool/tracker/internal/domain"
	"github.com/betpool/tracker/internal/metrics"
	"github.com/betpool/tracker/internal/repository"
)

// CommitHook is called after every successful commit with the new snapshot version.
// Hooks run after the engine lock is released, so they may read from the engine
// and may see a later version than the one they were given.
type CommitHook func(version uint64)

// Engine owns the group state and is the only writer to it.
//
// Every mutation is a command:
//  1. validate input and resolve records against the current snapshot
//  2. build a changeset (upserts, deletes, guards, outbox events)
//  3. commit the changeset to the store
//  4. apply it locally and bump the version, only if the commit succeeded
type Engine struct {
	mu     sync.RWMutex
	store  repository.Store
	policy BalancePolicy
	logger *slog.Logger
	snap   *domain.Snapshot
	ids    idSource
	now    func() time.Time
	hooks  []CommitHook
}

// NewEngine creates a ledger engine with an empty snapshot. Call Refresh to load state.
func NewEngine(store repository.Store, policy BalancePolicy, logger *slog.Logger) *Engine {
	return &Engine{
		store:  store,
		policy: policy,
		logger: logger,
		snap:   &domain.Snapshot{Members: []domain.Member{}, Bets: []domain.Bet{}, Events: []domain.Event{}},
		now:    time.Now,
	}
}

// Mode returns the balance policy's pool mode.
func (e *Engine) Mode() domain.PoolMode {
	return e.policy.Mode()
}

// OnCommit registers a hook fired after each successful commit and refresh.
func (e *Engine) OnCommit(hook CommitHook) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks = append(e.hooks, hook)
}

// Refresh replaces the local snapshot with the store's contents.
func (e *Engine) Refresh(ctx context.Context) error {
	snap, err := e.store.Load(ctx)
	if err != nil {
		e.logger.Error("snapshot load failed", "error", err)
		return domain.ErrStoreUnavailable("refresh", err)
	}
	snap.Normalize()

	e.mu.Lock()
	snap.Version = e.snap.Version + 1
	e.snap = snap
	for _, m := range snap.Members {
		e.ids.observe(m.ID)
	}
	for _, b := range snap.Bets {
		e.ids.observe(b.ID)
	}
	for _, ev := range snap.Events {
		e.ids.observe(ev.ID)
	}
	hooks := e.hooks
	metrics.SnapshotVersion.Set(float64(snap.Version))
	e.mu.Unlock()

	fire(hooks, snap.Version)

	e.logger.Info("snapshot refreshed",
		"version", snap.Version,
		"members", len(snap.Members),
		"bets", len(snap.Bets),
		"events", len(snap.Events),
	)
	return nil
}

// execute runs one command under the write lock. build reads the current
// snapshot, which it must not modify, and returns the changeset to commit.
func (e *Engine) execute(ctx context.Context, command string, build func(s *domain.Snapshot) (domain.Changeset, error)) error {
	return e.executeThen(ctx, command, build, nil)
}

// executeThen is execute with then called on the updated snapshot before the lock is released.
func (e *Engine) executeThen(ctx context.Context, command string, build func(s *domain.Snapshot) (domain.Changeset, error), then func(s *domain.Snapshot)) error {
	e.mu.Lock()
	version, err := e.commitLocked(ctx, command, build)
	if err == nil && then != nil {
		then(e.snap)
	}
	hooks := e.hooks
	e.mu.Unlock()

	if err != nil {
		return err
	}
	fire(hooks, version)
	return nil
}

func (e *Engine) commitLocked(ctx context.Context, command string, build func(s *domain.Snapshot) (domain.Changeset, error)) (uint64, error) {
	cs, err := build(e.snap)
	if err != nil {
		metrics.CommandsTotal.WithLabelValues(command, outcomeLabel(err)).Inc()
		e.logger.Debug("command rejected", "command", command, "error", err)
		return 0, err
	}
	cs.Command = command

	start := time.Now()
	res, err := e.store.Commit(ctx, cs)
	metrics.StoreCommitDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CommandsTotal.WithLabelValues(command, outcomeLabel(err)).Inc()
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			// The store saw a different state than the local snapshot; another writer got there first.
			e.logger.Warn("commit rejected by store", "command", command, "code", appErr.Code, "error", err)
			return 0, appErr
		}
		e.logger.Error("store commit failed", "command", command, "error", err)
		return 0, domain.ErrStoreUnavailable(command, err)
	}

	e.snap.Apply(cs)
	if len(res.Members) > 0 {
		// Stored rows win over the locally applied deltas.
		e.snap.Apply(domain.Changeset{Members: res.Members})
	}
	e.snap.Version++
	metrics.CommandsTotal.WithLabelValues(command, "ok").Inc()
	metrics.SnapshotVersion.Set(float64(e.snap.Version))

	e.logger.Info("command committed", "command", command, "version", e.snap.Version, "events", len(cs.Outbox))
	return e.snap.Version, nil
}

func fire(hooks []CommitHook, version uint64) {
	for _, hook := range hooks {
		hook(version)
	}
}

func outcomeLabel(err error) string {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return strings.ToLower(appErr.Code)
	}
	return "error"
}

// idSource hands out millisecond-timestamp ids that are strictly increasing.
type idSource struct {
	last int64
}

func (s *idSource) next(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}

func (s *idSource) observe(id int64) {
	if id > s.last {
		s.last = id
	}
}
