package repository

import (
	"context"
	"fmt"

	"github.com/betpool/tracker/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists the group state in PostgreSQL.
type PostgresStore struct {
	pool     *pgxpool.Pool
	members  MemberRepository
	bets     BetRepository
	events   EventRepository
	settings SettingsRepository
	outbox   OutboxRepository
}

// NewPostgresStore creates a store backed by the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		pool:     pool,
		members:  NewMemberRepository(),
		bets:     NewBetRepository(),
		events:   NewEventRepository(),
		settings: NewSettingsRepository(),
		outbox:   NewOutboxRepository(),
	}
}

// Load reads the full snapshot in one repeatable-read transaction.
func (s *PostgresStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{}
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		var err error
		if snap.Members, err = s.members.List(ctx, tx); err != nil {
			return err
		}
		if snap.Bets, err = s.bets.List(ctx, tx); err != nil {
			return err
		}
		if snap.Events, err = s.events.List(ctx, tx); err != nil {
			return err
		}
		snap.BetOfTheWeek, err = s.settings.BetOfTheWeek(ctx, tx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}

// Commit checks guards and writes the changeset in one transaction.
func (s *PostgresStore) Commit(ctx context.Context, cs domain.Changeset) (domain.CommitResult, error) {
	var res domain.CommitResult
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		res = domain.CommitResult{}
		for _, g := range cs.Guards {
			if err := s.checkGuard(ctx, tx, g); err != nil {
				return err
			}
		}

		for _, m := range cs.Members {
			if err := s.members.Upsert(ctx, tx, m); err != nil {
				return err
			}
		}
		for _, c := range cs.Balances {
			m, err := s.applyBalance(ctx, tx, c)
			if err != nil {
				return err
			}
			res.Members = append(res.Members, *m)
		}
		for _, id := range cs.DeleteBets {
			if err := s.bets.Delete(ctx, tx, id); err != nil {
				return err
			}
		}
		for _, b := range cs.Bets {
			if err := s.bets.Upsert(ctx, tx, b); err != nil {
				return err
			}
		}
		for _, id := range cs.DeleteEvents {
			if err := s.events.Delete(ctx, tx, id); err != nil {
				return err
			}
		}
		for _, e := range cs.Events {
			if err := s.events.Upsert(ctx, tx, e); err != nil {
				return err
			}
		}
		if cs.BetOfTheWeek != nil {
			if err := s.settings.SetBetOfTheWeek(ctx, tx, cs.BetOfTheWeek.BetID); err != nil {
				return err
			}
		}

		return s.outbox.InsertBatch(ctx, tx, cs.Outbox)
	})
	if err != nil {
		return domain.CommitResult{}, err
	}
	return res, nil
}

// applyBalance locks the member row, checks the change against the stored
// balances and writes it as a server-side delta.
func (s *PostgresStore) applyBalance(ctx context.Context, tx pgx.Tx, c domain.BalanceChange) (*domain.Member, error) {
	stored, err := s.members.LockForUpdate(ctx, tx, c.MemberID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, domain.ErrNotFound("member", fmt.Sprint(c.MemberID))
	}

	next := *stored
	if err := c.ApplyTo(&next); err != nil {
		return nil, err
	}
	return s.members.UpdateBalances(ctx, tx, domain.DiffBalances(*stored, next))
}

// checkGuard locks the bet row and rejects the commit when its stored status moved on.
func (s *PostgresStore) checkGuard(ctx context.Context, tx pgx.Tx, g domain.Guard) error {
	status, found, err := s.bets.LockStatus(ctx, tx, g.BetID)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrNotFound("bet", fmt.Sprint(g.BetID))
	}
	if status != g.Status {
		if g.Status == domain.BetStatusPending {
			return domain.ErrAlreadySettled(g.BetID, status)
		}
		return domain.ErrConflict(fmt.Sprintf("bet %d is %s, expected %s", g.BetID, status, g.Status))
	}
	return nil
}

// HealthCheck pings the database.
func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// OutboxSource adapts the outbox repository to the relay's pool-level view.
type OutboxSource struct {
	pool   *pgxpool.Pool
	outbox OutboxRepository
}

// NewOutboxSource creates an outbox source for the relay worker.
func NewOutboxSource(pool *pgxpool.Pool) *OutboxSource {
	return &OutboxSource{pool: pool, outbox: NewOutboxRepository()}
}

// FetchUnpublished returns the oldest pending outbox rows.
func (s *OutboxSource) FetchUnpublished(ctx context.Context, limit int) ([]domain.OutboxRow, error) {
	return s.outbox.FetchUnpublished(ctx, s.pool, limit)
}

// MarkPublished removes rows that reached the broker.
func (s *OutboxSource) MarkPublished(ctx context.Context, ids []int64) error {
	n, err := s.outbox.MarkPublished(ctx, s.pool, ids)
	if err != nil {
		return err
	}
	if n != int64(len(ids)) {
		return fmt.Errorf("mark published: removed %d of %d rows", n, len(ids))
	}
	return nil
}
