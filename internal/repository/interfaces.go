package repository

import (
	"context"

	"github.com/betpool/tracker/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Store is the record store behind the ledger engine.
// Commit must persist the whole changeset or nothing.
type Store interface {
	// Load reads every member, bet, event and the bet-of-the-week setting.
	Load(ctx context.Context) (*domain.Snapshot, error)

	// Commit writes a changeset atomically after checking its guards.
	// Balance changes are applied to the stored member rows, which are returned.
	Commit(ctx context.Context, cs domain.Changeset) (domain.CommitResult, error)
}

// MemberRepository provides access to members.
type MemberRepository interface {
	// List returns all members, oldest first.
	List(ctx context.Context, db DBTX) ([]domain.Member, error)

	// Upsert inserts or replaces a member row.
	Upsert(ctx context.Context, db DBTX, m domain.Member) error

	// LockForUpdate acquires a row-level lock and returns the stored member.
	// It returns nil when the member does not exist.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Member, error)

	// UpdateBalances adds the deltas to the stored balances and returns the new row.
	UpdateBalances(ctx context.Context, tx pgx.Tx, delta domain.BalanceChange) (*domain.Member, error)
}

// BetRepository provides access to bets.
type BetRepository interface {
	// List returns all bets, newest first.
	List(ctx context.Context, db DBTX) ([]domain.Bet, error)

	// Upsert inserts or replaces a bet row.
	Upsert(ctx context.Context, db DBTX, b domain.Bet) error

	// Delete removes a bet.
	Delete(ctx context.Context, db DBTX, id int64) error

	// LockStatus acquires a row-level lock and returns the stored status.
	// found is false when the bet does not exist.
	LockStatus(ctx context.Context, tx pgx.Tx, id int64) (status domain.BetStatus, found bool, err error)
}

// EventRepository provides access to group events.
type EventRepository interface {
	// List returns all events, newest first.
	List(ctx context.Context, db DBTX) ([]domain.Event, error)

	// Upsert inserts or replaces an event row.
	Upsert(ctx context.Context, db DBTX, e domain.Event) error

	// Delete removes an event.
	Delete(ctx context.Context, db DBTX, id int64) error
}

// SettingsRepository provides access to group-wide settings.
type SettingsRepository interface {
	// BetOfTheWeek returns the featured bet id, nil when unset.
	BetOfTheWeek(ctx context.Context, db DBTX) (*int64, error)

	// SetBetOfTheWeek stores or clears the featured bet id.
	SetBetOfTheWeek(ctx context.Context, db DBTX, betID *int64) error
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// InsertBatch writes a changeset's outbox events inside its transaction.
	InsertBatch(ctx context.Context, tx pgx.Tx, drafts []domain.OutboxDraft) error

	// FetchUnpublished returns the oldest unpublished events for the relay.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxRow, error)

	// MarkPublished deletes published events.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) (int64, error)
}
