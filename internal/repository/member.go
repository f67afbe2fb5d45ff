package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/betpool/tracker/internal/domain"
	"github.com/betpool/tracker/internal/infra"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

const pgUniqueViolation = "23505"

type memberRepo struct{}

// NewMemberRepository returns a pgx-backed MemberRepository.
func NewMemberRepository() MemberRepository {
	return &memberRepo{}
}

func (r *memberRepo) List(ctx context.Context, db DBTX) ([]domain.Member, error) {
	rows, err := db.Query(ctx, `
		SELECT id, name, contribution, bankroll, initial_bankroll, created_at
		FROM members ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (r *memberRepo) Upsert(ctx context.Context, db DBTX, m domain.Member) error {
	_, err := db.Exec(ctx, `
		INSERT INTO members (id, name, contribution, bankroll, initial_bankroll, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
		  name = EXCLUDED.name,
		  contribution = EXCLUDED.contribution,
		  bankroll = EXCLUDED.bankroll,
		  initial_bankroll = EXCLUDED.initial_bankroll`,
		m.ID,
		m.Name,
		infra.Int64ToNumeric(m.Contribution),
		infra.Int64ToNumeric(m.Bankroll),
		infra.Int64ToNumeric(m.InitialBankroll),
		m.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrConflict(fmt.Sprintf("member %q already exists", m.Name))
		}
		return fmt.Errorf("upsert member: %w", err)
	}
	return nil
}

func (r *memberRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Member, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, name, contribution, bankroll, initial_bankroll, created_at
		FROM members WHERE id = $1 FOR UPDATE`, id)
	m, err := scanMember(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

// UpdateBalances uses server-side arithmetic so the write never depends on a cached row.
func (r *memberRepo) UpdateBalances(ctx context.Context, tx pgx.Tx, delta domain.BalanceChange) (*domain.Member, error) {
	row := tx.QueryRow(ctx, `
		UPDATE members SET
		  contribution = contribution + $1,
		  bankroll = bankroll + $2,
		  initial_bankroll = initial_bankroll + $3
		WHERE id = $4
		RETURNING id, name, contribution, bankroll, initial_bankroll, created_at`,
		infra.Int64ToNumeric(delta.Contribution),
		infra.Int64ToNumeric(delta.Bankroll),
		infra.Int64ToNumeric(delta.InitialBankroll),
		delta.MemberID,
	)
	return scanMember(row)
}

func scanMember(row pgx.Row) (*domain.Member, error) {
	var m domain.Member
	var contribNum, bankrollNum, initialNum pgtype.Numeric
	err := row.Scan(&m.ID, &m.Name, &contribNum, &bankrollNum, &initialNum, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan member: %w", err)
	}

	var convErr error
	m.Contribution, convErr = infra.NumericToInt64(contribNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert contribution: %w", convErr)
	}
	m.Bankroll, convErr = infra.NumericToInt64(bankrollNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert bankroll: %w", convErr)
	}
	m.InitialBankroll, convErr = infra.NumericToInt64(initialNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert initial_bankroll: %w", convErr)
	}

	return &m, nil
}
