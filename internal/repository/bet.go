package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/betpool/tracker/internal/domain"
	"github.com/betpool/tracker/internal/infra"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const betColumns = `id, member_id, member_name, sport, selection, bet_type, stake, odds,
	potential_return, event_date, status, result, placed_at, settled_at`

type betRepo struct{}

// NewBetRepository returns a pgx-backed BetRepository.
func NewBetRepository() BetRepository {
	return &betRepo{}
}

func (r *betRepo) List(ctx context.Context, db DBTX) ([]domain.Bet, error) {
	rows, err := db.Query(ctx, `SELECT `+betColumns+` FROM bets ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list bets: %w", err)
	}
	defer rows.Close()

	var bets []domain.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		bets = append(bets, *b)
	}
	return bets, rows.Err()
}

func (r *betRepo) Upsert(ctx context.Context, db DBTX, b domain.Bet) error {
	_, err := db.Exec(ctx, `
		INSERT INTO bets (`+betColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
		  status = EXCLUDED.status,
		  result = EXCLUDED.result,
		  settled_at = EXCLUDED.settled_at`,
		b.ID,
		b.MemberID,
		b.MemberName,
		b.Sport,
		b.Selection,
		b.Type,
		infra.Int64ToNumeric(b.Stake),
		b.Odds,
		infra.Int64ToNumeric(b.PotentialReturn),
		b.EventDate,
		string(b.Status),
		infra.Int64PtrToNumeric(b.Result),
		b.PlacedAt,
		b.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("upsert bet: %w", err)
	}
	return nil
}

func (r *betRepo) Delete(ctx context.Context, db DBTX, id int64) error {
	_, err := db.Exec(ctx, `DELETE FROM bets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete bet: %w", err)
	}
	return nil
}

func (r *betRepo) LockStatus(ctx context.Context, tx pgx.Tx, id int64) (domain.BetStatus, bool, error) {
	var status string
	err := tx.QueryRow(ctx, `SELECT status FROM bets WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("lock bet: %w", err)
	}
	return domain.BetStatus(status), true, nil
}

func scanBet(row pgx.Row) (*domain.Bet, error) {
	var b domain.Bet
	var status string
	var stakeNum, returnNum, resultNum pgtype.Numeric
	err := row.Scan(&b.ID, &b.MemberID, &b.MemberName, &b.Sport, &b.Selection, &b.Type,
		&stakeNum, &b.Odds, &returnNum, &b.EventDate, &status, &resultNum, &b.PlacedAt, &b.SettledAt)
	if err != nil {
		return nil, fmt.Errorf("scan bet: %w", err)
	}
	b.Status = domain.BetStatus(status)

	var convErr error
	b.Stake, convErr = infra.NumericToInt64(stakeNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert stake: %w", convErr)
	}
	b.PotentialReturn, convErr = infra.NumericToInt64(returnNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert potential_return: %w", convErr)
	}
	b.Result, convErr = infra.NumericToInt64Ptr(resultNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert result: %w", convErr)
	}

	return &b, nil
}
