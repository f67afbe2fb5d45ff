package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/betpool/tracker/internal/domain"
	"github.com/betpool/tracker/internal/metrics"
)

const defaultBetType = "single"

// PlaceBet records a pending bet with its potential return fixed at stake*odds.
// In bankroll mode the stake is debited from the stored bankroll in the same commit.
func (e *Engine) PlaceBet(ctx context.Context, params domain.PlaceBetParams) (*domain.Bet, error) {
	if err := domain.ValidatePlaceBet(params); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	var placed domain.Bet
	err := e.execute(ctx, "place_bet", func(s *domain.Snapshot) (domain.Changeset, error) {
		m, ok := s.Member(params.MemberID)
		if !ok {
			return domain.Changeset{}, domain.ErrNotFound("member", fmt.Sprint(params.MemberID))
		}

		original := m
		if err := e.policy.ApplyStake(&m, params.Stake); err != nil {
			return domain.Changeset{}, err
		}

		betType := strings.TrimSpace(params.Type)
		if betType == "" {
			betType = defaultBetType
		}

		now := e.now()
		placed = domain.Bet{
			ID:              e.ids.next(now),
			MemberID:        m.ID,
			MemberName:      m.Name,
			Sport:           strings.TrimSpace(params.Sport),
			Selection:       strings.TrimSpace(params.Selection),
			Type:            betType,
			Stake:           params.Stake,
			Odds:            params.Odds,
			PotentialReturn: domain.PotentialReturn(params.Stake, params.Odds),
			EventDate:       params.EventDate,
			Status:          domain.BetStatusPending,
			PlacedAt:        now,
		}

		cs := domain.Changeset{
			Bets:   []domain.Bet{placed},
			Outbox: []domain.OutboxDraft{domain.NewBetPlacedEvent(placed)},
		}
		if change := domain.DiffBalances(original, m); !change.IsZero() {
			// The stored bankroll is checked again when the stake is debited.
			change.RequireFunds = true
			cs.Balances = []domain.BalanceChange{change}
		}
		return cs, nil
	})
	if err != nil {
		return nil, err
	}

	metrics.BetsPlaced.WithLabelValues(string(e.policy.Mode())).Inc()
	return &placed, nil
}
