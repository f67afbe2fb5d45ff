package ledger

import (
	"context"
	"fmt"

	"github.com/betpool/tracker/internal/domain"
	"github.com/betpool/tracker/internal/metrics"
)

// SettleBet moves a pending bet to won, lost or void and applies the balance effect.
// The commit is guarded on the stored status still being pending.
func (e *Engine) SettleBet(ctx context.Context, betID int64, outcome domain.BetStatus) (*domain.Bet, error) {
	if !outcome.IsTerminal() {
		return nil, domain.ErrValidation("outcome must be one of won, lost, void")
	}

	var settled domain.Bet
	err := e.execute(ctx, "settle_bet", func(s *domain.Snapshot) (domain.Changeset, error) {
		bet, ok := s.Bet(betID)
		if !ok {
			return domain.Changeset{}, domain.ErrNotFound("bet", fmt.Sprint(betID))
		}
		if bet.Status != domain.BetStatusPending {
			return domain.Changeset{}, domain.ErrAlreadySettled(betID, bet.Status)
		}

		bet = bet.Clone()
		result := bet.SettlementResult(outcome)
		now := e.now()
		bet.Status = outcome
		bet.Result = &result
		bet.SettledAt = &now
		settled = bet

		cs := domain.Changeset{
			Bets:   []domain.Bet{bet},
			Guards: []domain.Guard{{BetID: betID, Status: domain.BetStatusPending}},
			Outbox: []domain.OutboxDraft{domain.NewBetSettledEvent(bet)},
		}

		if m, ok := s.Member(bet.MemberID); ok {
			original := m
			e.policy.ApplySettlement(&m, bet)
			if change := domain.DiffBalances(original, m); !change.IsZero() {
				cs.Balances = []domain.BalanceChange{change}
			}
		} else {
			e.logger.Warn("settling bet of unknown member", "bet_id", betID, "member_id", bet.MemberID)
		}
		return cs, nil
	})
	if err != nil {
		return nil, err
	}

	metrics.BetsSettled.WithLabelValues(string(outcome)).Inc()
	return &settled, nil
}
