package ledger

import (
	"context"
	"fmt"

	"github.com/betpool/tracker/internal/domain"
)

// DeleteBet removes a bet and reverses every balance effect it had,
// whatever its status. A reference from bet of the week is left dangling.
func (e *Engine) DeleteBet(ctx context.Context, betID int64) error {
	return e.execute(ctx, "delete_bet", func(s *domain.Snapshot) (domain.Changeset, error) {
		bet, ok := s.Bet(betID)
		if !ok {
			return domain.Changeset{}, domain.ErrNotFound("bet", fmt.Sprint(betID))
		}

		cs := domain.Changeset{
			DeleteBets: []int64{betID},
			Guards:     []domain.Guard{{BetID: betID, Status: bet.Status}},
		}

		var reversed int64
		if m, ok := s.Member(bet.MemberID); ok {
			original := m
			e.policy.ApplyReversal(&m, bet)
			if change := domain.DiffBalances(original, m); !change.IsZero() {
				reversed = change.Bankroll
				cs.Balances = []domain.BalanceChange{change}
			}
			if m.Bankroll < 0 {
				e.logger.Warn("bet reversal leaves negative bankroll",
					"bet_id", betID, "member_id", m.ID, "bankroll", m.Bankroll)
			}
		}

		cs.Outbox = []domain.OutboxDraft{domain.NewBetDeletedEvent(bet, reversed)}
		return cs, nil
	})
}
