package ledger

import (
	"context"
	"fmt"

	"github.com/betpool/tracker/internal/domain"
)

// SetBetOfTheWeek features a pending bet.
func (e *Engine) SetBetOfTheWeek(ctx context.Context, betID int64) error {
	return e.execute(ctx, "set_bet_of_the_week", func(s *domain.Snapshot) (domain.Changeset, error) {
		bet, ok := s.Bet(betID)
		if !ok {
			return domain.Changeset{}, domain.ErrNotFound("bet", fmt.Sprint(betID))
		}
		if bet.Status != domain.BetStatusPending {
			return domain.Changeset{}, domain.ErrConflict(fmt.Sprintf("bet %d is %s, only pending bets can be featured", betID, bet.Status))
		}

		id := betID
		return domain.Changeset{
			BetOfTheWeek: &domain.BetOfTheWeekChange{BetID: &id},
			Outbox:       []domain.OutboxDraft{domain.NewBetOfTheWeekEvent(&id)},
		}, nil
	})
}

// ClearBetOfTheWeek unsets the featured bet.
func (e *Engine) ClearBetOfTheWeek(ctx context.Context) error {
	return e.execute(ctx, "clear_bet_of_the_week", func(_ *domain.Snapshot) (domain.Changeset, error) {
		return domain.Changeset{
			BetOfTheWeek: &domain.BetOfTheWeekChange{},
			Outbox:       []domain.OutboxDraft{domain.NewBetOfTheWeekEvent(nil)},
		}, nil
	})
}
