package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/betpool/tracker/internal/domain"
)

// CreateMember adds a member. amount seeds the contribution (pool mode) or
// the bankroll and initial bankroll (bankroll mode).
func (e *Engine) CreateMember(ctx context.Context, name string, amount int64) (*domain.Member, error) {
	name = strings.TrimSpace(name)
	if err := domain.ValidateName(name); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := domain.ValidateNonNegativeAmount(amount); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	var created domain.Member
	err := e.execute(ctx, "create_member", func(s *domain.Snapshot) (domain.Changeset, error) {
		if _, exists := s.MemberByName(name); exists {
			return domain.Changeset{}, domain.ErrConflict(fmt.Sprintf("member %q already exists", name))
		}

		now := e.now()
		m := domain.Member{ID: e.ids.next(now), Name: name, CreatedAt: now}
		if amount > 0 {
			e.policy.AddFunds(&m, amount)
		}
		created = m

		return domain.Changeset{
			Members: []domain.Member{m},
			Outbox:  []domain.OutboxDraft{domain.NewMemberCreatedEvent(m)},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// AddFunds tops up a member's contribution or bankroll. The resulting
// balance may not exceed domain.MaxAmount.
func (e *Engine) AddFunds(ctx context.Context, memberID int64, amount int64) (*domain.Member, error) {
	if err := domain.ValidatePositiveAmount(amount); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	return e.adjustMember(ctx, "add_funds", memberID, func(m domain.Member) domain.BalanceChange {
		after := m
		e.policy.AddFunds(&after, amount)
		change := domain.DiffBalances(m, after)
		change.Ceiling = domain.MaxAmount
		return change
	})
}

// SetBalance overwrites a member's contribution or bankroll.
func (e *Engine) SetBalance(ctx context.Context, memberID int64, amount int64) (*domain.Member, error) {
	if err := domain.ValidateNonNegativeAmount(amount); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	return e.adjustMember(ctx, "set_balance", memberID, func(m domain.Member) domain.BalanceChange {
		return domain.BalanceChange{
			MemberID: m.ID,
			Set:      &domain.BalanceSet{Mode: e.policy.Mode(), Amount: amount},
		}
	})
}

// adjustMember commits the balance change built from the snapshot's member and
// returns the member as stored afterwards.
func (e *Engine) adjustMember(ctx context.Context, command string, memberID int64, build func(m domain.Member) domain.BalanceChange) (*domain.Member, error) {
	var updated domain.Member
	err := e.executeThen(ctx, command, func(s *domain.Snapshot) (domain.Changeset, error) {
		m, ok := s.Member(memberID)
		if !ok {
			return domain.Changeset{}, domain.ErrNotFound("member", fmt.Sprint(memberID))
		}

		change := build(m)
		after := m
		if err := change.ApplyTo(&after); err != nil {
			return domain.Changeset{}, err
		}
		delta := balanceOf(e.policy.Mode(), after) - balanceOf(e.policy.Mode(), m)

		return domain.Changeset{
			Balances: []domain.BalanceChange{change},
			Outbox:   []domain.OutboxDraft{domain.NewFundsAdjustedEvent(after, delta)},
		}, nil
	}, func(s *domain.Snapshot) {
		updated, _ = s.Member(memberID)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// balanceOf is the balance field the mode tracks.
func balanceOf(mode domain.PoolMode, m domain.Member) int64 {
	if mode == domain.ModeBankroll {
		return m.Bankroll
	}
	return m.Contribution
}
