package domain

import (
	"fmt"
	"math"
)

// MaxAmount is the largest amount in cents accepted for a stake, a deposit,
// a balance or a potential return.
const MaxAmount int64 = 1_000_000_000_000

// maxStoredAmount is what a numeric(15,0) column holds.
const maxStoredAmount int64 = 999_999_999_999_999

// BalanceChange moves one member's stored balances. It is applied to the
// row as stored at commit time, never to a cached copy.
type BalanceChange struct {
	MemberID int64

	Contribution    int64
	Bankroll        int64
	InitialBankroll int64

	// Set, when non-nil, overwrites the tracked balance before the deltas apply.
	Set *BalanceSet

	// RequireFunds rejects a bankroll debit larger than the stored bankroll.
	RequireFunds bool

	// Ceiling, when positive, caps every resulting balance.
	Ceiling int64
}

// BalanceSet is an absolute balance override for one pool mode.
type BalanceSet struct {
	Mode   PoolMode
	Amount int64
}

// DiffBalances returns the change that turns before into after.
func DiffBalances(before, after Member) BalanceChange {
	return BalanceChange{
		MemberID:        after.ID,
		Contribution:    after.Contribution - before.Contribution,
		Bankroll:        after.Bankroll - before.Bankroll,
		InitialBankroll: after.InitialBankroll - before.InitialBankroll,
	}
}

// IsZero reports whether the change leaves every balance as it is.
func (c BalanceChange) IsZero() bool {
	return c.Set == nil && c.Contribution == 0 && c.Bankroll == 0 && c.InitialBankroll == 0
}

// ApplyTo moves m's balances. m is left untouched on error.
func (c BalanceChange) ApplyTo(m *Member) error {
	next := *m
	if c.Set != nil {
		switch c.Set.Mode {
		case ModeBankroll:
			next.Bankroll = c.Set.Amount
			if next.InitialBankroll == 0 && c.Set.Amount > 0 {
				next.InitialBankroll = c.Set.Amount
			}
		default:
			next.Contribution = c.Set.Amount
		}
	}

	if c.RequireFunds && c.Bankroll < 0 && next.Bankroll < -c.Bankroll {
		return ErrInsufficientFunds(m.Name, next.Bankroll, -c.Bankroll)
	}

	var ok bool
	if next.Contribution, ok = addAmount(next.Contribution, c.Contribution); !ok {
		return ErrValidation(fmt.Sprintf("contribution of member %d is out of range", m.ID))
	}
	if next.Bankroll, ok = addAmount(next.Bankroll, c.Bankroll); !ok {
		return ErrValidation(fmt.Sprintf("bankroll of member %d is out of range", m.ID))
	}
	if next.InitialBankroll, ok = addAmount(next.InitialBankroll, c.InitialBankroll); !ok {
		return ErrValidation(fmt.Sprintf("initial bankroll of member %d is out of range", m.ID))
	}

	if c.Ceiling > 0 {
		if next.Contribution > c.Ceiling || next.Bankroll > c.Ceiling || next.InitialBankroll > c.Ceiling {
			return ErrValidation(fmt.Sprintf("balance of member %d would exceed %s", m.ID, FormatCents(c.Ceiling)))
		}
	}

	*m = next
	return nil
}

// addAmount adds d to a and reports false on int64 overflow or when the sum
// does not fit the stored column.
func addAmount(a, d int64) (int64, bool) {
	if (d > 0 && a > math.MaxInt64-d) || (d < 0 && a < math.MinInt64-d) {
		return 0, false
	}
	sum := a + d
	if sum > maxStoredAmount || sum < -maxStoredAmount {
		return 0, false
	}
	return sum, true
}
