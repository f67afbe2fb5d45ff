package ledger

import (
	"fmt"

	"github.com/betpool/tracker/internal/domain"
)

// BalancePolicy decides how bets move member balances.
// Implementations mutate the member copy they are given.
type BalancePolicy interface {
	Mode() domain.PoolMode

	// ApplyStake runs on placement and may reject the bet.
	ApplyStake(m *domain.Member, stake int64) error

	// ApplySettlement runs on settle; bet already carries its terminal status.
	ApplySettlement(m *domain.Member, bet domain.Bet)

	// ApplyReversal undoes every balance effect the bet has had so far.
	ApplyReversal(m *domain.Member, bet domain.Bet)

	AddFunds(m *domain.Member, amount int64)
	SetBalance(m *domain.Member, amount int64)
}

// NewPolicy returns the policy for a pool mode.
func NewPolicy(mode domain.PoolMode) (BalancePolicy, error) {
	switch mode {
	case domain.ModePool:
		return PoolPolicy{}, nil
	case domain.ModeBankroll:
		return BankrollPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown pool mode: %q", mode)
	}
}

// PoolPolicy tracks contributions to one shared fund. Bets never touch members.
type PoolPolicy struct{}

func (PoolPolicy) Mode() domain.PoolMode { return domain.ModePool }

func (PoolPolicy) ApplyStake(*domain.Member, int64) error { return nil }

func (PoolPolicy) ApplySettlement(*domain.Member, domain.Bet) {}

func (PoolPolicy) ApplyReversal(*domain.Member, domain.Bet) {}

func (PoolPolicy) AddFunds(m *domain.Member, amount int64) {
	m.Contribution += amount
}

func (PoolPolicy) SetBalance(m *domain.Member, amount int64) {
	m.Contribution = amount
}

// BankrollPolicy gives each member a personal balance debited on stake.
type BankrollPolicy struct{}

func (BankrollPolicy) Mode() domain.PoolMode { return domain.ModeBankroll }

func (BankrollPolicy) ApplyStake(m *domain.Member, stake int64) error {
	if m.Bankroll < stake {
		return domain.ErrInsufficientFunds(m.Name, m.Bankroll, stake)
	}
	m.Bankroll -= stake
	return nil
}

func (BankrollPolicy) ApplySettlement(m *domain.Member, bet domain.Bet) {
	m.Bankroll += settlementCredit(bet)
}

func (BankrollPolicy) ApplyReversal(m *domain.Member, bet domain.Bet) {
	m.Bankroll += bet.Stake - settlementCredit(bet)
}

func (BankrollPolicy) AddFunds(m *domain.Member, amount int64) {
	m.Bankroll += amount
	m.InitialBankroll += amount
}

func (BankrollPolicy) SetBalance(m *domain.Member, amount int64) {
	m.Bankroll = amount
	if m.InitialBankroll == 0 && amount > 0 {
		m.InitialBankroll = amount
	}
}

// settlementCredit is what settling the bet paid back into the bankroll.
func settlementCredit(bet domain.Bet) int64 {
	switch bet.Status {
	case domain.BetStatusWon:
		return bet.PotentialReturn
	case domain.BetStatusVoid:
		return bet.Stake
	default:
		return 0
	}
}
