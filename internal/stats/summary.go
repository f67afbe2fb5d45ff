package stats

import (
	"github.com/betpool/tracker/internal/domain"
)

// Dashboard holds the headline numbers.
type Dashboard struct {
	TotalBets   int   `json:"total_bets"`
	ActiveBets  int   `json:"active_bets"`
	TotalStaked int64 `json:"total_staked"`
	TotalProfit int64 `json:"total_profit"`
}

// PoolSummary is the shared-fund view used in pool mode.
type PoolSummary struct {
	TotalContributions int64 `json:"total_contributions"`
	BettingProfit      int64 `json:"betting_profit"`
	EventCosts         int64 `json:"event_costs"`
	NetPool            int64 `json:"net_pool"`
}

// BankrollSummary is the per-member balance view used in bankroll mode.
type BankrollSummary struct {
	TotalBankroll int64 `json:"total_bankroll"`
	TotalInitial  int64 `json:"total_initial"`
	BettingProfit int64 `json:"betting_profit"`
	EventCosts    int64 `json:"event_costs"`
}

// MemberBalance is one member's row in the balance table.
type MemberBalance struct {
	MemberID       int64  `json:"member_id"`
	Name           string `json:"name"`
	Contribution   int64  `json:"contribution"`
	Bankroll       int64  `json:"bankroll"`
	Bets           int    `json:"bets"`
	Staked         int64  `json:"staked"`
	BetProfit      int64  `json:"bet_profit"`
	BankrollChange int64  `json:"bankroll_change"`
}

// Summary is every aggregate the board shows.
type Summary struct {
	Dashboard Dashboard       `json:"dashboard"`
	Pool      PoolSummary     `json:"pool"`
	Bankroll  BankrollSummary `json:"bankroll"`
	Members   []MemberBalance `json:"members"`
}

// Summarize computes the dashboard, pool, bankroll and member summaries.
func Summarize(s *domain.Snapshot) Summary {
	var out Summary
	out.Members = make([]MemberBalance, 0, len(s.Members))

	for _, b := range s.Bets {
		out.Dashboard.TotalBets++
		out.Dashboard.TotalStaked += b.Stake
		out.Dashboard.TotalProfit += b.ResultOrZero()
		if b.Status == domain.BetStatusPending {
			out.Dashboard.ActiveBets++
		}
	}

	costs := CompletedEventCosts(s.Events)

	for _, m := range s.Members {
		out.Pool.TotalContributions += m.Contribution
		out.Bankroll.TotalBankroll += m.Bankroll
		out.Bankroll.TotalInitial += m.InitialBankroll

		row := MemberBalance{
			MemberID:       m.ID,
			Name:           m.Name,
			Contribution:   m.Contribution,
			Bankroll:       m.Bankroll,
			BankrollChange: m.BankrollChange(),
		}
		for _, b := range s.Bets {
			if b.MemberID != m.ID {
				continue
			}
			row.Bets++
			row.Staked += b.Stake
			row.BetProfit += b.ResultOrZero()
		}
		out.Members = append(out.Members, row)
	}

	out.Pool.BettingProfit = out.Dashboard.TotalProfit
	out.Pool.EventCosts = costs
	out.Pool.NetPool = out.Pool.TotalContributions + out.Pool.BettingProfit - costs

	out.Bankroll.BettingProfit = out.Bankroll.TotalBankroll - out.Bankroll.TotalInitial
	out.Bankroll.EventCosts = costs
	return out
}

// CompletedEventCosts sums the cost of completed events.
func CompletedEventCosts(events []domain.Event) int64 {
	var total int64
	for _, e := range events {
		if e.Status == domain.EventStatusCompleted {
			total += e.Cost
		}
	}
	return total
}
