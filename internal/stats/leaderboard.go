package stats

import (
	"slices"

	"github.com/betpool/tracker/internal/domain"
)

// LeaderboardEntry is one ranked member.
type LeaderboardEntry struct {
	Rank   int           `json:"rank"`
	Member domain.Member `json:"member"`
	Stats  MemberStats   `json:"stats"`
}

// Leaderboard ranks members by total profit, highest first.
// Equal profits keep member order. Ranks start at 1.
func Leaderboard(members []domain.Member, bets []domain.Bet) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, len(members))
	for i, m := range members {
		entries[i] = LeaderboardEntry{Member: m, Stats: ForMember(bets, m.ID)}
	}

	slices.SortStableFunc(entries, func(a, b LeaderboardEntry) int {
		switch {
		case a.Stats.TotalProfit > b.Stats.TotalProfit:
			return -1
		case a.Stats.TotalProfit < b.Stats.TotalProfit:
			return 1
		default:
			return 0
		}
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
