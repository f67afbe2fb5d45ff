package stats

import (
	"github.com/betpool/tracker/internal/domain"
)

// HotHandMinBets is how many settled bets a member needs in the window to qualify.
const HotHandMinBets = 3

// HotHandResult is the member with the best recent form.
type HotHandResult struct {
	Member       domain.Member `json:"member"`
	RecentProfit int64         `json:"recent_profit"`
	BetsCount    int           `json:"bets_count"`
}

// HotHand finds the member with the highest profit over their most recent
// FormSize settled bets. Nil when nobody qualifies or the best profit is not positive.
func HotHand(members []domain.Member, bets []domain.Bet) *HotHandResult {
	var best *HotHandResult
	for _, m := range members {
		var profit int64
		count := 0
		for _, b := range bets {
			if count == FormSize {
				break
			}
			if b.MemberID != m.ID || b.Status == domain.BetStatusPending {
				continue
			}
			profit += b.ResultOrZero()
			count++
		}
		if count < HotHandMinBets {
			continue
		}
		if best == nil || profit > best.RecentProfit {
			best = &HotHandResult{Member: m, RecentProfit: profit, BetsCount: count}
		}
	}

	if best == nil || best.RecentProfit <= 0 {
		return nil
	}
	return best
}
