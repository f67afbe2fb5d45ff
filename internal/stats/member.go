// Package stats derives read-only statistics from a snapshot. Every function
// is pure and expects bets newest first, the order the ledger keeps them in.
package stats

import (
	"github.com/betpool/tracker/internal/domain"
)

// FormSize is how many settled bets make up a member's recent form.
const FormSize = 5

// StreakType is the outcome a current streak is made of.
type StreakType string

const (
	StreakWon  StreakType = "won"
	StreakLost StreakType = "lost"
	StreakNone StreakType = "none"
)

// FormEntry is one settled bet in a member's recent form.
type FormEntry struct {
	BetID  int64            `json:"bet_id"`
	Status domain.BetStatus `json:"status"`
	Result int64            `json:"result"`
}

// MemberStats aggregates one member's bets. Money fields are cents,
// WinRate and ROI are percentages.
type MemberStats struct {
	MemberID    int64       `json:"member_id"`
	TotalBets   int         `json:"total_bets"`
	WonBets     int         `json:"won_bets"`
	LostBets    int         `json:"lost_bets"`
	VoidBets    int         `json:"void_bets"`
	PendingBets int         `json:"pending_bets"`
	TotalStaked int64       `json:"total_staked"`
	TotalProfit int64       `json:"total_profit"`
	WinRate     float64     `json:"win_rate"`
	ROI         float64     `json:"roi"`
	AvgStake    float64     `json:"avg_stake"`
	BestWin     int64       `json:"best_win"`
	WorstLoss   int64       `json:"worst_loss"`
	BiggestOdds float64     `json:"biggest_odds"`
	Streak      int         `json:"streak"`
	StreakType  StreakType  `json:"streak_type"`
	Last5       []FormEntry `json:"last5"`
}

// ForMember computes stats for one member.
func ForMember(bets []domain.Bet, memberID int64) MemberStats {
	s := MemberStats{MemberID: memberID, StreakType: StreakNone, Last5: []FormEntry{}}

	var settled []domain.Bet
	first := true
	for _, b := range bets {
		if b.MemberID != memberID {
			continue
		}

		s.TotalBets++
		s.TotalStaked += b.Stake
		s.TotalProfit += b.ResultOrZero()
		if first || b.Odds > s.BiggestOdds {
			s.BiggestOdds = b.Odds
		}
		first = false

		switch b.Status {
		case domain.BetStatusPending:
			s.PendingBets++
			continue
		case domain.BetStatusWon:
			s.WonBets++
		case domain.BetStatusLost:
			s.LostBets++
		case domain.BetStatusVoid:
			s.VoidBets++
		}

		r := b.ResultOrZero()
		if len(settled) == 0 || r > s.BestWin {
			s.BestWin = r
		}
		if len(settled) == 0 || r < s.WorstLoss {
			s.WorstLoss = r
		}
		settled = append(settled, b)
	}

	if decisive := s.WonBets + s.LostBets; decisive > 0 {
		s.WinRate = float64(s.WonBets) / float64(decisive) * 100
	}
	if s.TotalStaked > 0 {
		s.ROI = float64(s.TotalProfit) / float64(s.TotalStaked) * 100
	}
	if s.TotalBets > 0 {
		s.AvgStake = float64(s.TotalStaked) / float64(s.TotalBets)
	}

	s.Streak, s.StreakType = streak(settled)

	n := min(FormSize, len(settled))
	for i := n - 1; i >= 0; i-- {
		b := settled[i]
		s.Last5 = append(s.Last5, FormEntry{BetID: b.ID, Status: b.Status, Result: b.ResultOrZero()})
	}
	return s
}

// streak counts equal outcomes from the newest settled bet backwards.
// A void ends the run; a void newest bet means no streak.
func streak(settled []domain.Bet) (int, StreakType) {
	if len(settled) == 0 || settled[0].Status == domain.BetStatusVoid {
		return 0, StreakNone
	}
	kind := settled[0].Status
	n := 0
	for _, b := range settled {
		if b.Status != kind {
			break
		}
		n++
	}
	return n, StreakType(kind)
}
