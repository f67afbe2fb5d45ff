package stats

import (
	"github.com/betpool/tracker/internal/domain"
)

// SharpShooterMinBets is the bet count needed to compete for Sharp Shooter.
const SharpShooterMinBets = 5

// AwardKind names an award.
type AwardKind string

const (
	AwardBigSpender   AwardKind = "big_spender"
	AwardHighRoller   AwardKind = "high_roller"
	AwardSharpShooter AwardKind = "sharp_shooter"
	AwardDarkHorse    AwardKind = "dark_horse"
	AwardDangerZone   AwardKind = "danger_zone"
)

// Award is a badge held by one member. Value is in the award's own unit:
// cents for money awards, percent for Sharp Shooter.
type Award struct {
	Kind       AwardKind `json:"kind"`
	Title      string    `json:"title"`
	MemberID   int64     `json:"member_id"`
	MemberName string    `json:"member_name"`
	Value      float64   `json:"value"`
}

type awardRule struct {
	kind     AwardKind
	title    string
	eligible func(MemberStats) bool
	value    func(MemberStats) float64
	// lowest picks the minimum value instead of the maximum.
	lowest bool
}

var awardRules = []awardRule{
	{
		kind:     AwardBigSpender,
		title:    "Big Spender",
		eligible: func(s MemberStats) bool { return s.TotalStaked > 0 },
		value:    func(s MemberStats) float64 { return float64(s.TotalStaked) },
	},
	{
		kind:     AwardHighRoller,
		title:    "High Roller",
		eligible: func(s MemberStats) bool { return s.AvgStake > 0 },
		value:    func(s MemberStats) float64 { return s.AvgStake },
	},
	{
		kind:     AwardSharpShooter,
		title:    "Sharp Shooter",
		eligible: func(s MemberStats) bool { return s.TotalBets >= SharpShooterMinBets },
		value:    func(s MemberStats) float64 { return s.WinRate },
	},
	{
		kind:     AwardDarkHorse,
		title:    "Dark Horse",
		eligible: func(s MemberStats) bool { return s.BestWin > 0 },
		value:    func(s MemberStats) float64 { return float64(s.BestWin) },
	},
	{
		kind:     AwardDangerZone,
		title:    "Danger Zone",
		eligible: func(s MemberStats) bool { return s.WorstLoss < 0 },
		value:    func(s MemberStats) float64 { return float64(s.WorstLoss) },
		lowest:   true,
	},
}

// Awards evaluates every award independently. Ties go to the member created first.
// No awards are given before any bet exists.
func Awards(members []domain.Member, bets []domain.Bet) []Award {
	awards := []Award{}
	if len(bets) == 0 {
		return awards
	}

	all := make([]MemberStats, len(members))
	for i, m := range members {
		all[i] = ForMember(bets, m.ID)
	}

	for _, rule := range awardRules {
		best := -1
		for i, s := range all {
			if !rule.eligible(s) {
				continue
			}
			if best < 0 || beats(rule, rule.value(s), rule.value(all[best])) {
				best = i
			}
		}
		if best < 0 {
			continue
		}
		awards = append(awards, Award{
			Kind:       rule.kind,
			Title:      rule.title,
			MemberID:   members[best].ID,
			MemberName: members[best].Name,
			Value:      rule.value(all[best]),
		})
	}
	return awards
}

func beats(rule awardRule, candidate, current float64) bool {
	if rule.lowest {
		return candidate < current
	}
	return candidate > current
}
