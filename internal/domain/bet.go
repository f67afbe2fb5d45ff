package domain

import "time"

// BetStatus tracks the lifecycle of a bet.
type BetStatus string

const (
	BetStatusPending BetStatus = "pending"
	BetStatusWon     BetStatus = "won"
	BetStatusLost    BetStatus = "lost"
	BetStatusVoid    BetStatus = "void"
)

// IsTerminal reports whether no further transition is allowed.
func (s BetStatus) IsTerminal() bool {
	return s == BetStatusWon || s == BetStatusLost || s == BetStatusVoid
}

// ParseOutcome validates a settlement outcome.
func ParseOutcome(s string) (BetStatus, error) {
	status := BetStatus(s)
	if !status.IsTerminal() {
		return "", ErrValidation("outcome must be one of won, lost, void")
	}
	return status, nil
}

// ParseBetStatus validates any bet status, pending included.
func ParseBetStatus(s string) (BetStatus, error) {
	if BetStatus(s) == BetStatusPending {
		return BetStatusPending, nil
	}
	return ParseOutcome(s)
}

// Bet is a single wager placed by a member.
// PotentialReturn is fixed at placement; Result is nil while pending.
type Bet struct {
	ID              int64      `json:"id"`
	MemberID        int64      `json:"member_id"`
	MemberName      string     `json:"member_name"`
	Sport           string     `json:"sport"`
	Selection       string     `json:"selection"`
	Type            string     `json:"type"`
	Stake           int64      `json:"stake"`
	Odds            float64    `json:"odds"`
	PotentialReturn int64      `json:"potential_return"`
	EventDate       string     `json:"event_date"`
	Status          BetStatus  `json:"status"`
	Result          *int64     `json:"result"`
	PlacedAt        time.Time  `json:"placed_at"`
	SettledAt       *time.Time `json:"settled_at,omitempty"`
}

// ResultOrZero treats a pending bet's result as 0.
func (b Bet) ResultOrZero() int64 {
	if b.Result == nil {
		return 0
	}
	return *b.Result
}

// SettlementResult returns the signed result for settling the bet with outcome.
func (b Bet) SettlementResult(outcome BetStatus) int64 {
	switch outcome {
	case BetStatusWon:
		return b.PotentialReturn - b.Stake
	case BetStatusLost:
		return -b.Stake
	default:
		return 0
	}
}

// BetFilter narrows a bet listing. Zero values match everything.
type BetFilter struct {
	Status   BetStatus
	MemberID int64
}

// Matches reports whether the bet passes the filter.
func (f BetFilter) Matches(b Bet) bool {
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.MemberID != 0 && b.MemberID != f.MemberID {
		return false
	}
	return true
}

// PlaceBetParams holds the input for PlaceBet.
type PlaceBetParams struct {
	MemberID  int64
	Sport     string
	Selection string
	Type      string
	Stake     int64
	Odds      float64
	EventDate string
}
