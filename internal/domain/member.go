package domain

import "time"

// Member is one participant of the group. Amounts are integer cents.
type Member struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Contribution    int64     `json:"contribution"`
	Bankroll        int64     `json:"bankroll"`
	InitialBankroll int64     `json:"initial_bankroll"`
	CreatedAt       time.Time `json:"created_at"`
}

// BankrollChange is the bankroll movement since the initial funding.
func (m Member) BankrollChange() int64 {
	return m.Bankroll - m.InitialBankroll
}
