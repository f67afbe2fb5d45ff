package domain

// Changeset is the state delta produced by one ledger command.
// It is committed to the store as a unit and only then applied locally.
type Changeset struct {
	// Command names the operation for logs and metrics.
	Command string

	// Members holds rows written as given, which is how members are created.
	Members []Member
	// Balances move existing members relative to their stored balances.
	Balances []BalanceChange

	Bets         []Bet
	Events       []Event
	DeleteBets   []int64
	DeleteEvents []int64
	BetOfTheWeek *BetOfTheWeekChange

	// Guards must hold in the store at commit time or the commit is rejected.
	Guards []Guard

	Outbox []OutboxDraft
}

// CommitResult is what the store reports back from a commit.
type CommitResult struct {
	// Members are the stored rows of every member a balance change touched.
	Members []Member
}

// BetOfTheWeekChange sets (BetID != nil) or clears (BetID == nil) the featured bet.
type BetOfTheWeekChange struct {
	BetID *int64
}

// Guard is a precondition on a stored bet checked inside the commit.
type Guard struct {
	BetID  int64
	Status BetStatus
}

// IsEmpty reports whether the changeset writes nothing.
func (c Changeset) IsEmpty() bool {
	return len(c.Members) == 0 && len(c.Balances) == 0 && len(c.Bets) == 0 && len(c.Events) == 0 &&
		len(c.DeleteBets) == 0 && len(c.DeleteEvents) == 0 && c.BetOfTheWeek == nil
}

// BetOfTheWeekState describes how the featured bet reference resolves.
type BetOfTheWeekState string

const (
	BetOfTheWeekNone     BetOfTheWeekState = "none"
	BetOfTheWeekNotFound BetOfTheWeekState = "not_found"
	BetOfTheWeekActive   BetOfTheWeekState = "active"
)

// BetOfTheWeekView is the resolved featured bet.
type BetOfTheWeekView struct {
	State BetOfTheWeekState `json:"state"`
	BetID *int64            `json:"bet_id"`
	Bet   *Bet              `json:"bet,omitempty"`
}
