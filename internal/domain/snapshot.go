package domain

import (
	"slices"
)

// Snapshot is the full state of the group as read from the store.
// Members are in creation order; bets and events are newest first.
type Snapshot struct {
	Members      []Member `json:"members"`
	Bets         []Bet    `json:"bets"`
	Events       []Event  `json:"events"`
	BetOfTheWeek *int64   `json:"bet_of_the_week"`
	Version      uint64   `json:"version"`
}

// Normalize sorts the collections into the order the engine relies on.
func (s *Snapshot) Normalize() {
	slices.SortStableFunc(s.Members, func(a, b Member) int { return cmpInt64(a.ID, b.ID) })
	slices.SortStableFunc(s.Bets, func(a, b Bet) int { return cmpInt64(b.ID, a.ID) })
	slices.SortStableFunc(s.Events, func(a, b Event) int { return cmpInt64(b.ID, a.ID) })
}

// Clone returns a deep copy safe to hand out to callers.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Members: append([]Member{}, s.Members...),
		Bets:    make([]Bet, len(s.Bets)),
		Events:  make([]Event, len(s.Events)),
		Version: s.Version,
	}
	for i, b := range s.Bets {
		out.Bets[i] = b.Clone()
	}
	for i, e := range s.Events {
		out.Events[i] = e.Clone()
	}
	if s.BetOfTheWeek != nil {
		id := *s.BetOfTheWeek
		out.BetOfTheWeek = &id
	}
	return out
}

// Member looks up a member by id.
func (s *Snapshot) Member(id int64) (Member, bool) {
	for _, m := range s.Members {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

// MemberByName looks up a member by display name.
func (s *Snapshot) MemberByName(name string) (Member, bool) {
	for _, m := range s.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

// Bet looks up a bet by id.
func (s *Snapshot) Bet(id int64) (Bet, bool) {
	for _, b := range s.Bets {
		if b.ID == id {
			return b, true
		}
	}
	return Bet{}, false
}

// Event looks up an event by id.
func (s *Snapshot) Event(id int64) (Event, bool) {
	for _, e := range s.Events {
		if e.ID == id {
			return e, true
		}
	}
	return Event{}, false
}

// Apply folds a committed changeset into the snapshot.
func (s *Snapshot) Apply(cs Changeset) {
	for _, m := range cs.Members {
		if i := slices.IndexFunc(s.Members, func(x Member) bool { return x.ID == m.ID }); i >= 0 {
			s.Members[i] = m
		} else {
			s.Members = append(s.Members, m)
		}
	}
	for _, c := range cs.Balances {
		if i := slices.IndexFunc(s.Members, func(x Member) bool { return x.ID == c.MemberID }); i >= 0 {
			// The store already accepted the change against its own row.
			_ = c.ApplyTo(&s.Members[i])
		}
	}
	for _, b := range cs.Bets {
		if i := slices.IndexFunc(s.Bets, func(x Bet) bool { return x.ID == b.ID }); i >= 0 {
			s.Bets[i] = b.Clone()
		} else {
			s.Bets = append(s.Bets, b.Clone())
		}
	}
	for _, e := range cs.Events {
		if i := slices.IndexFunc(s.Events, func(x Event) bool { return x.ID == e.ID }); i >= 0 {
			s.Events[i] = e.Clone()
		} else {
			s.Events = append(s.Events, e.Clone())
		}
	}
	if len(cs.DeleteBets) > 0 {
		s.Bets = slices.DeleteFunc(s.Bets, func(b Bet) bool { return slices.Contains(cs.DeleteBets, b.ID) })
	}
	if len(cs.DeleteEvents) > 0 {
		s.Events = slices.DeleteFunc(s.Events, func(e Event) bool { return slices.Contains(cs.DeleteEvents, e.ID) })
	}
	if cs.BetOfTheWeek != nil {
		s.BetOfTheWeek = cs.BetOfTheWeek.BetID
	}
	s.Normalize()
}

// Clone deep-copies the bet's pointer fields.
func (b Bet) Clone() Bet {
	if b.Result != nil {
		r := *b.Result
		b.Result = &r
	}
	if b.SettledAt != nil {
		t := *b.SettledAt
		b.SettledAt = &t
	}
	return b
}

// Clone deep-copies the event's attendee list.
func (e Event) Clone() Event {
	e.Attendees = slices.Clone(e.Attendees)
	if e.Attendees == nil {
		e.Attendees = []string{}
	}
	if e.CompletedAt != nil {
		t := *e.CompletedAt
		e.CompletedAt = &t
	}
	return e
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
