package ledger

import (
	"github.com/betpool/tracker/internal/domain"
)

const (
	// RecentBetsLimit is the dashboard's recent bets count.
	RecentBetsLimit = 5
	// UpcomingEventsLimit is the dashboard's upcoming events count.
	UpcomingEventsLimit = 3
)

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() *domain.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap.Clone()
}

// Version returns the current snapshot version.
func (e *Engine) Version() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap.Version
}

// Members returns all members in creation order.
func (e *Engine) Members() []domain.Member {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]domain.Member{}, e.snap.Members...)
}

// Member returns one member.
func (e *Engine) Member(id int64) (domain.Member, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap.Member(id)
}

// Bet returns one bet.
func (e *Engine) Bet(id int64) (domain.Bet, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	b, ok := e.snap.Bet(id)
	return b.Clone(), ok
}

// Bets returns bets newest first, narrowed by filter.
func (e *Engine) Bets(filter domain.BetFilter) []domain.Bet {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := []domain.Bet{}
	for _, b := range e.snap.Bets {
		if filter.Matches(b) {
			out = append(out, b.Clone())
		}
	}
	return out
}

// RecentBets returns up to n newest bets.
func (e *Engine) RecentBets(n int) []domain.Bet {
	e.mu.RLock()
	defer e.mu.RUnlock()

	n = min(max(n, 0), len(e.snap.Bets))
	out := make([]domain.Bet, n)
	for i := range n {
		out[i] = e.snap.Bets[i].Clone()
	}
	return out
}

// Events returns all events newest first.
func (e *Engine) Events() []domain.Event {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]domain.Event, len(e.snap.Events))
	for i, ev := range e.snap.Events {
		out[i] = ev.Clone()
	}
	return out
}

// Event returns one event.
func (e *Engine) Event(id int64) (domain.Event, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ev, ok := e.snap.Event(id)
	return ev.Clone(), ok
}

// UpcomingEvents returns up to n newest events still upcoming.
func (e *Engine) UpcomingEvents(n int) []domain.Event {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := []domain.Event{}
	for _, ev := range e.snap.Events {
		if len(out) >= n {
			break
		}
		if ev.Status == domain.EventStatusUpcoming {
			out = append(out, ev.Clone())
		}
	}
	return out
}

// BetOfTheWeek resolves the featured bet reference.
func (e *Engine) BetOfTheWeek() domain.BetOfTheWeekView {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return resolveBetOfTheWeek(e.snap)
}

func resolveBetOfTheWeek(s *domain.Snapshot) domain.BetOfTheWeekView {
	if s.BetOfTheWeek == nil {
		return domain.BetOfTheWeekView{State: domain.BetOfTheWeekNone}
	}
	id := *s.BetOfTheWeek
	bet, ok := s.Bet(id)
	if !ok {
		return domain.BetOfTheWeekView{State: domain.BetOfTheWeekNotFound, BetID: &id}
	}
	bet = bet.Clone()
	return domain.BetOfTheWeekView{State: domain.BetOfTheWeekActive, BetID: &id, Bet: &bet}
}
