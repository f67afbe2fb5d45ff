package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/betpool/tracker/internal/domain"
)

// MemoryStore is a map-backed Store. It enforces the same guards and
// name uniqueness as PostgresStore and keeps every committed outbox draft.
type MemoryStore struct {
	mu           sync.Mutex
	members      map[int64]domain.Member
	bets         map[int64]domain.Bet
	events       map[int64]domain.Event
	betOfTheWeek *int64
	outbox       []domain.OutboxDraft
	commits      int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		members: make(map[int64]domain.Member),
		bets:    make(map[int64]domain.Bet),
		events:  make(map[int64]domain.Event),
	}
}

// Seed loads a snapshot into the store, replacing its contents.
func (s *MemoryStore) Seed(snap *domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.members = make(map[int64]domain.Member, len(snap.Members))
	s.bets = make(map[int64]domain.Bet, len(snap.Bets))
	s.events = make(map[int64]domain.Event, len(snap.Events))
	for _, m := range snap.Members {
		s.members[m.ID] = m
	}
	for _, b := range snap.Bets {
		s.bets[b.ID] = b.Clone()
	}
	for _, e := range snap.Events {
		s.events[e.ID] = e.Clone()
	}
	s.betOfTheWeek = nil
	if snap.BetOfTheWeek != nil {
		id := *snap.BetOfTheWeek
		s.betOfTheWeek = &id
	}
}

func (s *MemoryStore) Load(_ context.Context) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &domain.Snapshot{
		Members: make([]domain.Member, 0, len(s.members)),
		Bets:    make([]domain.Bet, 0, len(s.bets)),
		Events:  make([]domain.Event, 0, len(s.events)),
	}
	for _, m := range s.members {
		snap.Members = append(snap.Members, m)
	}
	for _, b := range s.bets {
		snap.Bets = append(snap.Bets, b.Clone())
	}
	for _, e := range s.events {
		snap.Events = append(snap.Events, e.Clone())
	}
	if s.betOfTheWeek != nil {
		id := *s.betOfTheWeek
		snap.BetOfTheWeek = &id
	}
	snap.Normalize()
	return snap, nil
}

func (s *MemoryStore) Commit(_ context.Context, cs domain.Changeset) (domain.CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range cs.Guards {
		b, ok := s.bets[g.BetID]
		if !ok {
			return domain.CommitResult{}, domain.ErrNotFound("bet", fmt.Sprint(g.BetID))
		}
		if b.Status != g.Status {
			if g.Status == domain.BetStatusPending {
				return domain.CommitResult{}, domain.ErrAlreadySettled(g.BetID, b.Status)
			}
			return domain.CommitResult{}, domain.ErrConflict(fmt.Sprintf("bet %d is %s, expected %s", g.BetID, b.Status, g.Status))
		}
	}
	for _, m := range cs.Members {
		for _, existing := range s.members {
			if existing.ID != m.ID && existing.Name == m.Name {
				return domain.CommitResult{}, domain.ErrConflict(fmt.Sprintf("member %q already exists", m.Name))
			}
		}
	}

	staged := make(map[int64]domain.Member, len(cs.Balances))
	order := make([]int64, 0, len(cs.Balances))
	for _, c := range cs.Balances {
		m, ok := staged[c.MemberID]
		if !ok {
			if m, ok = s.memberForChange(cs.Members, c.MemberID); !ok {
				return domain.CommitResult{}, domain.ErrNotFound("member", fmt.Sprint(c.MemberID))
			}
			order = append(order, c.MemberID)
		}
		if err := c.ApplyTo(&m); err != nil {
			return domain.CommitResult{}, err
		}
		staged[c.MemberID] = m
	}

	for _, m := range cs.Members {
		s.members[m.ID] = m
	}
	var res domain.CommitResult
	for _, id := range order {
		s.members[id] = staged[id]
		res.Members = append(res.Members, staged[id])
	}
	for _, id := range cs.DeleteBets {
		delete(s.bets, id)
	}
	for _, b := range cs.Bets {
		s.bets[b.ID] = b.Clone()
	}
	for _, id := range cs.DeleteEvents {
		delete(s.events, id)
	}
	for _, e := range cs.Events {
		s.events[e.ID] = e.Clone()
	}
	if cs.BetOfTheWeek != nil {
		s.betOfTheWeek = nil
		if cs.BetOfTheWeek.BetID != nil {
			id := *cs.BetOfTheWeek.BetID
			s.betOfTheWeek = &id
		}
	}
	s.outbox = append(s.outbox, cs.Outbox...)
	s.commits++
	return res, nil
}

// memberForChange resolves the row a balance change starts from, preferring
// one written by the same changeset.
func (s *MemoryStore) memberForChange(written []domain.Member, id int64) (domain.Member, bool) {
	for _, m := range written {
		if m.ID == id {
			return m, true
		}
	}
	m, ok := s.members[id]
	return m, ok
}

// Outbox returns the drafts committed so far, oldest first.
func (s *MemoryStore) Outbox() []domain.OutboxDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.OutboxDraft{}, s.outbox...)
}

// Commits returns the number of successful commits.
func (s *MemoryStore) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// HealthCheck always succeeds.
func (s *MemoryStore) HealthCheck(_ context.Context) error { return nil }
