package repository

import (
	"context"
	"testing"

	"github.com/betpool/tracker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestMemoryStore_CommitAndLoad(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Commit(ctx, domain.Changeset{
		Members:      []domain.Member{{ID: 2, Name: "Bob"}, {ID: 1, Name: "Ann"}},
		Bets:         []domain.Bet{{ID: 10, MemberID: 1, Status: domain.BetStatusPending}, {ID: 20, MemberID: 2, Status: domain.BetStatusPending}},
		Events:       []domain.Event{{ID: 5, Name: "Dinner"}},
		BetOfTheWeek: &domain.BetOfTheWeekChange{BetID: int64Ptr(20)},
		Outbox:       []domain.OutboxDraft{domain.NewMemberCreatedEvent(domain.Member{ID: 1})},
	})
	require.NoError(t, err)

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Members, 2)
	assert.Equal(t, "Ann", snap.Members[0].Name)
	require.Len(t, snap.Bets, 2)
	assert.Equal(t, int64(20), snap.Bets[0].ID)
	assert.Equal(t, []string{}, snap.Events[0].Attendees)
	require.NotNil(t, snap.BetOfTheWeek)
	assert.Equal(t, int64(20), *snap.BetOfTheWeek)
	assert.Len(t, s.Outbox(), 1)
	assert.Equal(t, 1, s.Commits())
}

func TestMemoryStore_Guards(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.Commit(ctx, domain.Changeset{
		Bets: []domain.Bet{{ID: 1, Status: domain.BetStatusWon, Result: int64Ptr(10)}},
	})
	require.NoError(t, err)

	t.Run("settled bet rejects pending guard", func(t *testing.T) {
		_, err := s.Commit(ctx, domain.Changeset{
			Bets:   []domain.Bet{{ID: 1, Status: domain.BetStatusLost, Result: int64Ptr(-10)}},
			Guards: []domain.Guard{{BetID: 1, Status: domain.BetStatusPending}},
		})
		assert.True(t, domain.HasCode(err, domain.CodeAlreadySettled))

		snap, _ := s.Load(ctx)
		assert.Equal(t, domain.BetStatusWon, snap.Bets[0].Status)
	})

	t.Run("missing bet", func(t *testing.T) {
		_, err := s.Commit(ctx, domain.Changeset{Guards: []domain.Guard{{BetID: 99, Status: domain.BetStatusPending}}})
		assert.True(t, domain.HasCode(err, domain.CodeNotFound))
	})

	t.Run("other status mismatch", func(t *testing.T) {
		_, err := s.Commit(ctx, domain.Changeset{Guards: []domain.Guard{{BetID: 1, Status: domain.BetStatusLost}}})
		assert.True(t, domain.HasCode(err, domain.CodeConflict))
	})

	assert.Equal(t, 1, s.Commits())
}

func TestMemoryStore_UniqueMemberName(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.Commit(ctx, domain.Changeset{Members: []domain.Member{{ID: 1, Name: "Ann"}}})
	require.NoError(t, err)

	_, err = s.Commit(ctx, domain.Changeset{Members: []domain.Member{{ID: 2, Name: "Ann"}}})
	assert.True(t, domain.HasCode(err, domain.CodeConflict))

	_, err = s.Commit(ctx, domain.Changeset{Members: []domain.Member{{ID: 1, Name: "Ann", Bankroll: 500}}})
	require.NoError(t, err)
}

func TestMemoryStore_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Seed(&domain.Snapshot{
		Bets:         []domain.Bet{{ID: 1}},
		Events:       []domain.Event{{ID: 2}},
		BetOfTheWeek: int64Ptr(1),
	})

	_, err := s.Commit(ctx, domain.Changeset{
		DeleteBets:   []int64{1},
		DeleteEvents: []int64{2},
		BetOfTheWeek: &domain.BetOfTheWeekChange{},
	})
	require.NoError(t, err)

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Bets)
	assert.Empty(t, snap.Events)
	assert.Nil(t, snap.BetOfTheWeek)
}

func TestMemoryStore_BalanceChangesApplyToStoredRow(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Seed(&domain.Snapshot{Members: []domain.Member{{ID: 1, Name: "Ann", Bankroll: 10000, InitialBankroll: 10000}}})

	_, err := s.Commit(ctx, domain.Changeset{Balances: []domain.BalanceChange{{MemberID: 1, Bankroll: -2000, RequireFunds: true}}})
	require.NoError(t, err)

	res, err := s.Commit(ctx, domain.Changeset{Balances: []domain.BalanceChange{{MemberID: 1, Bankroll: 1000, InitialBankroll: 1000}}})
	require.NoError(t, err)
	require.Len(t, res.Members, 1)
	assert.Equal(t, int64(9000), res.Members[0].Bankroll)
	assert.Equal(t, int64(11000), res.Members[0].InitialBankroll)

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9000), snap.Members[0].Bankroll)
}

func TestMemoryStore_BalanceChangeRejectedAtomically(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Seed(&domain.Snapshot{Members: []domain.Member{{ID: 1, Name: "Ann", Bankroll: 1000}}})

	t.Run("insufficient stored funds", func(t *testing.T) {
		_, err := s.Commit(ctx, domain.Changeset{
			Bets:     []domain.Bet{{ID: 5, MemberID: 1, Stake: 2000, Status: domain.BetStatusPending}},
			Balances: []domain.BalanceChange{{MemberID: 1, Bankroll: -2000, RequireFunds: true}},
		})
		assert.True(t, domain.HasCode(err, domain.CodeInsufficientFunds))
	})

	t.Run("ceiling", func(t *testing.T) {
		_, err := s.Commit(ctx, domain.Changeset{
			Balances: []domain.BalanceChange{{MemberID: 1, Bankroll: domain.MaxAmount, Ceiling: domain.MaxAmount}},
		})
		assert.True(t, domain.HasCode(err, domain.CodeValidation))
	})

	t.Run("unknown member", func(t *testing.T) {
		_, err := s.Commit(ctx, domain.Changeset{Balances: []domain.BalanceChange{{MemberID: 9, Bankroll: 1}}})
		assert.True(t, domain.HasCode(err, domain.CodeNotFound))
	})

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Bets)
	assert.Equal(t, int64(1000), snap.Members[0].Bankroll)
	assert.Zero(t, s.Commits())
}
