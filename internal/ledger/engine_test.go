package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/betpool/tracker/internal/domain"
	"github.com/betpool/tracker/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testClock = time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, mode domain.PoolMode) (*Engine, *repository.MemoryStore) {
	t.Helper()
	policy, err := NewPolicy(mode)
	require.NoError(t, err)
	store := repository.NewMemoryStore()
	e := NewEngine(store, policy, discardLogger())
	e.now = func() time.Time { return testClock }
	return e, store
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	args := m.Called(ctx)
	snap, _ := args.Get(0).(*domain.Snapshot)
	return snap, args.Error(1)
}

func (m *mockStore) Commit(ctx context.Context, cs domain.Changeset) (domain.CommitResult, error) {
	args := m.Called(ctx, cs)
	res, _ := args.Get(0).(domain.CommitResult)
	return res, args.Error(1)
}

// --- Bankroll Mode Tests ---

func TestPlaceBet_BankrollWorkedExample(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, domain.ModeBankroll)

	m, err := e.CreateMember(ctx, "Ann", 10000)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), m.Bankroll)
	assert.Equal(t, int64(10000), m.InitialBankroll)

	bet, err := e.PlaceBet(ctx, domain.PlaceBetParams{MemberID: m.ID, Sport: "Football", Selection: "Arsenal", Stake: 2000, Odds: 3.0})
	require.NoError(t, err)
	assert.Equal(t, int64(6000), bet.PotentialReturn)
	assert.Equal(t, domain.BetStatusPending, bet.Status)
	assert.Nil(t, bet.Result)
	assert.Equal(t, "Ann", bet.MemberName)
	assert.Equal(t, "single", bet.Type)

	after, _ := e.Member(m.ID)
	assert.Equal(t, int64(8000), after.Bankroll)

	settled, err := e.SettleBet(ctx, bet.ID, domain.BetStatusWon)
	require.NoError(t, err)
	require.NotNil(t, settled.Result)
	assert.Equal(t, int64(4000), *settled.Result)
	require.NotNil(t, settled.SettledAt)

	after, _ = e.Member(m.ID)
	assert.Equal(t, int64(14000), after.Bankroll)
}

func TestSettleBet_BankrollConservation(t *testing.T) {
	tests := []struct {
		name         string
		outcome      domain.BetStatus
		wantResult   int64
		wantBankroll int64
	}{
		{"won credits potential return", domain.BetStatusWon, 4000, 14000},
		{"lost keeps the debit", domain.BetStatusLost, -2000, 8000},
		{"void refunds the stake", domain.BetStatusVoid, 0, 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			e, _ := newTestEngine(t, domain.ModeBankroll)
			m, err := e.CreateMember(ctx, "Ann", 10000)
			require.NoError(t, err)
			bet, err := e.PlaceBet(ctx, domain.PlaceBetParams{MemberID: m.ID, Selection: "Arsenal", Stake: 2000, Odds: 3.0})
			require.NoError(t, err)

			settled, err := e.SettleBet(ctx, bet.ID, tt.outcome)
			require.NoError(t, err)
			assert.Equal(t, tt.wantResult, *settled.Result)

			after, _ := e.Member(m.ID)
			assert.Equal(t, tt.wantBankroll, after.Bankroll)
			assert.Equal(t, after.Bankroll-after.InitialBankroll, settled.ResultOrZero())
		})
	}
}

func TestPlaceBet_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t, domain.ModeBankroll)
	m, err := e.CreateMember(ctx, "Ann", 1000)
	require.NoError(t, err)
	commits := store.Commits()

	_, err = e.PlaceBet(ctx, domain.PlaceBetParams{MemberID: m.ID, Selection: "Arsenal", Stake: 2000, Odds: 2.0})
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeInsufficientFunds))

	assert.Empty(t, e.Bets(domain.BetFilter{}))
	after, _ := e.Member(m.ID)
	assert.Equal(t, int64(1000), after.Bankroll)
	assert.Equal(t, commits, store.Commits())
}

func TestPlaceBet_Validation(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, domain.ModeBankroll)
	m, err := e.CreateMember(ctx, "Ann", 1000)
	require.NoError(t, err)

	tests := []struct {
		name     string
		params   domain.PlaceBetParams
		wantCode string
	}{
		{"zero stake", domain.PlaceBetParams{MemberID: m.ID, Selection: "x", Stake: 0, Odds: 2}, domain.CodeValidation},
		{"negative odds", domain.PlaceBetParams{MemberID: m.ID, Selection: "x", Stake: 100, Odds: -2}, domain.CodeValidation},
		{"no selection", domain.PlaceBetParams{MemberID: m.ID, Stake: 100, Odds: 2}, domain.CodeValidation},
		{"unknown member", domain.PlaceBetParams{MemberID: 42, Selection: "x", Stake: 100, Odds: 2}, domain.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.PlaceBet(ctx, tt.params)
			assert.True(t, domain.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestSettleBet_SingleShot(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, domain.ModeBankroll)
	m, _ := e.CreateMember(ctx, "Ann", 10000)
	bet, err := e.PlaceBet(ctx, domain.PlaceBetParams{MemberID: m.ID, Selection: "Arsenal", Stake: 2000, Odds: 3.0})
	require.NoError(t, err)

	_, err = e.SettleBet(ctx, bet.ID, domain.BetStatusWon)
	require.NoError(t, err)

	_, err = e.SettleBet(ctx, bet.ID, domain.BetStatusLost)
	assert.True(t, domain.HasCode(err, domain.CodeAlreadySettled))

	stored, _ := e.Bet(bet.ID)
	assert.Equal(t, domain.BetStatusWon, stored.Status)
	after, _ := e.Member(m.ID)
	assert.Equal(t, int64(14000), after.Bankroll)
}

func TestSettleBet_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, domain.ModePool)

	_, err := e.SettleBet(ctx, 1, domain.BetStatusPending)
	assert.True(t, domain.HasCode(err, domain.CodeValidation))

	_, err = e.SettleBet(ctx, 1, domain.BetStatusWon)
	assert.True(t, domain.HasCode(err, domain.CodeNotFound))
}

func TestSettleBet_StaleEngineRejectedByGuard(t *testing.T) {
	ctx := context.Background()
	policy := BankrollPolicy{}
	store := repository.NewMemoryStore()
	a := NewEngine(store, policy, discardLogger())
	b := NewEngine(store, policy, discardLogger())

	m, err := a.CreateMember(ctx, "Ann", 10000)
	require.NoError(t, err)
	bet, err := a.PlaceBet(ctx, domain.PlaceBetParams{MemberID: m.ID, Selection: "Arsenal", Stake: 2000, Odds: 3.0})
	require.NoError(t, err)
	require.NoError(t, b.Refresh(ctx))

	_, err = a.SettleBet(ctx, bet.ID, domain.BetStatusWon)
	require.NoError(t, err)

	_, err = b.SettleBet(ctx, bet.ID, domain.BetStatusWon)
	assert.True(t, domain.HasCode(err, domain.CodeAlreadySettled))

	stale, _ := b.Bet(bet.ID)
	assert.Equal(t, domain.BetStatusPending, stale.Status)

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(14000), snap.Members[0].Bankroll)
}

func TestDeleteBet_ReversesBalanceEffects(t *testing.T) {
	outcomes := []domain.BetStatus{
		domain.BetStatusPending,
		domain.BetStatusWon,
		domain.BetStatusLost,
		domain.BetStatusVoid,
	}

	for _, outcome := range outcomes {
		t.Run(string(outcome), func(t *testing.T) {
			ctx := context.Background()
			e, _ := newTestEngine(t, domain.ModeBankroll)
			m, _ := e.CreateMember(ctx, "Ann", 10000)
			bet, err := e.PlaceBet(ctx, domain.PlaceBetParams{MemberID: m.ID, Selection: "Arsenal", Stake: 2000, Odds: 3.0})
			require.NoError(t, err)
			if outcome.IsTerminal() {
				_, err = e.SettleBet(ctx, bet.ID, outcome)
				require.NoError(t, err)
			}

			require.NoError(t, e.DeleteBet(ctx, bet.ID))

			after, _ := e.Member(m.ID)
			assert.Equal(t, int64(10000), after.Bankroll)
			_, ok := e.Bet(bet.ID)
			assert.False(t, ok)
		})
	}
}

func TestDeleteBet_WonReversalCanGoNegative(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, domain.ModeBankroll)
	m, _ := e.CreateMember(ctx, "Ann", 2000)
	bet, _ := e.PlaceBet(ctx, domain.PlaceBetParams{MemberID: m.ID, Selection: "Arsenal", Stake: 2000, Odds: 3.0})
	_, err := e.SettleBet(ctx, bet.ID, domain.BetStatusWon)
	require.NoError(t, err)
	_, err = e.SetBalance(ctx, m.ID, 1000)
	require.NoError(t, err)

	require.NoError(t, e.DeleteBet(ctx, bet.ID))

	after, _ := e.Member(m.ID)
	assert.Equal(t, int64(-3000), after.Bankroll)
	assert.False(t, e.Reconcile().AllPassed)
}

func TestDeleteBet_NotFound(t *testing.T) {
	e, _ := newTestEngine(t, domain.ModePool)
	err := e.DeleteBet(context.Background(), 7)
	assert.True(t, domain.HasCode(err, domain.CodeNotFound))
}

// --- Pool Mode Tests ---

func TestPoolMode_BetsDoNotTouchMembers(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, domain.ModePool)
	m, err := e.CreateMember(ctx, "Ann", 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), m.Contribution)
	assert.Zero(t, m.Bankroll)

	bet, err := e.PlaceBet(ctx, domain.PlaceBetParams{MemberID: m.ID, Selection: "Arsenal", Stake: 20000, Odds: 1.5})
	require.NoError(t, err)
	_, err = e.SettleBet(ctx, bet.ID, domain.BetStatusWon)
	require.NoError(t, err)

	after, _ := e.Member(m.ID)
	assert.Equal(t, int64(5000), after.Contribution)
	assert.Zero(t, after.Bankroll)
}

// --- Member Tests ---

func TestCreateMember_DuplicateName(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, domain.ModePool)
	_, err := e.CreateMember(ctx, "Ann", 0)
	require.NoError(t, err)

	_, err = e.CreateMember(ctx, " Ann ", 100)
	assert.True(t, domain.HasCode(err, domain.CodeConflict))
	assert.Len(t, e.Members(), 1)

	_, err = e.CreateMember(ctx, "", 100)
	assert.True(t, domain.HasCode(err, domain.CodeValidation))
}

func TestAddFundsAndSetBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("bankroll", func(t *testing.T) {
		e, _ := newTestEngine(t, domain.ModeBankroll)
		m, _ := e.CreateMember(ctx, "Ann", 0)

		updated, err := e.SetBalance(ctx, m.ID, 5000)
		require.NoError(t, err)
		assert.Equal(t, int64(5000), updated.Bankroll)
		assert.Equal(t, int64(5000), updated.InitialBankroll)

		updated, err = e.AddFunds(ctx, m.ID, 2500)
		require.NoError(t, err)
		assert.Equal(t, int64(7500), updated.Bankroll)
		assert.Equal(t, int64(7500), updated.InitialBankroll)

		updated, err = e.SetBalance(ctx, m.ID, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(100), updated.Bankroll)
		assert.Equal(t, int64(7500), updated.InitialBankroll)
	})

	t.Run("pool", func(t *testing.T) {
		e, _ := newTestEngine(t, domain.ModePool)
		m, _ := e.CreateMember(ctx, "Ann", 1000)

		updated, err := e.AddFunds(ctx, m.ID, 500)
		require.NoError(t, err)
		assert.Equal(t, int64(1500), updated.Contribution)

		updated, err = e.SetBalance(ctx, m.ID, 0)
		require.NoError(t, err)
		assert.Zero(t, updated.Contribution)
	})

	t.Run("rejections", func(t *testing.T) {
		e, _ := newTestEngine(t, domain.ModePool)
		m, _ := e.CreateMember(ctx, "Ann", 0)

		_, err := e.AddFunds(ctx, m.ID, 0)
		assert.True(t, domain.HasCode(err, domain.CodeValidation))
		_, err = e.SetBalance(ctx, m.ID, -1)
		assert.True(t, domain.HasCode(err, domain.CodeValidation))
		_, err = e.AddFunds(ctx, 999, 100)
		assert.True(t, domain.HasCode(err, domain.CodeNotFound))
	})
}

// --- Event Tests ---

func TestEventLifecycle(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, domain.ModePool)
	_, err := e.CreateMember(ctx, "Ann", 0)
	require.NoError(t, err)

	ev, err := e.CreateEvent(ctx, domain.CreateEventParams{Name: "Race day", Type: "outing", Cost: 12000})
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusUpcoming, ev.Status)
	assert.Empty(t, ev.Attendees)

	_, err = e.CompleteEvent(ctx, ev.ID)
	assert.True(t, domain.HasCode(err, domain.CodeIncompleteEvent))
	stored, _ := e.Event(ev.ID)
	assert.Equal(t, domain.EventStatusUpcoming, stored.Status)

	_, err = e.AddAttendee(ctx, ev.ID, "Zed")
	assert.True(t, domain.HasCode(err, domain.CodeNotFound))

	updated, err := e.AddAttendee(ctx, ev.ID, "Ann")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ann"}, updated.Attendees)

	_, err = e.AddAttendee(ctx, ev.ID, "Ann")
	assert.True(t, domain.HasCode(err, domain.CodeDuplicateAttendee))

	completed, err := e.CompleteEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	_, err = e.CompleteEvent(ctx, ev.ID)
	assert.True(t, domain.HasCode(err, domain.CodeConflict))
	_, err = e.AddAttendee(ctx, ev.ID, "Ann")
	assert.True(t, domain.HasCode(err, domain.CodeConflict))

	require.NoError(t, e.DeleteEvent(ctx, ev.ID))
	assert.Empty(t, e.Events())
	assert.True(t, domain.HasCode(e.DeleteEvent(ctx, ev.ID), domain.CodeNotFound))
}

func TestCreateEvent_Validation(t *testing.T) {
	e, _ := newTestEngine(t, domain.ModePool)
	_, err := e.CreateEvent(context.Background(), domain.CreateEventParams{Name: "Dinner", Cost: -100})
	assert.True(t, domain.HasCode(err, domain.CodeValidation))
}

func TestUpcomingEvents(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, domain.ModePool)
	_, _ = e.CreateMember(ctx, "Ann", 0)

	var ids []int64
	for _, name := range []string{"one", "two", "three", "four", "five"} {
		ev, err := e.CreateEvent(ctx, domain.CreateEventParams{Name: name})
		require.NoError(t, err)
		ids = append(ids, ev.ID)
	}
	_, _ = e.AddAttendee(ctx, ids[4], "Ann")
	_, err := e.CompleteEvent(ctx, ids[4])
	require.NoError(t, err)

	upcoming := e.UpcomingEvents(UpcomingEventsLimit)
	require.Len(t, upcoming, 3)
	assert.Equal(t, "four", upcoming[0].Name)
	assert.Equal(t, "two", upcoming[2].Name)
}

// --- Bet of the Week Tests ---

func TestBetOfTheWeek(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, domain.ModePool)
	m, _ := e.CreateMember(ctx, "Ann", 0)
	first, _ := e.PlaceBet(ctx, domain.PlaceBetParams{MemberID: m.ID, Selection: "A", Stake: 100, Odds: 2})
	second, _ := e.PlaceBet(ctx, domain.PlaceBetParams{MemberID: m.ID, Selection: "B", Stake: 100, Odds: 2})

	assert.Equal(t, domain.BetOfTheWeekNone, e.BetOfTheWeek().State)

	require.NoError(t, e.SetBetOfTheWeek(ctx, second.ID))
	view := e.BetOfTheWeek()
	assert.Equal(t, domain.BetOfTheWeekActive, view.State)
	require.NotNil(t, view.Bet)
	assert.Equal(t, "B", view.Bet.Selection)

	_, err := e.SettleBet(ctx, first.ID, domain.BetStatusLost)
	require.NoError(t, err)
	err = e.SetBetOfTheWeek(ctx, first.ID)
	assert.True(t, domain.HasCode(err, domain.CodeConflict))
	assert.True(t, domain.HasCode(e.SetBetOfTheWeek(ctx, 12345), domain.CodeNotFound))

	require.NoError(t, e.DeleteBet(ctx, second.ID))
	view = e.BetOfTheWeek()
	assert.Equal(t, domain.BetOfTheWeekNotFound, view.State)
	require.NotNil(t, view.BetID)
	assert.Equal(t, second.ID, *view.BetID)
	assert.Nil(t, view.Bet)

	require.NoError(t, e.ClearBetOfTheWeek(ctx))
	assert.Equal(t, domain.BetOfTheWeekNone, e.BetOfTheWeek().State)
}

// --- Store Failure Tests ---

func TestExecute_StoreFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	store.On("Commit", mock.Anything, mock.Anything).Return(domain.CommitResult{}, nil).Once()
	store.On("Commit", mock.Anything, mock.Anything).Return(domain.CommitResult{}, errors.New("connection refused"))

	e := NewEngine(store, BankrollPolicy{}, discardLogger())
	m, err := e.CreateMember(ctx, "Ann", 10000)
	require.NoError(t, err)
	version := e.Version()

	_, err = e.PlaceBet(ctx, domain.PlaceBetParams{MemberID: m.ID, Selection: "Arsenal", Stake: 2000, Odds: 3.0})
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeStoreUnavailable))

	assert.Empty(t, e.Bets(domain.BetFilter{}))
	after, _ := e.Member(m.ID)
	assert.Equal(t, int64(10000), after.Bankroll)
	assert.Equal(t, version, e.Version())
	store.AssertNumberOfCalls(t, "Commit", 2)
}

func TestExecute_CommitCarriesWholeChangeset(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	store.On("Commit", mock.Anything, mock.Anything).Return(domain.CommitResult{}, nil)

	e := NewEngine(store, BankrollPolicy{}, discardLogger())
	m, _ := e.CreateMember(ctx, "Ann", 10000)
	_, err := e.PlaceBet(ctx, domain.PlaceBetParams{MemberID: m.ID, Selection: "Arsenal", Stake: 2000, Odds: 3.0})
	require.NoError(t, err)

	cs := store.Calls[1].Arguments.Get(1).(domain.Changeset)
	assert.Equal(t, "place_bet", cs.Command)
	require.Len(t, cs.Bets, 1)
	assert.Empty(t, cs.Members)
	require.Len(t, cs.Balances, 1)
	assert.Equal(t, domain.BalanceChange{MemberID: m.ID, Bankroll: -2000, RequireFunds: true}, cs.Balances[0])
	require.Len(t, cs.Outbox, 1)
	assert.Equal(t, domain.EventBetPlaced, cs.Outbox[0].EventType)

	after, _ := e.Member(m.ID)
	assert.Equal(t, int64(8000), after.Bankroll)
}

func TestExecute_StoredMembersOverrideLocalBalances(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	store.On("Commit", mock.Anything, mock.Anything).Return(domain.CommitResult{}, nil).Once()
	e := NewEngine(store, BankrollPolicy{}, discardLogger())
	m, err := e.CreateMember(ctx, "Ann", 10000)
	require.NoError(t, err)

	stored := *m
	stored.Bankroll = 12500
	stored.InitialBankroll = 12500
	store.On("Commit", mock.Anything, mock.Anything).Return(domain.CommitResult{Members: []domain.Member{stored}}, nil).Once()

	updated, err := e.AddFunds(ctx, m.ID, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(12500), updated.Bankroll)
	after, _ := e.Member(m.ID)
	assert.Equal(t, stored, after)
}

// --- Shared Store Tests ---

func TestBalances_TwoEnginesOnOneStoreKeepBothChanges(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	a := NewEngine(store, BankrollPolicy{}, discardLogger())
	b := NewEngine(store, BankrollPolicy{}, discardLogger())

	m, err := a.CreateMember(ctx, "Ann", 10000)
	require.NoError(t, err)
	require.NoError(t, b.Refresh(ctx))

	_, err = a.PlaceBet(ctx, domain.PlaceBetParams{MemberID: m.ID, Selection: "Arsenal", Stake: 2000, Odds: 3.0})
	require.NoError(t, err)

	updated, err := b.AddFunds(ctx, m.ID, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(9000), updated.Bankroll, "stale engine sees the stored bankroll after its commit")

	require.NoError(t, a.Refresh(ctx))
	after, _ := a.Member(m.ID)
	assert.Equal(t, int64(9000), after.Bankroll)
	assert.Equal(t, int64(11000), after.InitialBankroll)
}

func TestBalances_StaleStakeCheckedAgainstStoredBankroll(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	a := NewEngine(store, BankrollPolicy{}, discardLogger())
	b := NewEngine(store, BankrollPolicy{}, discardLogger())

	m, err := a.CreateMember(ctx, "Ann", 3000)
	require.NoError(t, err)
	require.NoError(t, b.Refresh(ctx))

	_, err = a.PlaceBet(ctx, domain.PlaceBetParams{MemberID: m.ID, Selection: "Arsenal", Stake: 2000, Odds: 2})
	require.NoError(t, err)

	_, err = b.PlaceBet(ctx, domain.PlaceBetParams{MemberID: m.ID, Selection: "Chelsea", Stake: 2000, Odds: 2})
	assert.True(t, domain.HasCode(err, domain.CodeInsufficientFunds))
	assert.Empty(t, b.Bets(domain.BetFilter{}))

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), snap.Members[0].Bankroll)
	assert.Len(t, snap.Bets, 1)
}

// --- Amount Limit Tests ---

func TestAmountLimits(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, domain.ModeBankroll)
	m, err := e.CreateMember(ctx, "Ann", 10000)
	require.NoError(t, err)

	_, err = e.PlaceBet(ctx, domain.PlaceBetParams{MemberID: m.ID, Selection: "Arsenal", Stake: math.MaxInt64 / 4, Odds: 8})
	assert.True(t, domain.HasCode(err, domain.CodeValidation))

	_, err = e.AddFunds(ctx, m.ID, math.MaxInt64)
	assert.True(t, domain.HasCode(err, domain.CodeValidation))

	_, err = e.AddFunds(ctx, m.ID, domain.MaxAmount)
	assert.True(t, domain.HasCode(err, domain.CodeValidation))

	_, err = e.CreateMember(ctx, "Bob", domain.MaxAmount+1)
	assert.True(t, domain.HasCode(err, domain.CodeValidation))

	after, _ := e.Member(m.ID)
	assert.Equal(t, int64(10000), after.Bankroll)
	assert.Empty(t, e.Bets(domain.BetFilter{}))

	updated, err := e.AddFunds(ctx, m.ID, domain.MaxAmount-10000)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxAmount, updated.Bankroll)
}

// --- Hook Tests ---

func TestHooks_RunOutsideTheLock(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, domain.ModePool)

	var seen []uint64
	e.OnCommit(func(v uint64) {
		// Reads take the engine lock; they would block forever if the hook ran under it.
		seen = append(seen, e.Version())
		_ = e.Snapshot()
	})

	done := make(chan error, 1)
	go func() {
		_, err := e.CreateMember(ctx, "Ann", 100)
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("commit hook blocked the engine")
	}
	assert.Equal(t, []uint64{1}, seen)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("loads and normalises", func(t *testing.T) {
		store := repository.NewMemoryStore()
		store.Seed(&domain.Snapshot{
			Members: []domain.Member{{ID: 2, Name: "Bob"}, {ID: 1, Name: "Ann"}},
			Bets:    []domain.Bet{{ID: 10, Status: domain.BetStatusPending}, {ID: 30, Status: domain.BetStatusPending}},
		})
		e := NewEngine(store, PoolPolicy{}, discardLogger())
		e.now = func() time.Time { return time.UnixMilli(5) }

		var seen []uint64
		e.OnCommit(func(v uint64) { seen = append(seen, v) })

		require.NoError(t, e.Refresh(ctx))
		snap := e.Snapshot()
		assert.Equal(t, "Ann", snap.Members[0].Name)
		assert.Equal(t, int64(30), snap.Bets[0].ID)
		assert.Equal(t, uint64(1), snap.Version)
		assert.Equal(t, []uint64{1}, seen)

		m, err := e.CreateMember(ctx, "Cat", 0)
		require.NoError(t, err)
		assert.Equal(t, int64(31), m.ID)
		assert.Equal(t, []uint64{1, 2}, seen)
	})

	t.Run("load failure", func(t *testing.T) {
		store := new(mockStore)
		store.On("Load", mock.Anything).Return(nil, errors.New("timeout"))
		e := NewEngine(store, PoolPolicy{}, discardLogger())

		err := e.Refresh(ctx)
		assert.True(t, domain.HasCode(err, domain.CodeStoreUnavailable))
		assert.Equal(t, uint64(0), e.Version())
	})
}

// --- Query Tests ---

func TestIDsAreStrictlyIncreasing(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, domain.ModePool)
	m, _ := e.CreateMember(ctx, "Ann", 0)
	prev := m.ID
	for range 5 {
		b, err := e.PlaceBet(ctx, domain.PlaceBetParams{MemberID: m.ID, Selection: "x", Stake: 100, Odds: 2})
		require.NoError(t, err)
		assert.Greater(t, b.ID, prev)
		prev = b.ID
	}
	assert.Equal(t, testClock.UnixMilli(), m.ID)
}

func TestBetsQueries(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, domain.ModePool)
	ann, _ := e.CreateMember(ctx, "Ann", 0)
	bob, _ := e.CreateMember(ctx, "Bob", 0)

	for i := range 6 {
		member := ann.ID
		if i%2 == 1 {
			member = bob.ID
		}
		_, err := e.PlaceBet(ctx, domain.PlaceBetParams{MemberID: member, Selection: "x", Stake: 100, Odds: 2})
		require.NoError(t, err)
	}
	all := e.Bets(domain.BetFilter{})
	_, err := e.SettleBet(ctx, all[0].ID, domain.BetStatusWon)
	require.NoError(t, err)

	recent := e.RecentBets(RecentBetsLimit)
	require.Len(t, recent, 5)
	assert.Equal(t, all[0].ID, recent[0].ID)

	assert.Len(t, e.Bets(domain.BetFilter{MemberID: bob.ID}), 3)
	assert.Len(t, e.Bets(domain.BetFilter{Status: domain.BetStatusPending}), 5)
	assert.Len(t, e.Bets(domain.BetFilter{Status: domain.BetStatusWon, MemberID: bob.ID}), 1)
}

func TestSnapshot_IsACopy(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, domain.ModePool)
	_, _ = e.CreateMember(ctx, "Ann", 0)

	snap := e.Snapshot()
	snap.Members[0].Name = "Mallory"

	assert.Equal(t, "Ann", e.Members()[0].Name)
}

// --- Outbox Tests ---

func TestCommandsEmitOutboxEvents(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t, domain.ModeBankroll)
	m, _ := e.CreateMember(ctx, "Ann", 10000)
	bet, _ := e.PlaceBet(ctx, domain.PlaceBetParams{MemberID: m.ID, Selection: "x", Stake: 100, Odds: 2})
	_, _ = e.SettleBet(ctx, bet.ID, domain.BetStatusVoid)
	_ = e.DeleteBet(ctx, bet.ID)

	var types []domain.OutboxEventType
	for _, d := range store.Outbox() {
		types = append(types, d.EventType)
	}
	assert.Equal(t, []domain.OutboxEventType{
		domain.EventMemberCreated,
		domain.EventBetPlaced,
		domain.EventBetSettled,
		domain.EventBetDeleted,
	}, types)
}

// --- Reconcile Tests ---

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, domain.ModeBankroll)
	m, _ := e.CreateMember(ctx, "Ann", 10000)
	bet, _ := e.PlaceBet(ctx, domain.PlaceBetParams{MemberID: m.ID, Selection: "x", Stake: 2000, Odds: 3.0})
	_, _ = e.PlaceBet(ctx, domain.PlaceBetParams{MemberID: m.ID, Selection: "y", Stake: 1000, Odds: 1.91})
	_, _ = e.SettleBet(ctx, bet.ID, domain.BetStatusWon)

	report := e.Reconcile()
	assert.True(t, report.AllPassed)
	assert.Len(t, report.Invariants, 5)
	assert.Equal(t, domain.ModeBankroll, report.Mode)

	require.NoError(t, e.SetBetOfTheWeek(ctx, e.Bets(domain.BetFilter{Status: domain.BetStatusPending})[0].ID))
	require.NoError(t, e.DeleteBet(ctx, e.BetOfTheWeek().Bet.ID))

	report = e.Reconcile()
	assert.False(t, report.AllPassed)
	for _, c := range report.Invariants {
		if c.Name == "bet_of_the_week" {
			assert.False(t, c.Passed)
		} else {
			assert.True(t, c.Passed, c.Name)
		}
	}
}

func TestReconcile_DetectsCorruptRecords(t *testing.T) {
	store := repository.NewMemoryStore()
	result := int64(500)
	store.Seed(&domain.Snapshot{
		Bets: []domain.Bet{
			{ID: 1, Stake: 1000, Odds: 2, PotentialReturn: 2000, Status: domain.BetStatusPending, Result: &result},
			{ID: 2, Stake: 1000, Odds: 2, PotentialReturn: 1999, Status: domain.BetStatusPending},
		},
	})
	e := NewEngine(store, PoolPolicy{}, discardLogger())
	require.NoError(t, e.Refresh(context.Background()))

	report := e.Reconcile()
	assert.False(t, report.AllPassed)
	assert.False(t, report.Invariants[0].Passed)
	assert.Contains(t, report.Invariants[0].Detail, "1: pending with result")
	assert.False(t, report.Invariants[1].Passed)
	assert.Contains(t, report.Invariants[1].Detail, "2: stored 1999, expected 2000")
}

// --- Policy Tests ---

func TestNewPolicy(t *testing.T) {
	p, err := NewPolicy(domain.ModePool)
	require.NoError(t, err)
	assert.Equal(t, domain.ModePool, p.Mode())

	p, err = NewPolicy(domain.ModeBankroll)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeBankroll, p.Mode())

	_, err = NewPolicy("shared")
	assert.Error(t, err)
}

func TestBankrollPolicy_Reversal(t *testing.T) {
	bet := domain.Bet{Stake: 2000, PotentialReturn: 6000}
	tests := []struct {
		status domain.BetStatus
		want   int64
	}{
		{domain.BetStatusPending, 2000},
		{domain.BetStatusWon, -4000},
		{domain.BetStatusLost, 2000},
		{domain.BetStatusVoid, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			m := domain.Member{}
			b := bet
			b.Status = tt.status
			BankrollPolicy{}.ApplyReversal(&m, b)
			assert.Equal(t, tt.want, m.Bankroll)
		})
	}
}
