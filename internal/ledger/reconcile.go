package ledger

import (
	"fmt"
	"strings"

	"github.com/betpool/tracker/internal/domain"
)

// ReconcileReport holds the outcome of an invariant sweep over the snapshot.
type ReconcileReport struct {
	Version    uint64           `json:"version"`
	Mode       domain.PoolMode  `json:"mode"`
	Invariants []InvariantCheck `json:"invariants"`
	AllPassed  bool             `json:"all_passed"`
}

// InvariantCheck records a single invariant validation.
type InvariantCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Reconcile validates the current snapshot.
//
// Invariants:
//  1. Result parity: result is nil iff pending, and matches the status otherwise
//  2. Potential return: stored value equals round(stake*odds)
//  3. Balance non-negativity: the mode's balance field is >= 0 for every member
//  4. Attendees: every event lists distinct names
//  5. Bet of the week: the reference resolves
func (e *Engine) Reconcile() *ReconcileReport {
	e.mu.RLock()
	defer e.mu.RUnlock()

	mode := e.policy.Mode()
	checks := []InvariantCheck{
		checkResultParity(e.snap.Bets),
		checkPotentialReturn(e.snap.Bets),
		checkBalances(mode, e.snap.Members),
		checkAttendees(e.snap.Events),
		checkBetOfTheWeek(e.snap),
	}

	allPassed := true
	for _, c := range checks {
		if !c.Passed {
			allPassed = false
		}
	}
	return &ReconcileReport{Version: e.snap.Version, Mode: mode, Invariants: checks, AllPassed: allPassed}
}

func checkResultParity(bets []domain.Bet) InvariantCheck {
	var bad []string
	for _, b := range bets {
		switch {
		case b.Status == domain.BetStatusPending && b.Result != nil:
			bad = append(bad, fmt.Sprintf("%d: pending with result", b.ID))
		case b.Status != domain.BetStatusPending && b.Result == nil:
			bad = append(bad, fmt.Sprintf("%d: %s without result", b.ID, b.Status))
		case b.Result != nil && *b.Result != b.SettlementResult(b.Status):
			bad = append(bad, fmt.Sprintf("%d: result %d, expected %d", b.ID, *b.Result, b.SettlementResult(b.Status)))
		}
	}
	return invariant("result_status_parity", bad, fmt.Sprintf("%d bets checked", len(bets)))
}

func checkPotentialReturn(bets []domain.Bet) InvariantCheck {
	var bad []string
	for _, b := range bets {
		if want := domain.PotentialReturn(b.Stake, b.Odds); b.PotentialReturn != want {
			bad = append(bad, fmt.Sprintf("%d: stored %d, expected %d", b.ID, b.PotentialReturn, want))
		}
	}
	return invariant("potential_return", bad, fmt.Sprintf("%d bets checked", len(bets)))
}

func checkBalances(mode domain.PoolMode, members []domain.Member) InvariantCheck {
	var bad []string
	for _, m := range members {
		if bal := balanceOf(mode, m); bal < 0 {
			bad = append(bad, fmt.Sprintf("%s: %s", m.Name, domain.FormatCents(bal)))
		}
	}
	return invariant("balance_non_negative", bad, fmt.Sprintf("%d members checked", len(members)))
}

func checkAttendees(events []domain.Event) InvariantCheck {
	var bad []string
	for _, ev := range events {
		seen := make(map[string]bool, len(ev.Attendees))
		for _, name := range ev.Attendees {
			if seen[name] {
				bad = append(bad, fmt.Sprintf("%d: %s listed twice", ev.ID, name))
			}
			seen[name] = true
		}
	}
	return invariant("attendees_unique", bad, fmt.Sprintf("%d events checked", len(events)))
}

func checkBetOfTheWeek(s *domain.Snapshot) InvariantCheck {
	view := resolveBetOfTheWeek(s)
	if view.State == domain.BetOfTheWeekNotFound {
		return InvariantCheck{
			Name:   "bet_of_the_week",
			Passed: false,
			Detail: fmt.Sprintf("bet %d no longer exists", *view.BetID),
		}
	}
	return InvariantCheck{Name: "bet_of_the_week", Passed: true, Detail: string(view.State)}
}

func invariant(name string, bad []string, ok string) InvariantCheck {
	if len(bad) > 0 {
		return InvariantCheck{Name: name, Passed: false, Detail: strings.Join(bad, "; ")}
	}
	return InvariantCheck{Name: name, Passed: true, Detail: ok}
}
