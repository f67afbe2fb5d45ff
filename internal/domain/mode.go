package domain

import "fmt"

// PoolMode selects how stakes and settlements touch member balances.
type PoolMode string

const (
	// ModePool tracks one shared fund built from member contributions.
	ModePool PoolMode = "pool"
	// ModeBankroll gives every member a personal balance debited on stake.
	ModeBankroll PoolMode = "bankroll"
)

// ParsePoolMode validates a configured pool mode.
func ParsePoolMode(s string) (PoolMode, error) {
	switch PoolMode(s) {
	case ModePool, ModeBankroll:
		return PoolMode(s), nil
	default:
		return "", fmt.Errorf("unknown pool mode: %q", s)
	}
}
