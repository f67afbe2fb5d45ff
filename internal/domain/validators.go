package domain

import (
	"fmt"
	"math"
	"strings"
)

const maxNameLength = 64

// MaxOdds is the longest decimal price a bet may carry.
const MaxOdds = 100000.0

// ValidateName checks a member or event display name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("name must be at most %d characters", maxNameLength)
	}
	return nil
}

// ValidatePositiveAmount checks that an amount is positive (in cents).
func ValidatePositiveAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %d", amount)
	}
	return validateMaxAmount(amount)
}

// ValidateNonNegativeAmount checks that an amount is zero or positive (in cents).
func ValidateNonNegativeAmount(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("amount must not be negative, got %d", amount)
	}
	return validateMaxAmount(amount)
}

func validateMaxAmount(amount int64) error {
	if amount > MaxAmount {
		return fmt.Errorf("amount must be at most %d, got %d", MaxAmount, amount)
	}
	return nil
}

// ValidateOdds checks that decimal odds are a positive finite multiplier up to MaxOdds.
func ValidateOdds(odds float64) error {
	if math.IsNaN(odds) || math.IsInf(odds, 0) || odds <= 0 {
		return fmt.Errorf("odds must be positive, got %v", odds)
	}
	if odds > MaxOdds {
		return fmt.Errorf("odds must be at most %v, got %v", MaxOdds, odds)
	}
	return nil
}

// ValidatePlaceBet checks the placement input before any lookup.
func ValidatePlaceBet(p PlaceBetParams) error {
	if p.MemberID == 0 {
		return fmt.Errorf("member is required")
	}
	if strings.TrimSpace(p.Selection) == "" {
		return fmt.Errorf("selection is required")
	}
	if err := ValidatePositiveAmount(p.Stake); err != nil {
		return fmt.Errorf("stake: %w", err)
	}
	if err := ValidateOdds(p.Odds); err != nil {
		return err
	}
	if float64(p.Stake)*p.Odds > float64(MaxAmount) {
		return fmt.Errorf("potential return must be at most %d", MaxAmount)
	}
	return nil
}

// ValidateCreateEvent checks the event input.
func ValidateCreateEvent(p CreateEventParams) error {
	if err := ValidateName(p.Name); err != nil {
		return err
	}
	if err := ValidateNonNegativeAmount(p.Cost); err != nil {
		return fmt.Errorf("cost: %w", err)
	}
	return nil
}
