package domain

import (
	"fmt"
	"math"
)

// PotentialReturn computes stake*odds rounded to the nearest cent.
func PotentialReturn(stake int64, odds float64) int64 {
	return int64(math.Round(float64(stake) * odds))
}

// FormatCents renders an amount of cents as a dollar string, e.g. -$12.50.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
