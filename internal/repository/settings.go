package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const settingBetOfTheWeek = "bet_of_the_week"

type settingsRepo struct{}

// NewSettingsRepository returns a pgx-backed SettingsRepository.
func NewSettingsRepository() SettingsRepository {
	return &settingsRepo{}
}

type betOfTheWeekValue struct {
	BetID *int64 `json:"bet_id"`
}

func (r *settingsRepo) BetOfTheWeek(ctx context.Context, db DBTX) (*int64, error) {
	var raw json.RawMessage
	err := db.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, settingBetOfTheWeek).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("read bet of the week: %w", err)
	}

	var v betOfTheWeekValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode bet of the week: %w", err)
	}
	return v.BetID, nil
}

func (r *settingsRepo) SetBetOfTheWeek(ctx context.Context, db DBTX, betID *int64) error {
	value, _ := json.Marshal(betOfTheWeekValue{BetID: betID})
	_, err := db.Exec(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		settingBetOfTheWeek, value)
	if err != nil {
		return fmt.Errorf("write bet of the week: %w", err)
	}
	return nil
}
