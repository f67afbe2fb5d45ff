package repository

import (
	"context"
	"fmt"

	"github.com/betpool/tracker/internal/domain"
	"github.com/betpool/tracker/internal/infra"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type eventRepo struct{}

// NewEventRepository returns a pgx-backed EventRepository.
func NewEventRepository() EventRepository {
	return &eventRepo{}
}

func (r *eventRepo) List(ctx context.Context, db DBTX) ([]domain.Event, error) {
	rows, err := db.Query(ctx, `
		SELECT id, name, event_type, location, date_time, cost, description,
		       attendees, status, created_at, completed_at
		FROM events ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *eventRepo) Upsert(ctx context.Context, db DBTX, e domain.Event) error {
	attendees := e.Attendees
	if attendees == nil {
		attendees = []string{}
	}

	_, err := db.Exec(ctx, `
		INSERT INTO events (id, name, event_type, location, date_time, cost, description,
		                    attendees, status, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
		  attendees = EXCLUDED.attendees,
		  status = EXCLUDED.status,
		  completed_at = EXCLUDED.completed_at`,
		e.ID,
		e.Name,
		e.Type,
		e.Location,
		e.DateTime,
		infra.Int64ToNumeric(e.Cost),
		e.Description,
		attendees,
		string(e.Status),
		e.CreatedAt,
		e.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert event: %w", err)
	}
	return nil
}

func (r *eventRepo) Delete(ctx context.Context, db DBTX, id int64) error {
	_, err := db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	var status string
	var costNum pgtype.Numeric
	err := row.Scan(&e.ID, &e.Name, &e.Type, &e.Location, &e.DateTime, &costNum, &e.Description,
		&e.Attendees, &status, &e.CreatedAt, &e.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("scan event: %w", err)
	}
	e.Status = domain.EventStatus(status)
	if e.Attendees == nil {
		e.Attendees = []string{}
	}

	cost, err := infra.NumericToInt64(costNum)
	if err != nil {
		return nil, fmt.Errorf("convert cost: %w", err)
	}
	e.Cost = cost

	return &e, nil
}
