package repository

import (
	"context"
	"fmt"

	"github.com/betpool/tracker/internal/domain"
	"github.com/jackc/pgx/v5"
)

const outboxColumns = `"eventId", "aggregateType", "aggregateId", "eventType", "partitionKey", "headers", "payload", "occurredAt"`

type outboxRepo struct{}

// NewOutboxRepository returns a pgx-backed OutboxRepository.
func NewOutboxRepository() OutboxRepository {
	return &outboxRepo{}
}

// InsertBatch queues every draft of a changeset on the transaction in one round trip.
func (r *outboxRepo) InsertBatch(ctx context.Context, tx pgx.Tx, drafts []domain.OutboxDraft) error {
	if len(drafts) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, d := range drafts {
		batch.Queue(`INSERT INTO event_outbox (`+outboxColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			d.EventID, string(d.AggregateType), d.AggregateID, string(d.EventType),
			d.PartitionKey, d.Headers, d.Payload, d.OccurredAt)
	}

	br := tx.SendBatch(ctx, batch)
	for _, d := range drafts {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("insert outbox event %s: %w", d.EventType, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close outbox batch: %w", err)
	}
	return nil
}

// FetchUnpublished returns up to limit rows in commit order.
func (r *outboxRepo) FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxRow, error) {
	rows, err := db.Query(ctx, `
		SELECT "id", `+outboxColumns+`
		FROM event_outbox
		ORDER BY "id" ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch unpublished events: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.OutboxRow, error) {
		var o domain.OutboxRow
		var aggType, evtType string
		err := row.Scan(&o.SeqID, &o.EventID, &aggType, &o.AggregateID, &evtType,
			&o.PartitionKey, &o.Headers, &o.Payload, &o.OccurredAt)
		o.AggregateType = domain.AggregateType(aggType)
		o.EventType = domain.OutboxEventType(evtType)
		return o, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan outbox rows: %w", err)
	}
	return out, nil
}

// MarkPublished deletes relayed rows and reports how many were removed.
func (r *outboxRepo) MarkPublished(ctx context.Context, db DBTX, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := db.Exec(ctx, `DELETE FROM event_outbox WHERE "id" = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("mark published: %w", err)
	}
	return tag.RowsAffected(), nil
}
