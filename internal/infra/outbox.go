package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/betpool/tracker/internal/domain"
	"github.com/betpool/tracker/internal/metrics"
)

// TopicPrefix is prepended to every published topic.
const TopicPrefix = "betpool."

// ErrPublisherDisabled is returned by Poll when the publisher would drop messages.
var ErrPublisherDisabled = errors.New("outbox publisher is disabled; rows are kept until it is enabled")

// OutboxSource hands out unpublished rows and removes them once sent.
type OutboxSource interface {
	FetchUnpublished(ctx context.Context, limit int) ([]domain.OutboxRow, error)
	MarkPublished(ctx context.Context, ids []int64) error
}

// OutboxPoller polls the event_outbox table and publishes events to Kafka.
type OutboxPoller struct {
	source    OutboxSource
	producer  Publisher
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

// NewOutboxPoller creates a new outbox poller.
func NewOutboxPoller(source OutboxSource, producer Publisher, cfg *Config, logger *slog.Logger) *OutboxPoller {
	return &OutboxPoller{
		source:    source,
		producer:  producer,
		logger:    logger,
		interval:  cfg.OutboxPollInterval,
		batchSize: cfg.OutboxBatchSize,
	}
}

// Run polls until ctx is cancelled.
func (p *OutboxPoller) Run(ctx context.Context) {
	p.logger.Info("outbox poller started", "interval", p.interval, "batch_size", p.batchSize)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox poller stopped")
			return
		case <-ticker.C:
			if _, err := p.Poll(ctx); err != nil {
				p.logger.Error("outbox poll error", "error", err)
			}
		}
	}
}

// Poll publishes one batch in occurrence order and returns how many rows were sent.
// It stops at the first publish failure so later events never overtake an earlier one.
// Nothing is fetched or removed while the publisher reports itself disabled.
func (p *OutboxPoller) Poll(ctx context.Context) (int, error) {
	if toggle, ok := p.producer.(interface{ Enabled() bool }); ok && !toggle.Enabled() {
		return 0, ErrPublisherDisabled
	}

	rows, err := p.source.FetchUnpublished(ctx, p.batchSize)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	var published []int64
	var pubErr error
	for _, row := range rows {
		topic := TopicFor(row.EventType)
		msg, err := encodeOutboxMessage(row)
		if err != nil {
			pubErr = fmt.Errorf("encode event %s: %w", row.EventID, err)
			break
		}
		headers := map[string]string{
			"event_id":   row.EventID.String(),
			"event_type": string(row.EventType),
		}
		if err := p.producer.Publish(ctx, topic, []byte(row.PartitionKey), msg, headers); err != nil {
			metrics.OutboxPublishErrors.Inc()
			p.logger.Error("kafka publish failed", "event_id", row.EventID, "topic", topic, "error", err)
			pubErr = fmt.Errorf("publish event %s: %w", row.EventID, err)
			break
		}
		metrics.OutboxPublished.WithLabelValues(topic).Inc()
		published = append(published, row.SeqID)
	}

	if len(published) > 0 {
		if err := p.source.MarkPublished(ctx, published); err != nil {
			return 0, fmt.Errorf("mark published: %w", err)
		}
	}

	p.logger.Debug("outbox poll complete", "published", len(published), "fetched", len(rows))
	return len(published), pubErr
}

// TopicFor maps an outbox event type such as pool.bet.settled to betpool.bet.settled.
func TopicFor(evt domain.OutboxEventType) string {
	return TopicPrefix + strings.TrimPrefix(string(evt), "pool.")
}

func encodeOutboxMessage(row domain.OutboxRow) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"event_id":       row.EventID,
		"aggregate_type": row.AggregateType,
		"aggregate_id":   row.AggregateID,
		"event_type":     row.EventType,
		"payload":        row.Payload,
		"occurred_at":    row.OccurredAt,
	})
}
