package domain

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// OutboxEventType enumerates all domain event types.
type OutboxEventType string

const (
	EventMemberCreated       OutboxEventType = "pool.member.created"
	EventMemberFundsAdjusted OutboxEventType = "pool.member.funds_adjusted"
	EventBetPlaced           OutboxEventType = "pool.bet.placed"
	EventBetSettled          OutboxEventType = "pool.bet.settled"
	EventBetDeleted          OutboxEventType = "pool.bet.deleted"
	EventEventCreated        OutboxEventType = "pool.event.created"
	EventAttendeeAdded       OutboxEventType = "pool.event.attendee_added"
	EventEventCompleted      OutboxEventType = "pool.event.completed"
	EventEventDeleted        OutboxEventType = "pool.event.deleted"
	EventBetOfTheWeekChanged OutboxEventType = "pool.config.bet_of_the_week"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateMember AggregateType = "member"
	AggregateBet    AggregateType = "bet"
	AggregateEvent  AggregateType = "event"
	AggregateConfig AggregateType = "config"
)

// OutboxDraft is the payload written to the event_outbox table.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"eventId"`
	AggregateType AggregateType   `json:"aggregateType"`
	AggregateID   string          `json:"aggregateId"`
	EventType     OutboxEventType `json:"eventType"`
	PartitionKey  string          `json:"partitionKey"`
	Headers       json.RawMessage `json:"headers"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// OutboxRow is an OutboxDraft as stored, with its sequence id.
type OutboxRow struct {
	SeqID int64
	OutboxDraft
}

func newDraft(agg AggregateType, id int64, evt OutboxEventType, payload interface{}) OutboxDraft {
	body, _ := json.Marshal(payload)
	key := strconv.FormatInt(id, 10)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: agg,
		AggregateID:   key,
		EventType:     evt,
		PartitionKey:  key,
		Headers:       json.RawMessage(`{}`),
		Payload:       body,
		OccurredAt:    time.Now(),
	}
}

// NewMemberCreatedEvent records a new member.
func NewMemberCreatedEvent(m Member) OutboxDraft {
	return newDraft(AggregateMember, m.ID, EventMemberCreated, m)
}

// NewFundsAdjustedEvent records an explicit balance change.
func NewFundsAdjustedEvent(m Member, delta int64) OutboxDraft {
	return newDraft(AggregateMember, m.ID, EventMemberFundsAdjusted, map[string]interface{}{
		"member": m,
		"delta":  delta,
	})
}

// NewBetPlacedEvent records a placed bet.
func NewBetPlacedEvent(b Bet) OutboxDraft {
	return newDraft(AggregateBet, b.ID, EventBetPlaced, b)
}

// NewBetSettledEvent records a settlement outcome.
func NewBetSettledEvent(b Bet) OutboxDraft {
	return newDraft(AggregateBet, b.ID, EventBetSettled, b)
}

// NewBetDeletedEvent records a deleted bet and the balance effect reversed with it.
func NewBetDeletedEvent(b Bet, reversed int64) OutboxDraft {
	return newDraft(AggregateBet, b.ID, EventBetDeleted, map[string]interface{}{
		"bet":      b,
		"reversed": reversed,
	})
}

// NewEventCreatedEvent records a new group event.
func NewEventCreatedEvent(e Event) OutboxDraft {
	return newDraft(AggregateEvent, e.ID, EventEventCreated, e)
}

// NewAttendeeAddedEvent records an attendee joining.
func NewAttendeeAddedEvent(e Event, name string) OutboxDraft {
	return newDraft(AggregateEvent, e.ID, EventAttendeeAdded, map[string]interface{}{
		"event_id": e.ID,
		"attendee": name,
	})
}

// NewEventCompletedEvent records a completed event and its cost.
func NewEventCompletedEvent(e Event) OutboxDraft {
	return newDraft(AggregateEvent, e.ID, EventEventCompleted, e)
}

// NewEventDeletedEvent records a deleted event.
func NewEventDeletedEvent(e Event) OutboxDraft {
	return newDraft(AggregateEvent, e.ID, EventEventDeleted, e)
}

// NewBetOfTheWeekEvent records the featured bet changing.
func NewBetOfTheWeekEvent(betID *int64) OutboxDraft {
	return newDraft(AggregateConfig, 0, EventBetOfTheWeekChanged, map[string]interface{}{
		"bet_id": betID,
	})
}
