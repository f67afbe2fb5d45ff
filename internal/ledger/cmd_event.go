package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/betpool/tracker/internal/domain"
)

// CreateEvent adds an upcoming event with no attendees.
func (e *Engine) CreateEvent(ctx context.Context, params domain.CreateEventParams) (*domain.Event, error) {
	params.Name = strings.TrimSpace(params.Name)
	if err := domain.ValidateCreateEvent(params); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	var created domain.Event
	err := e.execute(ctx, "create_event", func(_ *domain.Snapshot) (domain.Changeset, error) {
		now := e.now()
		created = domain.Event{
			ID:          e.ids.next(now),
			Name:        params.Name,
			Type:        params.Type,
			Location:    params.Location,
			DateTime:    params.DateTime,
			Cost:        params.Cost,
			Description: params.Description,
			Attendees:   []string{},
			Status:      domain.EventStatusUpcoming,
			CreatedAt:   now,
		}
		return domain.Changeset{
			Events: []domain.Event{created},
			Outbox: []domain.OutboxDraft{domain.NewEventCreatedEvent(created)},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// AddAttendee appends a member's name to an upcoming event.
func (e *Engine) AddAttendee(ctx context.Context, eventID int64, name string) (*domain.Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrValidation("attendee name is required")
	}

	var updated domain.Event
	err := e.execute(ctx, "add_attendee", func(s *domain.Snapshot) (domain.Changeset, error) {
		ev, ok := s.Event(eventID)
		if !ok {
			return domain.Changeset{}, domain.ErrNotFound("event", fmt.Sprint(eventID))
		}
		if ev.Status == domain.EventStatusCompleted {
			return domain.Changeset{}, domain.ErrConflict("event is already completed")
		}
		if _, ok := s.MemberByName(name); !ok {
			return domain.Changeset{}, domain.ErrNotFound("member", name)
		}
		if ev.HasAttendee(name) {
			return domain.Changeset{}, domain.ErrDuplicateAttendee(name)
		}

		ev = ev.Clone()
		ev.Attendees = append(ev.Attendees, name)
		updated = ev

		return domain.Changeset{
			Events: []domain.Event{ev},
			Outbox: []domain.OutboxDraft{domain.NewAttendeeAddedEvent(ev, name)},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// CompleteEvent marks an event completed. Its cost then counts against the pool
// in every summary; no stored balance changes.
func (e *Engine) CompleteEvent(ctx context.Context, eventID int64) (*domain.Event, error) {
	var completed domain.Event
	err := e.execute(ctx, "complete_event", func(s *domain.Snapshot) (domain.Changeset, error) {
		ev, ok := s.Event(eventID)
		if !ok {
			return domain.Changeset{}, domain.ErrNotFound("event", fmt.Sprint(eventID))
		}
		if ev.Status == domain.EventStatusCompleted {
			return domain.Changeset{}, domain.ErrConflict("event is already completed")
		}
		if len(ev.Attendees) == 0 {
			return domain.Changeset{}, domain.ErrIncompleteEvent()
		}

		ev = ev.Clone()
		now := e.now()
		ev.Status = domain.EventStatusCompleted
		ev.CompletedAt = &now
		completed = ev

		return domain.Changeset{
			Events: []domain.Event{ev},
			Outbox: []domain.OutboxDraft{domain.NewEventCompletedEvent(ev)},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &completed, nil
}

// DeleteEvent removes an event in any status.
func (e *Engine) DeleteEvent(ctx context.Context, eventID int64) error {
	return e.execute(ctx, "delete_event", func(s *domain.Snapshot) (domain.Changeset, error) {
		ev, ok := s.Event(eventID)
		if !ok {
			return domain.Changeset{}, domain.ErrNotFound("event", fmt.Sprint(eventID))
		}
		return domain.Changeset{
			DeleteEvents: []int64{eventID},
			Outbox:       []domain.OutboxDraft{domain.NewEventDeletedEvent(ev)},
		}, nil
	})
}
