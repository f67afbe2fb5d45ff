package domain

import "time"

// EventStatus tracks the lifecycle of a group event.
type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusCompleted EventStatus = "completed"
)

// Event is a social outing funded from the pool.
type Event struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Location    string      `json:"location"`
	DateTime    string      `json:"date_time"`
	Cost        int64       `json:"cost"`
	Description string      `json:"description"`
	Attendees   []string    `json:"attendees"`
	Status      EventStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// HasAttendee reports whether name is already on the list.
func (e Event) HasAttendee(name string) bool {
	for _, a := range e.Attendees {
		if a == name {
			return true
		}
	}
	return false
}

// CreateEventParams holds the input for CreateEvent.
type CreateEventParams struct {
	Name        string
	Type        string
	Location    string
	DateTime    string
	Cost        int64
	Description string
}
