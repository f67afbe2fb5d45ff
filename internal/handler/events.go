package handler

import (
	"net/http"

	"github.com/betpool/tracker/internal/domain"
	"github.com/betpool/tracker/internal/ledger"
)

// EventHandler handles group events and their attendees.
type EventHandler struct {
	engine *ledger.Engine
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(engine *ledger.Engine) *EventHandler {
	return &EventHandler{engine: engine}
}

type createEventRequest struct {
	Name        string `json:"name" validate:"required,max=64"`
	Type        string `json:"type" validate:"max=32"`
	Location    string `json:"location" validate:"max=200"`
	DateTime    string `json:"date_time" validate:"max=64"`
	Cost        int64  `json:"cost" validate:"gte=0,lte=1000000000000"`
	Description string `json:"description" validate:"max=2000"`
}

type attendeeRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

// List handles GET /events.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, h.engine.Events())
}

// Upcoming handles GET /events/upcoming.
func (h *EventHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, h.engine.UpcomingEvents(ledger.UpcomingEventsLimit))
}

// Create handles POST /admin/events.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		RespondError(w, err)
		return
	}

	ev, err := h.engine.CreateEvent(r.Context(), domain.CreateEventParams{
		Name:        req.Name,
		Type:        req.Type,
		Location:    req.Location,
		DateTime:    req.DateTime,
		Cost:        req.Cost,
		Description: req.Description,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, ev)
}

// AddAttendee handles POST /admin/events/{id}/attendees.
func (h *EventHandler) AddAttendee(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	var req attendeeRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		RespondError(w, err)
		return
	}

	ev, err := h.engine.AddAttendee(r.Context(), id, req.Name)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, ev)
}

// Complete handles POST /admin/events/{id}/complete.
func (h *EventHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	ev, err := h.engine.CompleteEvent(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, ev)
}

// Delete handles DELETE /admin/events/{id}.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	if err := h.engine.DeleteEvent(r.Context(), id); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}
