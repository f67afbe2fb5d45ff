package handler

import (
	"net/http"

	"github.com/betpool/tracker/internal/ledger"
)

// BetOfTheWeekHandler reads and changes the featured bet.
type BetOfTheWeekHandler struct {
	engine *ledger.Engine
}

// NewBetOfTheWeekHandler creates a new BetOfTheWeekHandler.
func NewBetOfTheWeekHandler(engine *ledger.Engine) *BetOfTheWeekHandler {
	return &BetOfTheWeekHandler{engine: engine}
}

type betOfTheWeekRequest struct {
	BetID int64 `json:"bet_id" validate:"required,gt=0"`
}

// Get handles GET /bet-of-the-week.
func (h *BetOfTheWeekHandler) Get(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, h.engine.BetOfTheWeek())
}

// Set handles PUT /admin/bet-of-the-week.
func (h *BetOfTheWeekHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req betOfTheWeekRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		RespondError(w, err)
		return
	}
	if err := h.engine.SetBetOfTheWeek(r.Context(), req.BetID); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, h.engine.BetOfTheWeek())
}

// Clear handles DELETE /admin/bet-of-the-week.
func (h *BetOfTheWeekHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.ClearBetOfTheWeek(r.Context()); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}
