package handler

import (
	"net/http"
	"strconv"

	"github.com/betpool/tracker/internal/domain"
	"github.com/betpool/tracker/internal/ledger"
)

// BetHandler handles bet placement, settlement and listing.
type BetHandler struct {
	engine *ledger.Engine
}

// NewBetHandler creates a new BetHandler.
func NewBetHandler(engine *ledger.Engine) *BetHandler {
	return &BetHandler{engine: engine}
}

type placeBetRequest struct {
	MemberID  int64   `json:"member_id" validate:"required,gt=0"`
	Sport     string  `json:"sport" validate:"max=64"`
	Selection string  `json:"selection" validate:"required,max=200"`
	Type      string  `json:"type" validate:"max=32"`
	Stake     int64   `json:"stake" validate:"gt=0,lte=1000000000000"`
	Odds      float64 `json:"odds" validate:"gt=0,lte=100000"`
	EventDate string  `json:"event_date" validate:"max=64"`
}

type settleBetRequest struct {
	Outcome string `json:"outcome" validate:"required,outcome"`
}

// List handles GET /bets?status=&member=.
func (h *BetHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter domain.BetFilter
	q := r.URL.Query()

	if raw := q.Get("status"); raw != "" {
		status, err := domain.ParseBetStatus(raw)
		if err != nil {
			RespondError(w, err)
			return
		}
		filter.Status = status
	}
	if raw := q.Get("member"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			RespondError(w, domain.ErrValidation("member must be a positive id"))
			return
		}
		filter.MemberID = id
	}

	RespondJSON(w, http.StatusOK, h.engine.Bets(filter))
}

// Recent handles GET /bets/recent.
func (h *BetHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := ledger.RecentBetsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	RespondJSON(w, http.StatusOK, h.engine.RecentBets(limit))
}

// Place handles POST /admin/bets.
func (h *BetHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req placeBetRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		RespondError(w, err)
		return
	}

	bet, err := h.engine.PlaceBet(r.Context(), domain.PlaceBetParams{
		MemberID:  req.MemberID,
		Sport:     req.Sport,
		Selection: req.Selection,
		Type:      req.Type,
		Stake:     req.Stake,
		Odds:      req.Odds,
		EventDate: req.EventDate,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, bet)
}

// Settle handles POST /admin/bets/{id}/settle.
func (h *BetHandler) Settle(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	var req settleBetRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		RespondError(w, err)
		return
	}

	bet, err := h.engine.SettleBet(r.Context(), id, domain.BetStatus(req.Outcome))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, bet)
}

// Delete handles DELETE /admin/bets/{id}.
func (h *BetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	if err := h.engine.DeleteBet(r.Context(), id); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}
