package handler

import (
	"net/http"

	"github.com/betpool/tracker/internal/service"
)

// StatsHandler serves the computed statistics views.
type StatsHandler struct {
	board *service.BoardService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(board *service.BoardService) *StatsHandler {
	return &StatsHandler{board: board}
}

// Member handles GET /stats/members/{id}.
func (h *StatsHandler) Member(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	ms, err := h.board.MemberStats(id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, ms)
}

// Board handles GET /stats/board.
func (h *StatsHandler) Board(w http.ResponseWriter, r *http.Request) {
	b, err := h.board.Board(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, b)
}

// Leaderboard handles GET /stats/leaderboard.
func (h *StatsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	b, err := h.board.Board(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, b.Leaderboard)
}

// Awards handles GET /stats/awards.
func (h *StatsHandler) Awards(w http.ResponseWriter, r *http.Request) {
	b, err := h.board.Board(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, b.Awards)
}

// HotHand handles GET /stats/hot-hand. hot_hand is null when nobody qualifies.
func (h *StatsHandler) HotHand(w http.ResponseWriter, r *http.Request) {
	b, err := h.board.Board(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"hot_hand": b.HotHand})
}

// Summary handles GET /stats/summary.
func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	b, err := h.board.Board(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, b.Summary)
}
