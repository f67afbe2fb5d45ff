package handler

import (
	"net/http"

	"github.com/betpool/tracker/internal/ledger"
)

// MemberHandler handles member listing and balance adjustments.
type MemberHandler struct {
	engine *ledger.Engine
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(engine *ledger.Engine) *MemberHandler {
	return &MemberHandler{engine: engine}
}

type createMemberRequest struct {
	Name   string `json:"name" validate:"required,max=64"`
	Amount int64  `json:"amount" validate:"gte=0,lte=1000000000000"`
}

type amountRequest struct {
	Amount int64 `json:"amount" validate:"gt=0,lte=1000000000000"`
}

type balanceRequest struct {
	Amount int64 `json:"amount" validate:"gte=0,lte=1000000000000"`
}

// List handles GET /members.
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, h.engine.Members())
}

// Create handles POST /admin/members.
func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMemberRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		RespondError(w, err)
		return
	}

	m, err := h.engine.CreateMember(r.Context(), req.Name, req.Amount)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, m)
}

// AddFunds handles POST /admin/members/{id}/funds.
func (h *MemberHandler) AddFunds(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	var req amountRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		RespondError(w, err)
		return
	}

	m, err := h.engine.AddFunds(r.Context(), id, req.Amount)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, m)
}

// SetBalance handles PUT /admin/members/{id}/balance.
func (h *MemberHandler) SetBalance(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	var req balanceRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		RespondError(w, err)
		return
	}

	m, err := h.engine.SetBalance(r.Context(), id, req.Amount)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, m)
}
