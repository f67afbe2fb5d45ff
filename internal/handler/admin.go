package handler

import (
	"log/slog"
	"net/http"

	"github.com/betpool/tracker/internal/auth"
	"github.com/betpool/tracker/internal/ledger"
)

// AdminHandler exposes maintenance operations on the ledger.
type AdminHandler struct {
	engine *ledger.Engine
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(engine *ledger.Engine, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{engine: engine, logger: logger}
}

// Refresh handles POST /admin/refresh by reloading the snapshot from the store.
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Refresh(r.Context()); err != nil {
		RespondError(w, err)
		return
	}
	h.logger.Info("snapshot refresh requested", "subject", auth.SubjectFromContext(r.Context()))
	RespondJSON(w, http.StatusOK, map[string]uint64{"version": h.engine.Version()})
}

// Reconcile handles GET /admin/reconcile.
func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	report := h.engine.Reconcile()
	if !report.AllPassed {
		h.logger.Warn("reconcile found violations", "version", report.Version)
	}
	RespondJSON(w, http.StatusOK, report)
}
