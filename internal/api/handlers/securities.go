package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/quantex/oms/internal/refdata"
	"github.com/quantex/oms/internal/resolution"
	"github.com/quantex/oms/pkg/logger"
)

// SecuritiesHandler serves the static reference data.
type SecuritiesHandler struct {
	store  *refdata.Store
	logger *logger.Logger
}

// NewSecuritiesHandler creates a new securities handler
func NewSecuritiesHandler(store *refdata.Store, log *logger.Logger) *SecuritiesHandler {
	return &SecuritiesHandler{store: store, logger: log}
}

// List returns all securities
// GET /api/securities
func (h *SecuritiesHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Securities())
}

// Get returns one security with its market status
// GET /api/securities/{symbol}
func (h *SecuritiesHandler) Get(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	sec, ok := h.store.Security(symbol)
	if !ok {
		respondError(w, http.StatusNotFound, "Security "+symbol+" not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"security": sec,
		"market":   h.store.Market(sec.Market),
	})
}

// Algorithms returns the fixed execution-algorithm catalog
// GET /api/algorithms
func (h *SecuritiesHandler) Algorithms(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, resolution.Catalog())
}
