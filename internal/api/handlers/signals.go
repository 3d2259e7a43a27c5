package handlers

import (
	"errors"
	"net/http"

	"github.com/wonny/alphalab/internal/signals"
	"github.com/wonny/alphalab/pkg/logger"
)

// SignalHandler handles live signal API endpoints.
// SSOT: the signal API surface lives only in this struct.
type SignalHandler struct {
	store      *signals.Store
	regenerate func() error // enqueues an out-of-schedule regeneration
	logger     *logger.Logger
}

// NewSignalHandler creates a new signal handler
func NewSignalHandler(store *signals.Store, regenerate func() error, log *logger.Logger) *SignalHandler {
	return &SignalHandler{
		store:      store,
		regenerate: regenerate,
		logger:     log,
	}
}

// GetLatest returns the most recent signal table
// GET /api/signals/latest
func (h *SignalHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	table, err := h.store.Latest(r.Context())
	if err != nil {
		if errors.Is(err, signals.ErrNoTable) {
			respondError(w, http.StatusNotFound, "No signal table generated yet")
			return
		}
		h.logger.WithError(err).Error("Failed to load signal table")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve signals")
		return
	}

	respondJSON(w, http.StatusOK, table)
}

// Generate triggers an out-of-schedule signal regeneration
// POST /api/signals/generate
func (h *SignalHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if h.regenerate == nil {
		respondError(w, http.StatusServiceUnavailable, "Signal generation not available")
		return
	}

	if err := h.regenerate(); err != nil {
		h.logger.WithError(err).Error("Failed to trigger signal generation")
		respondError(w, http.StatusInternalServerError, "Failed to trigger generation")
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "generation started"})
}
