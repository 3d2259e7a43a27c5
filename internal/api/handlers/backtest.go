package handlers

import (
	"net/http"

	"github.com/wonny/alphalab/internal/backtest"
	"github.com/wonny/alphalab/pkg/logger"
)

// BacktestHandler serves persisted backtest reports.
type BacktestHandler struct {
	repo     *backtest.Repository
	strategy string
	logger   *logger.Logger
}

// NewBacktestHandler creates a new backtest handler
func NewBacktestHandler(repo *backtest.Repository, strategy string, log *logger.Logger) *BacktestHandler {
	return &BacktestHandler{
		repo:     repo,
		strategy: strategy,
		logger:   log,
	}
}

// GetLatest returns the most recent backtest run for the active strategy
// GET /api/backtest/latest
func (h *BacktestHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	strategy := r.URL.Query().Get("strategy")
	if strategy == "" {
		strategy = h.strategy
	}

	run, err := h.repo.LatestRun(r.Context(), strategy)
	if err != nil {
		h.logger.WithError(err).WithField("strategy", strategy).Error("Failed to load backtest run")
		respondError(w, http.StatusNotFound, "No backtest run found")
		return
	}

	respondJSON(w, http.StatusOK, run)
}
