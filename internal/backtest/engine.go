// Package backtest orchestrates the full research pipeline: walk-forward
// splits, per-fold model fitting, sizing, risk clamping and cost-aware
// simulation, summarized into one report.
package backtest

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/wonny/alphalab/internal/cv"
	"github.com/wonny/alphalab/internal/dataset"
	"github.com/wonny/alphalab/internal/metrics"
	"github.com/wonny/alphalab/internal/model"
	"github.com/wonny/alphalab/internal/risk"
	"github.com/wonny/alphalab/internal/sim"
	"github.com/wonny/alphalab/internal/sizing"
	"github.com/wonny/alphalab/pkg/logger"
)

// Config holds everything one backtest run needs besides the data.
type Config struct {
	CV      cv.Params
	Sizing  sizing.Config
	Limits  risk.Limits
	CostBps float64

	// Workers > 1 runs folds concurrently. Folds are independent by
	// construction (fresh model per fold, simulator flat at fold
	// boundaries), so results are identical either way.
	Workers int
}

// FoldStats summarizes one executed fold.
type FoldStats struct {
	Index      int       `json:"index"`
	TrainRows  int       `json:"train_rows"`
	TestStart  time.Time `json:"test_start"`
	TestEnd    time.Time `json:"test_end"`
	Sessions   int       `json:"sessions"`
	NetReturn  float64   `json:"net_return"`
	Turnover   float64   `json:"turnover"`
	Rejections int       `json:"rejections"`
	Skipped    bool      `json:"skipped"`
	SkipReason string    `json:"skip_reason,omitempty"`
}

// Result is the full backtest report.
type Result struct {
	Returns      []sim.SessionResult `json:"returns"`
	Summary      metrics.Summary     `json:"summary"`
	Folds        []FoldStats         `json:"folds"`
	FoldsRun     int                 `json:"folds_run"`
	FoldsSkipped int                 `json:"folds_skipped"`
	StartedAt    time.Time           `json:"started_at"`
	Duration     time.Duration       `json:"duration"`
}

// Engine runs backtests. SSOT: fold execution lives here and nowhere else.
type Engine struct {
	cfg    Config
	logger *logger.Logger
}

// NewEngine creates a backtest engine.
func NewEngine(cfg Config, log *logger.Logger) *Engine {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Engine{cfg: cfg, logger: log}
}

// Run executes the walk-forward backtest. A timeline that cannot produce
// a single fold is fatal; a fold whose training slice cannot fit a model
// is skipped with a warning and the remaining folds still run.
func (e *Engine) Run(ctx context.Context, ds *dataset.Dataset, factory model.Factory) (*Result, error) {
	started := time.Now()

	sessions := ds.Sessions()
	folds, err := cv.Split(sessions, e.cfg.CV)
	if err != nil {
		return nil, fmt.Errorf("backtest: %w", err)
	}

	e.logger.WithFields(map[string]interface{}{
		"sessions": len(sessions),
		"folds":    len(folds),
		"workers":  e.cfg.Workers,
	}).Info("backtest started")

	stats := make([]FoldStats, len(folds))
	foldReturns := make([][]sim.SessionResult, len(folds))

	var wg sync.WaitGroup
	sem := make(chan struct{}, e.cfg.Workers)
	for k := range folds {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(k int) {
			defer wg.Done()
			defer func() { <-sem }()
			stats[k], foldReturns[k] = e.runFold(k, folds[k], sessions, ds, factory())
		}(k)
	}
	wg.Wait()

	// Merge per-fold series back into one session-ordered curve. Test
	// windows never overlap, so a plain sort is a full merge.
	var returns []sim.SessionResult
	run, skipped := 0, 0
	for k := range stats {
		if stats[k].Skipped {
			skipped++
			continue
		}
		run++
		returns = append(returns, foldReturns[k]...)
	}
	sort.Slice(returns, func(i, j int) bool {
		return returns[i].Session.Before(returns[j].Session)
	})

	result := &Result{
		Returns:      returns,
		Summary:      metrics.Summarize(sim.NetReturns(returns)),
		Folds:        stats,
		FoldsRun:     run,
		FoldsSkipped: skipped,
		StartedAt:    started,
		Duration:     time.Since(started),
	}

	e.logger.WithFields(map[string]interface{}{
		"folds_run":     run,
		"folds_skipped": skipped,
		"sessions":      len(returns),
		"sharpe":        result.Summary.Sharpe,
		"max_drawdown":  result.Summary.MaxDrawdown,
		"duration":      result.Duration.String(),
	}).Info("backtest finished")

	return result, nil
}

// runFold fits a fresh model on the training window and simulates the
// test window. The simulator starts flat: no position carries across a
// fold boundary.
func (e *Engine) runFold(k int, fold cv.Fold, sessions []time.Time, ds *dataset.Dataset, m model.Model) (FoldStats, []sim.SessionResult) {
	trainSessions := pick(sessions, fold.Train)
	testSessions := pick(sessions, fold.Test)

	stats := FoldStats{
		Index:     k,
		TestStart: testSessions[0],
		TestEnd:   testSessions[len(testSessions)-1],
		Sessions:  len(testSessions),
	}

	trainRows := ds.LabeledRows(trainSessions)
	stats.TrainRows = len(trainRows)

	X := make([][]float64, len(trainRows))
	y := make([]float64, len(trainRows))
	for i, row := range trainRows {
		X[i] = row.Features
		y[i] = row.Label
	}

	if err := m.Fit(X, y); err != nil {
		stats.Skipped = true
		stats.SkipReason = err.Error()
		e.logger.WithError(err).WithField("fold", k).Warn("fold skipped: model fit failed")
		return stats, nil
	}

	var table []sim.SessionWeights
	for _, session := range testSessions {
		weights, rejections := e.sizeSession(session, ds, m)
		stats.Rejections += len(rejections)
		for _, r := range rejections {
			e.logger.WithError(r.Reason).WithFields(map[string]interface{}{
				"fold":   k,
				"asset":  r.Asset,
				"weight": r.Weight,
			}).Warn("weight rejected, forced to zero")
		}
		table = append(table, sim.SessionWeights{Session: session, Weights: weights})
	}

	results := sim.Run(table, func(session time.Time, asset string) (float64, bool) {
		return ds.Label(session, asset)
	}, e.cfg.CostBps)

	for _, r := range results {
		stats.NetReturn += r.Net
		stats.Turnover += r.Turnover
	}

	return stats, results
}

// sizeSession produces the clamped weight table for one test session.
// Assets with no features that day or a NaN prediction come out at zero
// weight rather than being dropped.
func (e *Engine) sizeSession(session time.Time, ds *dataset.Dataset, m model.Model) (map[string]float64, []risk.Rejection) {
	assets := ds.AssetsAt(session)
	if len(assets) == 0 {
		return map[string]float64{}, nil
	}

	X := make([][]float64, len(assets))
	vols := make([]float64, len(assets))
	for i, asset := range assets {
		feats, _ := ds.Features(session, asset)
		X[i] = feats
		if v, ok := ds.RealizedVol(session, asset); ok {
			vols[i] = v
		} else {
			vols[i] = math.NaN()
		}
	}

	scores := m.Predict(X)
	weights := sizing.VolTargetWeights(scores, vols, e.cfg.Sizing)

	table := make(map[string]float64, len(assets))
	for i, asset := range assets {
		table[asset] = weights[i]
	}

	return risk.Clamp(table, e.cfg.Limits)
}

func pick(sessions []time.Time, idx []int) []time.Time {
	out := make([]time.Time, len(idx))
	for i, j := range idx {
		out[i] = sessions[j]
	}
	return out
}
