// Package signals produces the live target-weight table from the most
// recent session of data, using the same sizing and risk path as the
// backtest so live behavior matches what was tested.
package signals

import (
	"math"
	"sort"
	"time"

	"github.com/wonny/alphalab/internal/dataset"
	"github.com/wonny/alphalab/internal/model"
	"github.com/wonny/alphalab/internal/risk"
	"github.com/wonny/alphalab/pkg/logger"
)

// Config controls live signal generation.
type Config struct {
	// Universe is the asset list the table must cover. Assets with no
	// usable data still appear, at weight zero, so downstream consumers
	// always see a complete table.
	Universe []string

	// MaxAbsWeight caps live weights tighter than the backtest cap.
	MaxAbsWeight float64

	// MomentumFeature names the feature driving the fallback heuristic.
	MomentumFeature string

	Limits risk.Limits
}

// Signal is one asset's live target weight with its provenance.
type Signal struct {
	Asset   string    `json:"asset"`
	Weight  float64   `json:"weight"`
	Score   float64   `json:"score"`
	Session time.Time `json:"session"`
	Source  string    `json:"source"` // "model" or "heuristic"
	Stale   bool      `json:"stale"`  // no data for this asset
}

// Table is one complete generation pass.
type Table struct {
	Signals     []Signal  `json:"signals"`
	GeneratedAt time.Time `json:"generated_at"`
	Rejected    int       `json:"rejected"`
}

// Generator produces live weight tables.
type Generator struct {
	cfg    Config
	model  model.Model // nil falls back to the momentum heuristic
	logger *logger.Logger
}

// NewGenerator creates a live signal generator. Passing a nil model
// selects the volatility-scaled momentum heuristic.
func NewGenerator(cfg Config, m model.Model, log *logger.Logger) *Generator {
	if cfg.MomentumFeature == "" {
		cfg.MomentumFeature = "mom_20"
	}
	return &Generator{cfg: cfg, model: m, logger: log}
}

// Generate builds the live weight table from the latest available session
// per asset. Every universe asset appears exactly once; assets with no
// data get weight 0.0 and are flagged stale rather than omitted.
func (g *Generator) Generate(ds *dataset.Dataset) *Table {
	universe := append([]string(nil), g.cfg.Universe...)
	sort.Strings(universe)

	signals := make([]Signal, 0, len(universe))
	raw := make(map[string]float64, len(universe))

	for _, asset := range universe {
		sig := g.score(ds, asset)
		raw[asset] = sig.Weight
		signals = append(signals, sig)
	}

	clamped, rejections := risk.Clamp(raw, g.cfg.Limits)
	for _, r := range rejections {
		g.logger.WithError(r.Reason).WithField("asset", r.Asset).Warn("live signal rejected, forced to zero")
	}
	for i := range signals {
		signals[i].Weight = clamped[signals[i].Asset]
	}

	g.logger.WithFields(map[string]interface{}{
		"assets":   len(signals),
		"rejected": len(rejections),
	}).Info("live signals generated")

	return &Table{
		Signals:     signals,
		GeneratedAt: time.Now(),
		Rejected:    len(rejections),
	}
}

func (g *Generator) score(ds *dataset.Dataset, asset string) Signal {
	session, ok := ds.LatestFor(asset)
	if !ok {
		return Signal{Asset: asset, Stale: true}
	}

	if g.model != nil {
		feats, ok := ds.Features(session, asset)
		if !ok {
			return Signal{Asset: asset, Session: session, Stale: true, Source: "model"}
		}
		score := g.model.Predict([][]float64{feats})[0]
		return Signal{
			Asset:   asset,
			Session: session,
			Score:   score,
			Weight:  g.clip(score),
			Source:  "model",
		}
	}

	// Heuristic: momentum scaled by inverse realized vol. The epsilon
	// keeps near-zero vol from exploding the ratio.
	mom, okM := ds.Feature(session, asset, g.cfg.MomentumFeature)
	vol, okV := ds.RealizedVol(session, asset)
	if !okM || !okV || math.IsNaN(mom) || math.IsNaN(vol) || vol <= 0 {
		return Signal{Asset: asset, Session: session, Stale: true, Source: "heuristic"}
	}

	score := mom / (vol + 1e-8)
	return Signal{
		Asset:   asset,
		Session: session,
		Score:   score,
		Weight:  g.clip(score),
		Source:  "heuristic",
	}
}

func (g *Generator) clip(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	if score > g.cfg.MaxAbsWeight {
		return g.cfg.MaxAbsWeight
	}
	if score < -g.cfg.MaxAbsWeight {
		return -g.cfg.MaxAbsWeight
	}
	return score
}

// Weights returns the table as an asset-to-weight map.
func (t *Table) Weights() map[string]float64 {
	out := make(map[string]float64, len(t.Signals))
	for _, s := range t.Signals {
		out[s.Asset] = s.Weight
	}
	return out
}
