// Package sizing converts raw prediction scores and account risk budgets
// into bounded position sizes.
package sizing

import (
	"errors"
	"fmt"
	"math"
)

// Config controls volatility-targeted weight scaling.
type Config struct {
	VolTarget    float64 // target annualized volatility contribution per unit score
	VolFloor     float64 // lower bound on realized vol to prevent division blow-up
	MaxAbsWeight float64 // hard cap on |weight| after scaling
	DefaultVol   float64 // substituted when no realized vol is available
}

// DefaultConfig returns the documented sizing defaults.
func DefaultConfig() Config {
	return Config{
		VolTarget:    0.10,
		VolFloor:     0.01,
		MaxAbsWeight: 0.5,
		DefaultVol:   0.15,
	}
}

// VolTargetWeights converts scores into bounded weights:
//
//	weight = score * (vol_target / max(realized_vol, vol_floor))
//
// clipped to [-max_abs_weight, max_abs_weight]. Scaling by inverse realized
// volatility equalizes risk contribution across assets so a single volatile
// asset cannot dominate portfolio variance. A NaN score yields weight 0; a
// NaN or non-positive vol falls back to DefaultVol before flooring.
func VolTargetWeights(scores, vols []float64, cfg Config) []float64 {
	weights := make([]float64, len(scores))
	for i, score := range scores {
		if math.IsNaN(score) {
			continue
		}

		vol := cfg.DefaultVol
		if i < len(vols) && !math.IsNaN(vols[i]) && vols[i] > 0 {
			vol = vols[i]
		}
		if vol < cfg.VolFloor {
			vol = cfg.VolFloor
		}

		w := score * (cfg.VolTarget / vol)
		if w > cfg.MaxAbsWeight {
			w = cfg.MaxAbsWeight
		} else if w < -cfg.MaxAbsWeight {
			w = -cfg.MaxAbsWeight
		}
		weights[i] = w
	}
	return weights
}

// ErrInvalidStop is returned when entry/stop prices cannot define a risk
// per unit (entry <= stop, or non-positive prices).
var ErrInvalidStop = errors.New("sizing: invalid entry/stop")

// AccountSizer computes fixed-fractional position sizes for discretionary
// trades against a fixed account equity.
type AccountSizer struct {
	Equity         float64 // account equity
	RiskPct        float64 // fraction of equity risked per trade
	MaxPositionPct float64 // cap on cost basis as a fraction of equity
}

// NewAccountSizer creates a sizer with the documented defaults
// (1% risk per trade, 20% max position).
func NewAccountSizer(equity float64) *AccountSizer {
	return &AccountSizer{
		Equity:         equity,
		RiskPct:        0.01,
		MaxPositionPct: 0.20,
	}
}

// TradeSize is the result of fixed-fractional sizing. KellyShares and
// KellyFraction are advisory only: the fixed-fractional/cap result is
// always the binding size, because naive Kelly sizing is too aggressive
// under model-estimation error.
type TradeSize struct {
	Shares        int     `json:"shares"`
	CostBasis     float64 `json:"cost_basis"`
	RiskAmount    float64 `json:"risk_amount"`
	ActualRiskPct float64 `json:"actual_risk_pct"`
	StopWidthPct  float64 `json:"stop_width_pct"`
	KellyFraction float64 `json:"kelly_fraction"`
	KellyShares   int     `json:"kelly_shares"`
}

// Size computes the share count for an entry/stop pair:
// floor(equity*risk_pct / (entry-stop)), further capped so the cost basis
// stays within MaxPositionPct of equity regardless of stop placement.
// The winRate/payoff pair feeds the advisory half-Kelly estimate.
func (s *AccountSizer) Size(entry, stop, winRate, payoff float64) (TradeSize, error) {
	if entry <= 0 || stop <= 0 || entry <= stop {
		return TradeSize{}, fmt.Errorf("%w: entry=%.4f stop=%.4f", ErrInvalidStop, entry, stop)
	}

	riskPerUnit := entry - stop
	riskBudget := s.Equity * s.RiskPct

	shares := int(riskBudget / riskPerUnit)

	// Concentration cap binds regardless of stop placement
	maxByCapital := int(s.Equity * s.MaxPositionPct / entry)
	if shares > maxByCapital {
		shares = maxByCapital
	}

	kelly := HalfKelly(winRate, payoff)
	kellyShares := 0
	if kelly > 0 {
		kellyShares = int(s.Equity * kelly / entry)
	}

	size := TradeSize{
		Shares:        shares,
		CostBasis:     float64(shares) * entry,
		RiskAmount:    float64(shares) * riskPerUnit,
		StopWidthPct:  riskPerUnit / entry,
		KellyFraction: kelly,
		KellyShares:   kellyShares,
	}
	if s.Equity > 0 {
		size.ActualRiskPct = size.RiskAmount / s.Equity
	}

	return size, nil
}

// HalfKelly returns half the Kelly fraction, clamped to [0, 0.25]:
//
//	kelly = win_rate - (1-win_rate)/payoff
//
// The clamp keeps the advisory number from suggesting leverage.
func HalfKelly(winRate, payoff float64) float64 {
	if payoff <= 0 {
		return 0
	}
	half := (winRate - (1-winRate)/payoff) / 2
	if half < 0 {
		return 0
	}
	if half > 0.25 {
		return 0.25
	}
	return half
}
