// Package risk implements stateless pre-trade and portfolio-level gates.
//
// The checks are pure functions over their arguments: they never mutate
// inputs and hold no state, so they are safe to invoke concurrently
// across assets within one session. A caller that receives a failure must
// drop the order, shrink the weight, or abort the batch.
package risk

import (
	"errors"
	"fmt"
	"math"
)

const (
	perAssetEps = 1e-9
	grossEps    = 1e-6
)

// Sentinel errors for the gate conditions; match with errors.Is.
var (
	ErrPerAssetCap    = errors.New("risk: weight exceeds per-asset cap")
	ErrShortsDisabled = errors.New("risk: short selling disabled")
	ErrGrossExposure  = errors.New("risk: gross exposure exceeds limit")
)

// Limits holds the portfolio risk configuration.
type Limits struct {
	PerAssetCap float64 // max |weight| per asset
	MaxGross    float64 // max sum of |weight| across assets
	AllowShorts bool
}

// DefaultLimits returns the documented risk defaults.
func DefaultLimits() Limits {
	return Limits{
		PerAssetCap: 0.5,
		MaxGross:    2.0,
		AllowShorts: true,
	}
}

// PretradeGuard validates a single asset's target weight against the
// limits. It fails fast with a wrapped sentinel error and has no side
// effects on success.
func PretradeGuard(asset string, weight float64, lim Limits) error {
	if math.IsNaN(weight) {
		return fmt.Errorf("risk: %s weight is NaN", asset)
	}
	if math.Abs(weight) > lim.PerAssetCap+perAssetEps {
		return fmt.Errorf("%w: %s weight=%.3f cap=%.3f", ErrPerAssetCap, asset, weight, lim.PerAssetCap)
	}
	if weight < 0 && !lim.AllowShorts {
		return fmt.Errorf("%w: %s weight=%.3f", ErrShortsDisabled, asset, weight)
	}
	return nil
}

// CheckGrossExposure validates total capital at risk across the weight
// table, independent of direction.
func CheckGrossExposure(weights map[string]float64, maxGross float64) error {
	gross := 0.0
	for _, w := range weights {
		if math.IsNaN(w) {
			continue
		}
		gross += math.Abs(w)
	}
	if gross > maxGross+grossEps {
		return fmt.Errorf("%w: gross=%.3f max=%.3f", ErrGrossExposure, gross, maxGross)
	}
	return nil
}

// Rejection records one asset forced to neutral by the clamp.
type Rejection struct {
	Asset  string
	Weight float64
	Reason error
}

// Clamp is the documented recovery policy for a full weight table: any
// asset failing the pre-trade guard is forced to zero (never dropped from
// the table), and if the surviving gross exposure still exceeds the limit
// every weight is scaled proportionally back inside it. The input map is
// not mutated.
func Clamp(weights map[string]float64, lim Limits) (map[string]float64, []Rejection) {
	out := make(map[string]float64, len(weights))
	var rejected []Rejection

	gross := 0.0
	for asset, w := range weights {
		if err := PretradeGuard(asset, w, lim); err != nil {
			rejected = append(rejected, Rejection{Asset: asset, Weight: w, Reason: err})
			out[asset] = 0
			continue
		}
		out[asset] = w
		gross += math.Abs(w)
	}

	if gross > lim.MaxGross+grossEps {
		scale := lim.MaxGross / gross
		for asset := range out {
			out[asset] *= scale
		}
	}

	return out, rejected
}
