// Package sim implements the transaction-cost-aware execution simulator.
//
// The simulator applies a weight table session by session: it earns the
// weighted realized return of each held asset and pays a proportional
// cost on every weight change, including the initial entry from flat and
// the final exit back to flat.
package sim

import (
	"math"
	"sort"
	"time"
)

// SessionWeights is one session's target weight table keyed by asset.
type SessionWeights struct {
	Session time.Time
	Weights map[string]float64
}

// ReturnLookup resolves the realized per-session return for an asset.
// The second result is false when no return is known, in which case the
// asset contributes zero gross P&L but its weight still incurs turnover.
type ReturnLookup func(session time.Time, asset string) (float64, bool)

// SessionResult is the decomposed P&L for one session.
type SessionResult struct {
	Session  time.Time `json:"session"`
	Gross    float64   `json:"gross"`
	Turnover float64   `json:"turnover"`
	Cost     float64   `json:"cost"`
	Net      float64   `json:"net"`
}

// Run replays the weight tables in session order against realized returns,
// charging costBps basis points on each unit of turnover. Turnover for an
// asset is |w_t - w_{t-1}| with missing prior weight treated as zero, so
// entering a position from flat costs |w_t| and an asset dropped from the
// table is charged its full prior weight. The final book is left open;
// TotalCost adds the close-out charge when a caller wants it.
//
// Costs scale linearly with turnover: trading twice as much always costs
// twice as much, and a zero-turnover session is free.
func Run(sessions []SessionWeights, returns ReturnLookup, costBps float64) []SessionResult {
	ordered := append([]SessionWeights(nil), sessions...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Session.Before(ordered[j].Session)
	})

	results := make([]SessionResult, 0, len(ordered))
	prev := map[string]float64{}

	for _, sw := range ordered {
		gross := 0.0
		turnover := 0.0

		for asset, w := range sw.Weights {
			if math.IsNaN(w) {
				w = 0
			}
			if r, ok := returns(sw.Session, asset); ok && !math.IsNaN(r) {
				gross += w * r
			}
			turnover += math.Abs(w - prev[asset])
		}
		// Positions dropped from the table are closed out
		for asset, w := range prev {
			if _, held := sw.Weights[asset]; !held {
				turnover += math.Abs(w)
			}
		}

		cost := turnover * costBps / 1e4
		results = append(results, SessionResult{
			Session:  sw.Session,
			Gross:    gross,
			Turnover: turnover,
			Cost:     cost,
			Net:      gross - cost,
		})

		next := make(map[string]float64, len(sw.Weights))
		for asset, w := range sw.Weights {
			if !math.IsNaN(w) && w != 0 {
				next[asset] = w
			}
		}
		prev = next
	}

	return results
}

// NetReturns extracts the net return series from session results.
func NetReturns(results []SessionResult) []float64 {
	out := make([]float64, len(results))
	for i, r := range results {
		out[i] = r.Net
	}
	return out
}

// TotalCost sums the cost paid across all sessions, including the exit
// charge implied by closing the final book: each residual weight after
// the last session pays |w| * costBps.
func TotalCost(results []SessionResult, finalBook map[string]float64, costBps float64) float64 {
	total := 0.0
	for _, r := range results {
		total += r.Cost
	}
	for _, w := range finalBook {
		if !math.IsNaN(w) {
			total += math.Abs(w) * costBps / 1e4
		}
	}
	return total
}
