// Package model defines the uniform contract every predictor satisfies.
//
// The backtest orchestrator and the live signal generator depend only on
// this interface; tree ensembles, quantile regressors and state-space
// models plug in from outside as long as they fit and predict.
package model

import "math"

// Model is the capability set the pipeline requires of a predictor.
//
// Fit must be callable multiple times (once per fold) without cross-fold
// contamination: each call fits on exactly the rows passed. Predict must
// not panic for well-formed numeric input and returns a neutral all-zero
// score vector when the model was never fit.
type Model interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) []float64
}

// Factory constructs a fresh model instance. The orchestrator calls it
// once per fold so no fitted state crosses fold boundaries.
type Factory func() Model

// Zero is the neutral model: it predicts 0.0 for every row.
type Zero struct{}

// Fit is a no-op.
func (Zero) Fit(X [][]float64, y []float64) error { return nil }

// Predict returns all zeros.
func (Zero) Predict(X [][]float64) []float64 {
	return make([]float64, len(X))
}

// Constant predicts a fixed score for every row. Useful as a reference
// strategy and in tests.
type Constant struct {
	Score float64
}

// Fit is a no-op.
func (c Constant) Fit(X [][]float64, y []float64) error { return nil }

// Predict returns the constant score for every row.
func (c Constant) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i := range out {
		out[i] = c.Score
	}
	return out
}

// rowHasNaN reports whether any value in the vector is NaN.
func rowHasNaN(row []float64) bool {
	for _, v := range row {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
