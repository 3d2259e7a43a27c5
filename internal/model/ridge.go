package model

import (
	"fmt"
	"math"
)

// Ridge is the in-repo reference predictor: ordinary least squares with
// L2 damping, solved by normal equations. It exists so the pipeline can
// be exercised end to end without an external model; production research
// plugs richer models in through the Model interface.
type Ridge struct {
	Lambda float64 // L2 penalty; 0 falls back to a small damping term

	fitted    bool
	coef      []float64
	intercept float64
}

// NewRidge creates a ridge regressor with the given L2 penalty.
func NewRidge(lambda float64) *Ridge {
	return &Ridge{Lambda: lambda}
}

// Fit solves (X'X + lambda*I) b = X'y over the rows passed. Rows
// containing NaN features or a NaN label are excluded. Fitting on fewer
// usable rows than features fails, which callers treat as a degenerate
// training slice.
func (r *Ridge) Fit(X [][]float64, y []float64) error {
	if len(X) != len(y) {
		return fmt.Errorf("model: X has %d rows, y has %d", len(X), len(y))
	}
	if len(X) == 0 {
		return fmt.Errorf("model: empty training set")
	}

	p := len(X[0])

	// Drop rows that cannot contribute
	var rows [][]float64
	var labels []float64
	for i := range X {
		if rowHasNaN(X[i]) || math.IsNaN(y[i]) {
			continue
		}
		rows = append(rows, X[i])
		labels = append(labels, y[i])
	}
	if len(rows) <= p {
		return fmt.Errorf("model: %d usable rows for %d features", len(rows), p)
	}

	lambda := r.Lambda
	if lambda <= 0 {
		lambda = 1e-6
	}

	// Augmented design: column 0 is the intercept (not penalized)
	dim := p + 1
	ata := make([][]float64, dim)
	aty := make([]float64, dim)
	for i := range ata {
		ata[i] = make([]float64, dim)
	}

	for i, row := range rows {
		aug := make([]float64, dim)
		aug[0] = 1.0
		copy(aug[1:], row)
		for a := 0; a < dim; a++ {
			for b := 0; b < dim; b++ {
				ata[a][b] += aug[a] * aug[b]
			}
			aty[a] += aug[a] * labels[i]
		}
	}
	for a := 1; a < dim; a++ {
		ata[a][a] += lambda
	}

	sol, err := solve(ata, aty)
	if err != nil {
		return fmt.Errorf("model: %w", err)
	}

	r.intercept = sol[0]
	r.coef = sol[1:]
	r.fitted = true

	return nil
}

// Predict returns one score per row, in row order. An unfit model and
// rows with NaN features both yield a neutral 0.0.
func (r *Ridge) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	if !r.fitted {
		return out
	}

	for i, row := range X {
		if len(row) != len(r.coef) || rowHasNaN(row) {
			continue
		}
		s := r.intercept
		for j, v := range row {
			s += r.coef[j] * v
		}
		if math.IsNaN(s) || math.IsInf(s, 0) {
			continue
		}
		out[i] = s
	}
	return out
}

// solve performs Gaussian elimination with partial pivoting.
func solve(a [][]float64, b []float64) ([]float64, error) {
	n := len(a)

	// Work on copies; the matrices are small
	m := make([][]float64, n)
	for i := range a {
		m[i] = append([]float64(nil), a[i]...)
	}
	rhs := append([]float64(nil), b...)

	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(m[row][col]) > math.Abs(m[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(m[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("singular normal equations at column %d", col)
		}
		m[col], m[pivot] = m[pivot], m[col]
		rhs[col], rhs[pivot] = rhs[pivot], rhs[col]

		for row := col + 1; row < n; row++ {
			f := m[row][col] / m[col][col]
			for k := col; k < n; k++ {
				m[row][k] -= f * m[col][k]
			}
			rhs[row] -= f * rhs[col]
		}
	}

	sol := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		s := rhs[row]
		for k := row + 1; k < n; k++ {
			s -= m[row][k] * sol[k]
		}
		sol[row] = s / m[row][row]
	}

	return sol, nil
}
