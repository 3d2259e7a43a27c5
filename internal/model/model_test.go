package model

import (
	"math"
	"testing"
)

func TestZero(t *testing.T) {
	var m Model = Zero{}

	if err := m.Fit([][]float64{{1, 2}}, []float64{0.5}); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	for _, p := range m.Predict([][]float64{{1, 2}, {3, 4}}) {
		if p != 0 {
			t.Errorf("Zero predicted %v", p)
		}
	}
}

func TestConstant(t *testing.T) {
	var m Model = Constant{Score: 1.0}

	preds := m.Predict(make([][]float64, 3))
	for _, p := range preds {
		if p != 1.0 {
			t.Errorf("Constant predicted %v, want 1.0", p)
		}
	}
}

func TestRidge_RecoversLinear(t *testing.T) {
	// y = 2*x0 - 1*x1 + 0.5, noiseless
	var X [][]float64
	var y []float64
	for i := 0; i < 50; i++ {
		x0 := float64(i) * 0.1
		x1 := float64(i%7) * 0.3
		X = append(X, []float64{x0, x1})
		y = append(y, 2*x0-x1+0.5)
	}

	m := NewRidge(1e-8)
	if err := m.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	preds := m.Predict(X)
	for i := range preds {
		if math.Abs(preds[i]-y[i]) > 1e-4 {
			t.Fatalf("pred[%d] = %v, want %v", i, preds[i], y[i])
		}
	}
}

func TestRidge_UnfitPredictsNeutral(t *testing.T) {
	m := NewRidge(1.0)

	preds := m.Predict([][]float64{{1, 2}, {3, 4}})
	if len(preds) != 2 {
		t.Fatalf("expected 2 predictions, got %d", len(preds))
	}
	for _, p := range preds {
		if p != 0 {
			t.Errorf("unfit model predicted %v, want 0", p)
		}
	}
}

func TestRidge_NaNRowsExcludedFromFit(t *testing.T) {
	X := [][]float64{
		{1, 1}, {2, 1}, {3, 2}, {4, 3}, {5, 5},
		{math.NaN(), 1}, // dropped
	}
	y := []float64{1, 2, 3, 4, 5, 100}

	m := NewRidge(1e-6)
	if err := m.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	// The poisoned row must not have influenced the fit
	pred := m.Predict([][]float64{{3, 2}})[0]
	if math.Abs(pred-3) > 0.5 {
		t.Errorf("prediction %v suggests NaN row leaked into fit", pred)
	}
}

func TestRidge_NaNRowPredictsNeutral(t *testing.T) {
	X := [][]float64{{1, 1}, {2, 1}, {3, 2}, {4, 3}, {5, 5}}
	y := []float64{1, 2, 3, 4, 5}

	m := NewRidge(1e-6)
	if err := m.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	preds := m.Predict([][]float64{{math.NaN(), 1}, {2, 1}})
	if preds[0] != 0 {
		t.Errorf("NaN row predicted %v, want 0", preds[0])
	}
	if preds[1] == 0 {
		t.Error("clean row should produce a real prediction")
	}
}

func TestRidge_DegenerateTraining(t *testing.T) {
	// Fewer usable rows than features must fail, not fit garbage
	m := NewRidge(1.0)
	err := m.Fit([][]float64{{1, 2, 3}}, []float64{0.5})
	if err == nil {
		t.Fatal("expected error for underdetermined fit")
	}

	// NaN labels can empty the training set
	m2 := NewRidge(1.0)
	err = m2.Fit([][]float64{{1}, {2}}, []float64{math.NaN(), math.NaN()})
	if err == nil {
		t.Fatal("expected error when every label is NaN")
	}
}

func TestRidge_RefitReplacesState(t *testing.T) {
	X1 := [][]float64{{1}, {2}, {3}, {4}}
	y1 := []float64{2, 4, 6, 8} // y = 2x
	X2 := [][]float64{{1}, {2}, {3}, {4}}
	y2 := []float64{-1, -2, -3, -4} // y = -x

	m := NewRidge(1e-8)
	if err := m.Fit(X1, y1); err != nil {
		t.Fatalf("first fit failed: %v", err)
	}
	if err := m.Fit(X2, y2); err != nil {
		t.Fatalf("second fit failed: %v", err)
	}

	pred := m.Predict([][]float64{{3}})[0]
	if math.Abs(pred-(-3)) > 1e-3 {
		t.Errorf("refit prediction = %v, want -3 (stale state from first fit?)", pred)
	}
}
