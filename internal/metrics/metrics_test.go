package metrics

import (
	"math"
	"testing"
)

func TestSampleStd(t *testing.T) {
	// Sample (n-1) convention: std of {1,2,3,4} is sqrt(5/3)
	got := sampleStd([]float64{1, 2, 3, 4})
	want := math.Sqrt(5.0 / 3.0)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("sampleStd = %v, want %v", got, want)
	}
}

func TestSharpe(t *testing.T) {
	returns := []float64{0.01, -0.005, 0.008, 0.002, -0.001}

	m := mean(returns)
	sd := sampleStd(returns)
	want := m / sd * math.Sqrt(252)

	if got := Sharpe(returns); math.Abs(got-want) > 1e-12 {
		t.Errorf("Sharpe = %v, want %v", got, want)
	}
}

func TestSharpe_Degenerate(t *testing.T) {
	if Sharpe([]float64{0.01}) != 0 {
		t.Error("single observation should yield 0")
	}
	if Sharpe([]float64{0.01, 0.01, 0.01}) != 0 {
		t.Error("zero dispersion should yield 0, not Inf")
	}
	if Sharpe(nil) != 0 {
		t.Error("empty series should yield 0")
	}
}

func TestMaxDrawdown(t *testing.T) {
	// Up 10%, down 20%, up 5%: trough is 0.88 of the 1.10 peak
	returns := []float64{0.10, -0.20, 0.05}
	got := MaxDrawdown(returns)
	if math.Abs(got-(-0.20)) > 1e-12 {
		t.Errorf("MaxDrawdown = %v, want -0.20", got)
	}

	// Monotone growth never draws down
	if MaxDrawdown([]float64{0.01, 0.02, 0.005}) != 0 {
		t.Error("monotone series should have 0 drawdown")
	}

	// Drawdown is reported as a non-positive number
	if MaxDrawdown([]float64{-0.5}) > 0 {
		t.Error("drawdown must be non-positive")
	}
}

func TestMaxDrawdown_PeakAfterRecovery(t *testing.T) {
	// New high after a dip; the worst dip is still remembered
	returns := []float64{-0.10, 0.30, -0.05}
	got := MaxDrawdown(returns)
	if math.Abs(got-(-0.10)) > 1e-12 {
		t.Errorf("MaxDrawdown = %v, want -0.10", got)
	}
}

func TestSortino(t *testing.T) {
	returns := []float64{0.02, -0.01, 0.015, -0.02, 0.01}

	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	want := mean(returns) / sampleStd(downside) * math.Sqrt(252)

	if got := Sortino(returns); math.Abs(got-want) > 1e-12 {
		t.Errorf("Sortino = %v, want %v", got, want)
	}

	// All-positive series has no downside deviation
	if Sortino([]float64{0.01, 0.02, 0.03}) != 0 {
		t.Error("no downside should yield 0")
	}
}

func TestCalmar(t *testing.T) {
	returns := []float64{0.10, -0.20, 0.05}
	want := AnnualizedReturn(returns) / 0.20
	if got := Calmar(returns); math.Abs(got-want) > 1e-12 {
		t.Errorf("Calmar = %v, want %v", got, want)
	}

	if Calmar([]float64{0.01, 0.01}) != 0 {
		t.Error("zero drawdown should yield 0, not Inf")
	}
}

func TestTotalReturn(t *testing.T) {
	got := TotalReturn([]float64{0.10, 0.10})
	if math.Abs(got-0.21) > 1e-12 {
		t.Errorf("TotalReturn = %v, want 0.21", got)
	}
}

func TestSummarize_Deterministic(t *testing.T) {
	returns := []float64{0.01, -0.005, 0.008, -0.002, 0.003}

	first := Summarize(returns)
	second := Summarize(returns)
	if first != second {
		t.Errorf("summaries differ on identical input: %+v vs %+v", first, second)
	}
}

func TestSummarize(t *testing.T) {
	returns := []float64{0.01, -0.005, 0.008, -0.002}

	s := Summarize(returns)
	if s.Sessions != 4 {
		t.Errorf("sessions = %d, want 4", s.Sessions)
	}
	if s.HitRate != 0.5 {
		t.Errorf("hit rate = %v, want 0.5", s.HitRate)
	}
	if s.Sharpe != Sharpe(returns) {
		t.Error("summary Sharpe mismatch")
	}
	if s.MaxDrawdown > 0 {
		t.Error("drawdown must be non-positive")
	}

	empty := Summarize(nil)
	if empty.Sessions != 0 || empty.Sharpe != 0 {
		t.Error("empty series should yield zero summary")
	}
}
