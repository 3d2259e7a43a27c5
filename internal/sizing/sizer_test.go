package sizing

import (
	"errors"
	"math"
	"testing"
)

func TestVolTargetWeights_ConstantScoreAtTarget(t *testing.T) {
	cfg := DefaultConfig()

	// Score 1.0 with vol exactly at target scales to 1.0, then the cap binds
	scores := []float64{1.0, 1.0, 1.0}
	vols := []float64{cfg.VolTarget, cfg.VolTarget, cfg.VolTarget}

	weights := VolTargetWeights(scores, vols, cfg)
	for i, w := range weights {
		if w != cfg.MaxAbsWeight {
			t.Errorf("weight[%d] = %v, want %v", i, w, cfg.MaxAbsWeight)
		}
	}
}

func TestVolTargetWeights_Scaling(t *testing.T) {
	cfg := DefaultConfig()

	// Twice the vol gives half the weight
	weights := VolTargetWeights([]float64{0.5, 0.5}, []float64{0.20, 0.40}, cfg)
	if math.Abs(weights[0]-0.25) > 1e-12 {
		t.Errorf("weights[0] = %v, want 0.25", weights[0])
	}
	if math.Abs(weights[1]-0.125) > 1e-12 {
		t.Errorf("weights[1] = %v, want 0.125", weights[1])
	}
}

func TestVolTargetWeights_NegativeClip(t *testing.T) {
	cfg := DefaultConfig()

	weights := VolTargetWeights([]float64{-3.0}, []float64{0.10}, cfg)
	if weights[0] != -cfg.MaxAbsWeight {
		t.Errorf("weight = %v, want %v", weights[0], -cfg.MaxAbsWeight)
	}
}

func TestVolTargetWeights_NaNScore(t *testing.T) {
	weights := VolTargetWeights([]float64{math.NaN(), 1.0}, []float64{0.10, 0.10}, DefaultConfig())
	if weights[0] != 0 {
		t.Errorf("NaN score should yield 0 weight, got %v", weights[0])
	}
	if weights[1] == 0 {
		t.Error("valid score should produce nonzero weight")
	}
}

func TestVolTargetWeights_MissingVol(t *testing.T) {
	cfg := DefaultConfig()

	// NaN vol falls back to DefaultVol = 0.15
	weights := VolTargetWeights([]float64{0.3}, []float64{math.NaN()}, cfg)
	want := 0.3 * (cfg.VolTarget / cfg.DefaultVol)
	if math.Abs(weights[0]-want) > 1e-12 {
		t.Errorf("weight = %v, want %v", weights[0], want)
	}
}

func TestVolTargetWeights_VolFloor(t *testing.T) {
	cfg := DefaultConfig()

	// A near-zero vol is floored, not allowed to blow up the ratio
	weights := VolTargetWeights([]float64{0.01}, []float64{1e-9}, cfg)
	want := 0.01 * (cfg.VolTarget / cfg.VolFloor)
	if math.Abs(weights[0]-want) > 1e-12 {
		t.Errorf("weight = %v, want %v", weights[0], want)
	}
}

func TestAccountSizer_FixedFractional(t *testing.T) {
	s := NewAccountSizer(100_000)

	// risk_per_unit = 3, raw = floor(1000/3) = 333,
	// capital cap = floor(20000/150) = 133 binds
	size, err := s.Size(150, 147, 0.55, 1.5)
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}

	if size.Shares != 133 {
		t.Errorf("shares = %d, want 133", size.Shares)
	}
	if math.Abs(size.CostBasis-133*150) > 1e-9 {
		t.Errorf("cost basis = %v, want %v", size.CostBasis, 133.0*150)
	}
	if math.Abs(size.RiskAmount-133*3) > 1e-9 {
		t.Errorf("risk amount = %v, want %v", size.RiskAmount, 133.0*3)
	}
	// Cap binding means actual risk is below the 1% budget
	if size.ActualRiskPct >= s.RiskPct {
		t.Errorf("actual risk %v should be below budget %v", size.ActualRiskPct, s.RiskPct)
	}
}

func TestAccountSizer_RiskBudgetBinds(t *testing.T) {
	s := NewAccountSizer(100_000)

	// Wide stop: risk budget binds before the capital cap
	size, err := s.Size(100, 90, 0.5, 2.0)
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size.Shares != 100 {
		t.Errorf("shares = %d, want 100", size.Shares)
	}
}

func TestAccountSizer_InvalidStop(t *testing.T) {
	s := NewAccountSizer(100_000)

	cases := []struct{ entry, stop float64 }{
		{150, 150},
		{147, 150},
		{0, -1},
	}
	for _, c := range cases {
		if _, err := s.Size(c.entry, c.stop, 0.5, 1.5); !errors.Is(err, ErrInvalidStop) {
			t.Errorf("entry=%v stop=%v: expected ErrInvalidStop, got %v", c.entry, c.stop, err)
		}
	}
}

func TestHalfKelly(t *testing.T) {
	cases := []struct {
		winRate, payoff, want float64
	}{
		{0.60, 1.5, (0.60 - 0.40/1.5) / 2},
		{0.30, 1.0, 0},   // negative edge clamps to zero
		{0.99, 10, 0.25}, // clamp at quarter-Kelly equivalent
		{0.50, 0, 0},     // degenerate payoff
	}
	for _, c := range cases {
		got := HalfKelly(c.winRate, c.payoff)
		if math.Abs(got-c.want) > 1e-12 {
			t.Errorf("HalfKelly(%v, %v) = %v, want %v", c.winRate, c.payoff, got, c.want)
		}
	}
}
