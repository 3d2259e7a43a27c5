// Package strategyconfig loads and validates the research strategy file.
//
// SSOT: every tunable of the research pipeline lives in one YAML document.
// Code never hardcodes a threshold the strategy file can express; the
// loaded snapshot plus its content hash make any backtest reproducible.
package strategyconfig

import (
	"github.com/wonny/alphalab/internal/cv"
	"github.com/wonny/alphalab/internal/risk"
	"github.com/wonny/alphalab/internal/sizing"
)

// Config is the full strategy document.
type Config struct {
	Name     string   `yaml:"name"`
	Universe []string `yaml:"universe"`

	CV      CVConfig      `yaml:"cv"`
	Sizing  SizingConfig  `yaml:"sizing"`
	Risk    RiskConfig    `yaml:"risk"`
	Costs   CostConfig    `yaml:"costs"`
	Account AccountConfig `yaml:"account"`
	Live    LiveConfig    `yaml:"live"`
}

// CVConfig configures the walk-forward splitter.
type CVConfig struct {
	MinTrain int `yaml:"min_train"`
	Folds    int `yaml:"folds"`
	Embargo  int `yaml:"embargo"`
}

// SizingConfig configures volatility-target weight scaling.
type SizingConfig struct {
	VolTarget    float64 `yaml:"vol_target"`
	VolFloor     float64 `yaml:"vol_floor"`
	MaxAbsWeight float64 `yaml:"max_abs_weight"`
	DefaultVol   float64 `yaml:"default_vol"`
}

// RiskConfig configures the pre-trade and portfolio gates.
type RiskConfig struct {
	PerAssetCap float64 `yaml:"per_asset_cap"`
	MaxGross    float64 `yaml:"max_gross"`
	AllowShorts bool    `yaml:"allow_shorts"`
}

// CostConfig configures the execution simulator.
type CostConfig struct {
	CostBps float64 `yaml:"cost_bps"`
}

// AccountConfig configures discretionary trade sizing.
type AccountConfig struct {
	Equity         float64 `yaml:"equity"`
	RiskPct        float64 `yaml:"risk_pct"`
	MaxPositionPct float64 `yaml:"max_position_pct"`
}

// LiveConfig configures the live signal generator.
type LiveConfig struct {
	MaxAbsWeight float64 `yaml:"max_abs_weight"`
	Cron         string  `yaml:"cron"`
}

// Default returns the documented baseline strategy. Loading a file
// overlays onto these values, so a partial document inherits defaults
// for everything it leaves out.
func Default() Config {
	return Config{
		Name: "alphalab-baseline",
		CV: CVConfig{
			MinTrain: 504,
			Folds:    5,
			Embargo:  21,
		},
		Sizing: SizingConfig{
			VolTarget:    0.10,
			VolFloor:     0.01,
			MaxAbsWeight: 0.5,
			DefaultVol:   0.15,
		},
		Risk: RiskConfig{
			PerAssetCap: 0.5,
			MaxGross:    2.0,
			AllowShorts: true,
		},
		Costs: CostConfig{
			CostBps: 2.0,
		},
		Account: AccountConfig{
			Equity:         100000,
			RiskPct:        0.01,
			MaxPositionPct: 0.20,
		},
		Live: LiveConfig{
			MaxAbsWeight: 0.3,
			Cron:         "0 30 17 * * MON-FRI",
		},
	}
}

// CVParams maps the document onto the splitter parameters.
func (c Config) CVParams() cv.Params {
	return cv.Params{
		MinTrain: c.CV.MinTrain,
		Folds:    c.CV.Folds,
		Embargo:  c.CV.Embargo,
	}
}

// SizingParams maps the document onto the sizing configuration.
func (c Config) SizingParams() sizing.Config {
	return sizing.Config{
		VolTarget:    c.Sizing.VolTarget,
		VolFloor:     c.Sizing.VolFloor,
		MaxAbsWeight: c.Sizing.MaxAbsWeight,
		DefaultVol:   c.Sizing.DefaultVol,
	}
}

// RiskLimits maps the document onto the risk gates.
func (c Config) RiskLimits() risk.Limits {
	return risk.Limits{
		PerAssetCap: c.Risk.PerAssetCap,
		MaxGross:    c.Risk.MaxGross,
		AllowShorts: c.Risk.AllowShorts,
	}
}

// AccountSizer maps the document onto a fixed-fractional sizer.
func (c Config) AccountSizer() *sizing.AccountSizer {
	return &sizing.AccountSizer{
		Equity:         c.Account.Equity,
		RiskPct:        c.Account.RiskPct,
		MaxPositionPct: c.Account.MaxPositionPct,
	}
}
