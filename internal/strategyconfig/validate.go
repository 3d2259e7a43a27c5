package strategyconfig

import "fmt"

// ValidationError is a fatal configuration defect: the run must not
// start with it present.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks every constraint the pipeline depends on. It runs at
// load time, before any data is touched, so a bad document never
// produces a partial run.
func Validate(cfg *Config) error {
	if cfg.Name == "" {
		return ValidationError{"name", "required"}
	}

	// === CV ===
	if cfg.CV.MinTrain < 1 {
		return ValidationError{"cv.min_train", "must be >= 1"}
	}
	if cfg.CV.Folds < 1 {
		return ValidationError{"cv.folds", "must be >= 1"}
	}
	if cfg.CV.Embargo < 0 {
		return ValidationError{"cv.embargo", "must be >= 0"}
	}

	// === Sizing ===
	if cfg.Sizing.VolTarget <= 0 {
		return ValidationError{"sizing.vol_target", "must be > 0"}
	}
	if cfg.Sizing.VolFloor <= 0 {
		return ValidationError{"sizing.vol_floor", "must be > 0"}
	}
	if cfg.Sizing.MaxAbsWeight <= 0 {
		return ValidationError{"sizing.max_abs_weight", "must be > 0"}
	}
	if cfg.Sizing.DefaultVol < cfg.Sizing.VolFloor {
		return ValidationError{"sizing.default_vol", "must be >= vol_floor"}
	}

	// === Risk ===
	if cfg.Risk.PerAssetCap <= 0 {
		return ValidationError{"risk.per_asset_cap", "must be > 0"}
	}
	if cfg.Risk.MaxGross <= 0 {
		return ValidationError{"risk.max_gross", "must be > 0"}
	}
	// Sizing cap above the risk cap means every sized weight at the cap
	// gets rejected downstream
	if cfg.Sizing.MaxAbsWeight > cfg.Risk.PerAssetCap {
		return ValidationError{"sizing.max_abs_weight", fmt.Sprintf("must be <= risk.per_asset_cap=%.3f", cfg.Risk.PerAssetCap)}
	}

	// === Costs ===
	if cfg.Costs.CostBps < 0 {
		return ValidationError{"costs.cost_bps", "must be >= 0"}
	}

	// === Account ===
	if cfg.Account.Equity <= 0 {
		return ValidationError{"account.equity", "must be > 0"}
	}
	if cfg.Account.RiskPct <= 0 || cfg.Account.RiskPct > 0.05 {
		return ValidationError{"account.risk_pct", "must be in (0, 0.05]"}
	}
	if cfg.Account.MaxPositionPct <= 0 || cfg.Account.MaxPositionPct > 1 {
		return ValidationError{"account.max_position_pct", "must be in (0, 1]"}
	}

	// === Live ===
	if cfg.Live.MaxAbsWeight <= 0 {
		return ValidationError{"live.max_abs_weight", "must be > 0"}
	}
	if cfg.Live.MaxAbsWeight > cfg.Risk.PerAssetCap {
		return ValidationError{"live.max_abs_weight", fmt.Sprintf("must be <= risk.per_asset_cap=%.3f", cfg.Risk.PerAssetCap)}
	}

	return nil
}
