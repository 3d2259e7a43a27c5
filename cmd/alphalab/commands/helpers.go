package commands

import "github.com/wonny/alphalab/pkg/config"

// strategyPath resolves the strategy file: the --strategy flag wins,
// then the STRATEGY_FILE env default.
func strategyPath(cfg *config.Config) string {
	if strategyFile != "" {
		return strategyFile
	}
	return cfg.StrategyFile
}
