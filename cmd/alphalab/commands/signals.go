package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/alphalab/internal/dataset"
	"github.com/wonny/alphalab/internal/signals"
	"github.com/wonny/alphalab/internal/strategyconfig"
	"github.com/wonny/alphalab/pkg/config"
	"github.com/wonny/alphalab/pkg/database"
	"github.com/wonny/alphalab/pkg/logger"
	"github.com/wonny/alphalab/pkg/redis"
)

// signalsCmd represents the signals command
var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "Live signal generation",
	Long: `Generates the live target-weight table from the latest data.

Every universe asset appears in the table exactly once; assets with
stale or missing data come out at weight 0.0.

Example:
  go run ./cmd/alphalab signals generate
  go run ./cmd/alphalab signals generate --lookback 120`,
}

var (
	signalsGenerateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Generate the signal table once",
		RunE:  runSignalsGenerate,
	}

	signalsLookback int
)

func init() {
	rootCmd.AddCommand(signalsCmd)
	signalsCmd.AddCommand(signalsGenerateCmd)

	signalsGenerateCmd.Flags().IntVar(&signalsLookback, "lookback", 90, "feature window (days)")
}

func runSignalsGenerate(cmd *cobra.Command, args []string) error {
	fmt.Println("=== AlphaLab Signal Generator ===")

	// 1. Load env config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load strategy
	strategy, _, err := strategyconfig.Load(strategyPath(cfg))
	if err != nil {
		return fmt.Errorf("load strategy: %w", err)
	}

	// 4. Connect to database and load the recent window
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	to := time.Now()
	from := to.AddDate(0, 0, -signalsLookback)

	repo := dataset.NewRepository(db.Pool, log)
	ds, err := repo.LoadRange(cmd.Context(), from, to)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	// 5. Generate and store
	gen := signals.NewGenerator(signals.Config{
		Universe:     strategy.Universe,
		MaxAbsWeight: strategy.Live.MaxAbsWeight,
		Limits:       strategy.RiskLimits(),
	}, nil, log)

	table := gen.Generate(ds)

	rdb, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()

	store := signals.NewStore(redis.NewCache(rdb, "alphalab"))
	if err := store.Put(cmd.Context(), table); err != nil {
		return fmt.Errorf("store signals: %w", err)
	}

	// 6. Print table
	fmt.Printf("\n✅ Signals generated at %s (%d rejected)\n\n",
		table.GeneratedAt.Format(time.RFC3339), table.Rejected)
	fmt.Printf("%-10s  %10s  %10s  %-12s  %s\n", "ASSET", "WEIGHT", "SCORE", "SESSION", "SOURCE")
	for _, s := range table.Signals {
		session := "-"
		if !s.Session.IsZero() {
			session = s.Session.Format("2006-01-02")
		}
		source := s.Source
		if s.Stale {
			source += " (stale)"
		}
		fmt.Printf("%-10s  %+10.4f  %+10.4f  %-12s  %s\n", s.Asset, s.Weight, s.Score, session, source)
	}
	fmt.Println()

	return nil
}
