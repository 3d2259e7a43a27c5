package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/alphalab/internal/backtest"
	"github.com/wonny/alphalab/internal/dataset"
	"github.com/wonny/alphalab/internal/model"
	"github.com/wonny/alphalab/internal/strategyconfig"
	"github.com/wonny/alphalab/pkg/config"
	"github.com/wonny/alphalab/pkg/database"
	"github.com/wonny/alphalab/pkg/logger"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Walk-forward backtesting",
	Long: `Simulates the pipeline over historical data.

The backtest validates:
- Strategy returns net of transaction costs
- Risk metrics (Sharpe, Sortino, Calmar, MDD)
- Hit rate and turnover
- Per-fold stability

Example:
  go run ./cmd/alphalab backtest run --from 2022-01-01 --to 2025-12-31
  go run ./cmd/alphalab backtest run --from 2022-01-01 --model ridge --workers 4`,
}

var (
	backtestRunCmd = &cobra.Command{
		Use:   "run",
		Short: "Run a backtest",
		Long: `Runs a walk-forward backtest over the given period.

Flags:
  --from      start date (YYYY-MM-DD, required)
  --to        end date (YYYY-MM-DD, default: today)
  --model     model to fit per fold: ridge|zero (default: ridge)
  --lambda    ridge L2 penalty (default: 1.0)
  --workers   concurrent folds (default: 1)
  --save      persist the report to the database

Example:
  go run ./cmd/alphalab backtest run --from 2022-01-01 --to 2025-12-31
  go run ./cmd/alphalab backtest run --from 2022-01-01 --model zero`,
		RunE: runBacktest,
	}

	// Flags
	backtestFrom    string
	backtestTo      string
	backtestModel   string
	backtestLambda  float64
	backtestWorkers int
	backtestSave    bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.AddCommand(backtestRunCmd)

	// Flags
	backtestRunCmd.Flags().StringVar(&backtestFrom, "from", "", "start date (YYYY-MM-DD, required)")
	backtestRunCmd.Flags().StringVar(&backtestTo, "to", "", "end date (YYYY-MM-DD, default: today)")
	backtestRunCmd.Flags().StringVar(&backtestModel, "model", "ridge", "model per fold: ridge|zero")
	backtestRunCmd.Flags().Float64Var(&backtestLambda, "lambda", 1.0, "ridge L2 penalty")
	backtestRunCmd.Flags().IntVar(&backtestWorkers, "workers", 1, "concurrent folds")
	backtestRunCmd.Flags().BoolVar(&backtestSave, "save", false, "persist the report")

	backtestRunCmd.MarkFlagRequired("from")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	fmt.Println("=== AlphaLab Backtest Engine ===")

	// Parse dates
	from, err := time.Parse("2006-01-02", backtestFrom)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}

	to := time.Now()
	if backtestTo != "" {
		to, err = time.Parse("2006-01-02", backtestTo)
		if err != nil {
			return fmt.Errorf("invalid end date: %w", err)
		}
	}

	factory, err := modelFactory(backtestModel, backtestLambda)
	if err != nil {
		return err
	}

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
	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return fmt.Errorf("hash strategy: %w", err)
	}

	fmt.Printf("\nStrategy: %s (%s)\n", strategy.Name, hash[:12])
	fmt.Printf("Period:   %s ~ %s\n", from.Format("2006-01-02"), to.Format("2006-01-02"))
	fmt.Printf("Model:    %s\n", backtestModel)
	fmt.Printf("CV:       min_train=%d folds=%d embargo=%d\n",
		strategy.CV.MinTrain, strategy.CV.Folds, strategy.CV.Embargo)
	fmt.Printf("Costs:    %.1f bps\n\n", strategy.Costs.CostBps)

	// 4. Connect to database and load the dataset
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	repo := dataset.NewRepository(db.Pool, log)
	ds, err := repo.LoadRange(cmd.Context(), from, to)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	// 5. Run
	engine := backtest.NewEngine(backtest.Config{
		CV:      strategy.CVParams(),
		Sizing:  strategy.SizingParams(),
		Limits:  strategy.RiskLimits(),
		CostBps: strategy.Costs.CostBps,
		Workers: backtestWorkers,
	}, log)

	fmt.Println("🚀 Starting backtest...")
	result, err := engine.Run(cmd.Context(), ds, factory)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	printBacktestResult(result)

	// 6. Persist
	if backtestSave {
		runRepo := backtest.NewRepository(db)
		id, err := runRepo.SaveRun(cmd.Context(), strategy.Name, hash, result)
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		fmt.Printf("💾 Report saved (run #%d)\n", id)
	}

	return nil
}

func modelFactory(name string, lambda float64) (model.Factory, error) {
	switch name {
	case "ridge":
		return func() model.Model { return model.NewRidge(lambda) }, nil
	case "zero":
		return func() model.Model { return model.Zero{} }, nil
	default:
		return nil, fmt.Errorf("unknown model %q (ridge|zero)", name)
	}
}

func printBacktestResult(result *backtest.Result) {
	fmt.Println("\n✅ Backtest Completed")
	fmt.Println("=" + strings.Repeat("=", 60))
	fmt.Println()

	// Summary
	fmt.Println("📊 Summary")
	fmt.Printf("Folds:     %d run, %d skipped\n", result.FoldsRun, result.FoldsSkipped)
	fmt.Printf("Sessions:  %d\n", result.Summary.Sessions)
	fmt.Printf("Duration:  %.2f seconds\n", result.Duration.Seconds())
	fmt.Println()

	// Performance
	fmt.Println("💰 Performance")
	fmt.Printf("Total Return:    %+.2f%%\n", result.Summary.TotalReturn*100)
	fmt.Printf("Annual Return:   %+.2f%%\n", result.Summary.AnnualizedReturn*100)
	fmt.Printf("Annual Vol:      %.2f%%\n", result.Summary.AnnualizedVol*100)
	fmt.Printf("Hit Rate:        %.1f%%\n", result.Summary.HitRate*100)
	fmt.Println()

	// Risk Metrics
	fmt.Println("📉 Risk Metrics")
	fmt.Printf("Sharpe Ratio:    %.2f", result.Summary.Sharpe)
	if result.Summary.Sharpe > 2.0 {
		fmt.Print(" 🌟 (Excellent)")
	} else if result.Summary.Sharpe > 1.0 {
		fmt.Print(" ✅ (Good)")
	} else if result.Summary.Sharpe > 0.5 {
		fmt.Print(" ⚠️  (Fair)")
	} else {
		fmt.Print(" ❌ (Poor)")
	}
	fmt.Println()

	fmt.Printf("Sortino Ratio:   %.2f\n", result.Summary.Sortino)
	fmt.Printf("Calmar Ratio:    %.2f\n", result.Summary.Calmar)
	fmt.Printf("Max Drawdown:    %.2f%%", result.Summary.MaxDrawdown*100)
	if result.Summary.MaxDrawdown > -0.10 {
		fmt.Print(" 🌟 (Excellent)")
	} else if result.Summary.MaxDrawdown > -0.20 {
		fmt.Print(" ✅ (Good)")
	} else if result.Summary.MaxDrawdown > -0.30 {
		fmt.Print(" ⚠️  (Fair)")
	} else {
		fmt.Print(" ❌ (High)")
	}
	fmt.Println()
	fmt.Println()

	// Folds
	fmt.Println("🧪 Folds")
	for _, f := range result.Folds {
		if f.Skipped {
			fmt.Printf("  #%d  skipped: %s\n", f.Index, f.SkipReason)
			continue
		}
		fmt.Printf("  #%d  %s ~ %s  sessions=%d  train_rows=%d  net=%+.2f%%  rejections=%d\n",
			f.Index,
			f.TestStart.Format("2006-01-02"),
			f.TestEnd.Format("2006-01-02"),
			f.Sessions,
			f.TrainRows,
			f.NetReturn*100,
			f.Rejections)
	}
	fmt.Println()
}
