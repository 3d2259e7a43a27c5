package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/alphalab/internal/api"
	"github.com/wonny/alphalab/internal/api/handlers"
	"github.com/wonny/alphalab/internal/backtest"
	"github.com/wonny/alphalab/internal/dataset"
	"github.com/wonny/alphalab/internal/scheduler"
	"github.com/wonny/alphalab/internal/scheduler/jobs"
	"github.com/wonny/alphalab/internal/signals"
	"github.com/wonny/alphalab/internal/strategyconfig"
	"github.com/wonny/alphalab/pkg/config"
	"github.com/wonny/alphalab/pkg/database"
	"github.com/wonny/alphalab/pkg/logger"
	"github.com/wonny/alphalab/pkg/redis"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and scheduler",
	Long: `Starts the REST API, the WebSocket signal stream and the
scheduled signal regeneration job.

Endpoints:
  GET  /health                  - Health check
  GET  /api/signals/latest      - Latest signal table
  POST /api/signals/generate    - Trigger out-of-schedule regeneration
  GET  /api/backtest/latest     - Latest persisted backtest report
  GET  /ws/signals              - Live signal stream

Example:
  go run ./cmd/alphalab serve
  go run ./cmd/alphalab serve --port 8080`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (default from PORT env)")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== AlphaLab API Server ===")

	// 1. Load env config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load strategy
	strategy, _, err := strategyconfig.Load(strategyPath(cfg))
	if err != nil {
		return fmt.Errorf("load strategy: %w", err)
	}

	// 4. Infrastructure
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	rdb, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()

	// 5. Signal pipeline
	datasetRepo := dataset.NewRepository(db.Pool, log)
	store := signals.NewStore(redis.NewCache(rdb, "alphalab"))
	generator := signals.NewGenerator(signals.Config{
		Universe:     strategy.Universe,
		MaxAbsWeight: strategy.Live.MaxAbsWeight,
		Limits:       strategy.RiskLimits(),
	}, nil, log)

	hub := api.NewHub(log)

	// 6. Scheduler
	sched := scheduler.New(log)
	signalsJob := jobs.NewSignalsJob(datasetRepo, generator, store, hub.Broadcast, strategy.Live.Cron, log)
	if err := sched.AddJob(signalsJob); err != nil {
		return fmt.Errorf("schedule signals job: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	// 7. API server
	signalHandler := handlers.NewSignalHandler(store, func() error {
		return sched.RunJob(signalsJob.Name())
	}, log)
	backtestHandler := handlers.NewBacktestHandler(backtest.NewRepository(db), strategy.Name, log)

	router := api.NewRouter(signalHandler, backtestHandler, hub, log)
	server := api.New(cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// 8. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
