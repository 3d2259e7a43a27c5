// Package jobs holds the concrete scheduled jobs.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/alphalab/internal/dataset"
	"github.com/wonny/alphalab/internal/signals"
	"github.com/wonny/alphalab/pkg/logger"
)

// lookbackDays bounds the feature window loaded per regeneration; the
// generator only needs each asset's latest session but realized vol
// windows reach back further.
const lookbackDays = 90

// SignalsJob regenerates the live signal table on schedule.
// SSOT: scheduled signal regeneration happens only through this job.
type SignalsJob struct {
	repo      *dataset.Repository
	generator *signals.Generator
	store     *signals.Store
	publish   func(*signals.Table)
	schedule  string
	logger    *logger.Logger
}

// NewSignalsJob creates the signal regeneration job. publish may be nil
// when no live subscribers exist (CLI runs).
func NewSignalsJob(
	repo *dataset.Repository,
	gen *signals.Generator,
	store *signals.Store,
	publish func(*signals.Table),
	schedule string,
	log *logger.Logger,
) *SignalsJob {
	return &SignalsJob{
		repo:      repo,
		generator: gen,
		store:     store,
		publish:   publish,
		schedule:  schedule,
		logger:    log,
	}
}

// Name returns the job name.
func (j *SignalsJob) Name() string {
	return "signal_generation"
}

// Schedule returns the cron schedule from the strategy file.
func (j *SignalsJob) Schedule() string {
	return j.schedule
}

// Run loads the recent feature window, regenerates the signal table,
// stores it and publishes to any live subscribers.
func (j *SignalsJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled signal generation")

	to := time.Now()
	from := to.AddDate(0, 0, -lookbackDays)

	ds, err := j.repo.LoadRange(ctx, from, to)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	if ds.Len() == 0 {
		return fmt.Errorf("no feature rows in window %s..%s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	table := j.generator.Generate(ds)

	if err := j.store.Put(ctx, table); err != nil {
		return fmt.Errorf("store signals: %w", err)
	}
	if j.publish != nil {
		j.publish(table)
	}

	return nil
}
