package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wonny/alphalab/pkg/database"
)

// RunRecord is one persisted backtest run.
type RunRecord struct {
	ID           int64           `json:"id"`
	Strategy     string          `json:"strategy"`
	ConfigHash   string          `json:"config_hash"`
	FoldsRun     int             `json:"folds_run"`
	FoldsSkipped int             `json:"folds_skipped"`
	Sharpe       float64         `json:"sharpe"`
	MaxDrawdown  float64         `json:"max_drawdown"`
	Report       json.RawMessage `json:"report"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Repository persists backtest runs to Postgres. The full report is
// stored as JSONB so the API can serve it back without re-running.
type Repository struct {
	db *database.DB
}

// NewRepository creates a backtest run repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// SaveRun stores a finished run and returns its id.
func (r *Repository) SaveRun(ctx context.Context, strategy, configHash string, result *Result) (int64, error) {
	report, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("backtest: marshal report: %w", err)
	}

	var id int64
	err = r.db.Pool.QueryRow(ctx, `
		INSERT INTO research.backtest_runs
			(strategy, config_hash, folds_run, folds_skipped, sharpe, max_drawdown, report, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id
	`, strategy, configHash, result.FoldsRun, result.FoldsSkipped,
		result.Summary.Sharpe, result.Summary.MaxDrawdown, report).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("backtest: save run: %w", err)
	}

	return id, nil
}

// LatestRun returns the most recent run for a strategy.
func (r *Repository) LatestRun(ctx context.Context, strategy string) (*RunRecord, error) {
	var rec RunRecord
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, strategy, config_hash, folds_run, folds_skipped, sharpe, max_drawdown, report, created_at
		FROM research.backtest_runs
		WHERE strategy = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, strategy).Scan(
		&rec.ID, &rec.Strategy, &rec.ConfigHash, &rec.FoldsRun, &rec.FoldsSkipped,
		&rec.Sharpe, &rec.MaxDrawdown, &rec.Report, &rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("backtest: latest run: %w", err)
	}

	return &rec, nil
}
