package dataset

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/alphalab/pkg/logger"
)

// Repository loads research inputs from PostgreSQL into a Dataset.
// SSOT: feature/label/volatility queries live only here.
type Repository struct {
	db     *pgxpool.Pool
	logger *logger.Logger
}

// NewRepository creates a new dataset repository
func NewRepository(db *pgxpool.Pool, logger *logger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// FeatureNames returns the feature schema present in the store, in name order.
func (r *Repository) FeatureNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT feature
		FROM research.features
		ORDER BY feature
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query feature names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan feature name: %w", err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// LoadRange materializes the feature matrix, label series and realized
// volatility for sessions in [from, to].
func (r *Repository) LoadRange(ctx context.Context, from, to time.Time) (*Dataset, error) {
	names, err := r.FeatureNames(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no features in store")
	}

	ds := New(names)

	if err := r.loadFeatures(ctx, ds, names, from, to); err != nil {
		return nil, err
	}
	if err := r.loadLabels(ctx, ds, from, to); err != nil {
		return nil, err
	}
	if err := r.loadVols(ctx, ds, from, to); err != nil {
		return nil, err
	}

	r.logger.WithFields(map[string]interface{}{
		"from":     from.Format("2006-01-02"),
		"to":       to.Format("2006-01-02"),
		"features": len(names),
		"rows":     ds.Len(),
		"sessions": len(ds.Sessions()),
		"assets":   len(ds.Assets()),
	}).Info("Dataset loaded")

	return ds, nil
}

// loadFeatures pivots the long-format feature table into fixed-width rows.
// A (session, asset) pair missing some feature keeps NaN in that column.
func (r *Repository) loadFeatures(ctx context.Context, ds *Dataset, names []string, from, to time.Time) error {
	query := `
		SELECT trade_date, symbol, feature, value
		FROM research.features
		WHERE trade_date BETWEEN $1 AND $2
		ORDER BY trade_date, symbol
	`

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return fmt.Errorf("query features: %w", err)
	}
	defer rows.Close()

	idx := make(map[string]int, len(names))
	for i, n := range names {
		idx[n] = i
	}

	vectors := make(map[Key][]float64)
	for rows.Next() {
		var (
			date    time.Time
			symbol  string
			feature string
			value   *float64
		)
		if err := rows.Scan(&date, &symbol, &feature, &value); err != nil {
			return fmt.Errorf("scan feature row: %w", err)
		}

		key := Key{Session: date, Asset: symbol}
		vec, ok := vectors[key]
		if !ok {
			vec = make([]float64, len(names))
			for i := range vec {
				vec[i] = math.NaN()
			}
			vectors[key] = vec
		}

		if value != nil {
			vec[idx[feature]] = *value
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate features: %w", err)
	}

	for key, vec := range vectors {
		if err := ds.SetRow(key.Session, key.Asset, vec); err != nil {
			return err
		}
	}

	return nil
}

func (r *Repository) loadLabels(ctx context.Context, ds *Dataset, from, to time.Time) error {
	query := `
		SELECT trade_date, symbol, fwd_ret
		FROM research.labels
		WHERE trade_date BETWEEN $1 AND $2
	`

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return fmt.Errorf("query labels: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			date   time.Time
			symbol string
			fwdRet float64
		)
		if err := rows.Scan(&date, &symbol, &fwdRet); err != nil {
			return fmt.Errorf("scan label row: %w", err)
		}
		ds.SetLabel(date, symbol, fwdRet)
	}

	return rows.Err()
}

func (r *Repository) loadVols(ctx context.Context, ds *Dataset, from, to time.Time) error {
	query := `
		SELECT trade_date, symbol, vol
		FROM research.realized_vol
		WHERE trade_date BETWEEN $1 AND $2
	`

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return fmt.Errorf("query realized vol: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			date   time.Time
			symbol string
			vol    float64
		)
		if err := rows.Scan(&date, &symbol, &vol); err != nil {
			return fmt.Errorf("scan vol row: %w", err)
		}
		ds.SetVol(date, symbol, vol)
	}

	return rows.Err()
}
