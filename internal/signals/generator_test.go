package signals

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/wonny/alphalab/internal/dataset"
	"github.com/wonny/alphalab/internal/model"
	"github.com/wonny/alphalab/internal/risk"
	"github.com/wonny/alphalab/pkg/config"
	"github.com/wonny/alphalab/pkg/logger"
	"github.com/wonny/alphalab/pkg/redis"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "test", LogLevel: "error", LogFormat: "json"})
}

func testLimits() risk.Limits {
	return risk.Limits{PerAssetCap: 0.5, MaxGross: 2.0, AllowShorts: true}
}

func day(n int) time.Time {
	return time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func liveDataset() *dataset.Dataset {
	ds := dataset.New([]string{"mom_20"})
	ds.SetRow(day(0), "AAPL", []float64{0.04})
	ds.SetVol(day(0), "AAPL", 0.20)
	ds.SetRow(day(1), "AAPL", []float64{0.02})
	ds.SetVol(day(1), "AAPL", 0.20)

	ds.SetRow(day(1), "MSFT", []float64{-0.50})
	ds.SetVol(day(1), "MSFT", 0.10)
	return ds
}

func TestGenerate_HeuristicWeights(t *testing.T) {
	cfg := Config{
		Universe:     []string{"MSFT", "AAPL"},
		MaxAbsWeight: 0.3,
		Limits:       testLimits(),
	}
	gen := NewGenerator(cfg, nil, testLogger())

	table := gen.Generate(liveDataset())
	if len(table.Signals) != 2 {
		t.Fatalf("expected 2 signals, got %d", len(table.Signals))
	}

	byAsset := map[string]Signal{}
	for _, s := range table.Signals {
		byAsset[s.Asset] = s
	}

	// AAPL uses its latest session: 0.02 / (0.20 + 1e-8) ≈ 0.1
	aapl := byAsset["AAPL"]
	if !aapl.Session.Equal(day(1)) {
		t.Errorf("AAPL session = %v, want latest", aapl.Session)
	}
	if math.Abs(aapl.Weight-0.1) > 1e-6 {
		t.Errorf("AAPL weight = %v, want ~0.1", aapl.Weight)
	}

	// MSFT raw score -5 clips to the live cap
	msft := byAsset["MSFT"]
	if math.Abs(msft.Weight-(-0.3)) > 1e-9 {
		t.Errorf("MSFT weight = %v, want -0.3", msft.Weight)
	}
}

func TestGenerate_CompleteTableWithStaleAssets(t *testing.T) {
	cfg := Config{
		Universe:     []string{"AAPL", "GHOST"},
		MaxAbsWeight: 0.3,
		Limits:       testLimits(),
	}
	gen := NewGenerator(cfg, nil, testLogger())

	table := gen.Generate(liveDataset())
	if len(table.Signals) != 2 {
		t.Fatalf("every universe asset must appear, got %d", len(table.Signals))
	}

	for _, s := range table.Signals {
		if s.Asset == "GHOST" {
			if !s.Stale || s.Weight != 0 {
				t.Errorf("GHOST = %+v, want stale with zero weight", s)
			}
		}
	}
}

func TestGenerate_NonPositiveVolIsStale(t *testing.T) {
	ds := dataset.New([]string{"mom_20"})
	ds.SetRow(day(0), "BADV", []float64{0.04})
	ds.SetVol(day(0), "BADV", -0.05)
	ds.SetRow(day(0), "ZEROV", []float64{0.04})
	ds.SetVol(day(0), "ZEROV", 0)

	cfg := Config{
		Universe:     []string{"BADV", "ZEROV"},
		MaxAbsWeight: 0.3,
		Limits:       testLimits(),
	}
	gen := NewGenerator(cfg, nil, testLogger())

	table := gen.Generate(ds)
	for _, s := range table.Signals {
		if !s.Stale || s.Weight != 0 {
			t.Errorf("%s = %+v, want stale with zero weight", s.Asset, s)
		}
	}
}

func TestGenerate_InjectedModel(t *testing.T) {
	cfg := Config{
		Universe:     []string{"AAPL"},
		MaxAbsWeight: 0.3,
		Limits:       testLimits(),
	}
	gen := NewGenerator(cfg, model.Constant{Score: 0.25}, testLogger())

	table := gen.Generate(liveDataset())
	s := table.Signals[0]
	if s.Source != "model" {
		t.Errorf("source = %q, want model", s.Source)
	}
	if math.Abs(s.Weight-0.25) > 1e-12 {
		t.Errorf("weight = %v, want 0.25", s.Weight)
	}
}

func TestGenerate_ShortsDisabledZeroes(t *testing.T) {
	lim := testLimits()
	lim.AllowShorts = false
	cfg := Config{
		Universe:     []string{"MSFT"},
		MaxAbsWeight: 0.3,
		Limits:       lim,
	}
	gen := NewGenerator(cfg, nil, testLogger())

	table := gen.Generate(liveDataset())
	if table.Rejected != 1 {
		t.Fatalf("rejected = %d, want 1", table.Rejected)
	}
	if table.Signals[0].Weight != 0 {
		t.Errorf("rejected weight = %v, want 0", table.Signals[0].Weight)
	}
}

func TestStore_DisabledRedis(t *testing.T) {
	client, err := redis.New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	if err != nil {
		t.Fatalf("disabled client should not error: %v", err)
	}
	store := NewStore(redis.NewCache(client, "alphalab-test"))

	ctx := context.Background()
	if _, err := store.Latest(ctx); !errors.Is(err, ErrNoTable) {
		t.Fatalf("expected ErrNoTable, got %v", err)
	}

	table := &Table{GeneratedAt: time.Now()}
	if err := store.Put(ctx, table); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if got != table {
		t.Error("in-memory table should be authoritative")
	}
}
