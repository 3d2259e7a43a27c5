package strategyconfig

import (
	"errors"
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	path := "../../config/strategy/alphalab.yaml"

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("config file not found")
	}

	cfg, yamlData, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Name != "alphalab-baseline" {
		t.Errorf("expected name=alphalab-baseline, got %s", cfg.Name)
	}
	if cfg.CV.MinTrain != 504 {
		t.Errorf("expected min_train=504, got %d", cfg.CV.MinTrain)
	}
	if len(cfg.Universe) == 0 {
		t.Error("expected a non-empty universe")
	}

	hash, err := Hash(cfg)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if len(hash) != 64 {
		t.Errorf("expected 64 char hash, got %d", len(hash))
	}

	// Same config, same hash
	hash2, _ := Hash(cfg)
	if hash != hash2 {
		t.Error("hash not deterministic")
	}

	t.Logf("config hash: %s", hash)
	t.Logf("yaml size: %d bytes", len(yamlData))
}

func TestParse_UnknownFieldFails(t *testing.T) {
	doc := []byte(`
name: test
cv:
  min_train: 100
  fodls: 5
`)
	if _, err := Parse(doc); err == nil {
		t.Fatal("typo'd field must fail, not be ignored")
	}
}

func TestParse_PartialDocumentInheritsDefaults(t *testing.T) {
	doc := []byte(`
name: partial
cv:
  min_train: 100
`)
	cfg, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.CV.MinTrain != 100 {
		t.Errorf("min_train = %d, want 100", cfg.CV.MinTrain)
	}
	// Untouched sections keep defaults
	if cfg.CV.Folds != 5 {
		t.Errorf("folds = %d, want default 5", cfg.CV.Folds)
	}
	if cfg.Sizing.VolTarget != 0.10 {
		t.Errorf("vol_target = %v, want default 0.10", cfg.Sizing.VolTarget)
	}
	if cfg.Costs.CostBps != 2.0 {
		t.Errorf("cost_bps = %v, want default 2.0", cfg.Costs.CostBps)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty name", func(c *Config) { c.Name = "" }},
		{"zero min_train", func(c *Config) { c.CV.MinTrain = 0 }},
		{"negative embargo", func(c *Config) { c.CV.Embargo = -1 }},
		{"zero vol_target", func(c *Config) { c.Sizing.VolTarget = 0 }},
		{"default_vol below floor", func(c *Config) { c.Sizing.DefaultVol = 0.001 }},
		{"sizing cap above risk cap", func(c *Config) { c.Sizing.MaxAbsWeight = 0.9 }},
		{"negative cost", func(c *Config) { c.Costs.CostBps = -1 }},
		{"excessive risk_pct", func(c *Config) { c.Account.RiskPct = 0.10 }},
		{"live cap above risk cap", func(c *Config) { c.Live.MaxAbsWeight = 0.9 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)

			err := Validate(&cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected ValidationError, got %T", err)
			}
		})
	}

	// The defaults themselves must validate
	cfg := Default()
	if err := Validate(&cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestHash_ChangesWithConfig(t *testing.T) {
	a := Default()
	b := Default()
	b.CV.Embargo = 42

	hashA, err := Hash(&a)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	hashB, err := Hash(&b)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if hashA == hashB {
		t.Error("different configs must hash differently")
	}
}

func TestMappings(t *testing.T) {
	cfg := Default()

	if p := cfg.CVParams(); p.MinTrain != cfg.CV.MinTrain || p.Embargo != cfg.CV.Embargo {
		t.Error("CVParams mapping mismatch")
	}
	if s := cfg.SizingParams(); s.VolTarget != cfg.Sizing.VolTarget {
		t.Error("SizingParams mapping mismatch")
	}
	if l := cfg.RiskLimits(); l.MaxGross != cfg.Risk.MaxGross {
		t.Error("RiskLimits mapping mismatch")
	}
	if a := cfg.AccountSizer(); a.Equity != cfg.Account.Equity {
		t.Error("AccountSizer mapping mismatch")
	}
}
