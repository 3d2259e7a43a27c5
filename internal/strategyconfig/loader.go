package strategyconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads the strategy YAML and returns the validated Config with the
// raw bytes. SSOT: KnownFields(true) so a typo or stale field fails
// loudly instead of being silently ignored. The document overlays the
// defaults, so a partial file is valid.
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, data, err
	}

	return cfg, data, nil
}

// Parse decodes and validates a strategy document from memory.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Hash generates a SHA-256 hash from the Config via canonical JSON.
// Structs, not maps, so field order and the hash are reproducible.
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// Snapshot freezes the exact configuration a run executed under, for
// reproducing the run later.
type Snapshot struct {
	ConfigHash string    `json:"config_hash"`
	ConfigYAML string    `json:"config_yaml"`
	Strategy   string    `json:"strategy"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewSnapshot creates an audit snapshot for a loaded config.
func NewSnapshot(cfg *Config, yamlData []byte) (*Snapshot, error) {
	hash, err := Hash(cfg)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		ConfigHash: hash,
		ConfigYAML: string(yamlData),
		Strategy:   cfg.Name,
		CreatedAt:  time.Now(),
	}, nil
}
