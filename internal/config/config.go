package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rzbill/uniqueid/pkg/uniqueid"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// GeneratorID and ClusterID form the identity served by default.
	// Every running instance needs its own pair.
	GeneratorID int `json:"generatorId" yaml:"generatorId"`
	ClusterID   int `json:"clusterId" yaml:"clusterId"`
	// BatchSize is the refill size of the per-identity ID cache.
	BatchSize int `json:"batchSize" yaml:"batchSize"`
	// WatermarkFlushInterval controls how often issued timestamps are persisted.
	WatermarkFlushInterval Duration `json:"watermarkFlushInterval" yaml:"watermarkFlushInterval"`
	// RequestTimeout bounds a single generate/batch call at the service layer.
	RequestTimeout Duration `json:"requestTimeout" yaml:"requestTimeout"`
	// MaxBatch caps the number of IDs a single request may ask for.
	MaxBatch int `json:"maxBatch" yaml:"maxBatch"`
	// MaxStall bounds the wait for the next millisecond after the sequence
	// space is exhausted. Zero waits indefinitely.
	MaxStall Duration `json:"maxStall" yaml:"maxStall"`
}

// Duration is a time.Duration that reads "250ms"-style strings from JSON and YAML.
type Duration struct{ time.Duration }

func (d Duration) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	return d.parse(s)
}

func (d Duration) MarshalYAML() (interface{}, error) { return d.String(), nil }

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.parse(node.Value)
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		GeneratorID:            0,
		ClusterID:              0,
		BatchSize:              uniqueid.DefaultBatchSize,
		WatermarkFlushInterval: Duration{time.Second},
		RequestTimeout:         Duration{2 * time.Second},
		MaxBatch:               10000,
		MaxStall:               Duration{time.Second},
	}
}

// Load reads configuration from a JSON or YAML file (by extension). If path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// Validate checks the identity bounds and tunables.
func (c Config) Validate() error {
	if _, err := uniqueid.NewIdentity(c.GeneratorID, c.ClusterID); err != nil {
		return err
	}
	var errs []error
	if c.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("config: batchSize must be >= 1, got %d", c.BatchSize))
	}
	if c.MaxBatch < 1 {
		errs = append(errs, fmt.Errorf("config: maxBatch must be >= 1, got %d", c.MaxBatch))
	}
	if c.MaxStall.Duration < 0 {
		errs = append(errs, errors.New("config: maxStall must not be negative"))
	}
	if c.WatermarkFlushInterval.Duration <= 0 {
		errs = append(errs, errors.New("config: watermarkFlushInterval must be positive"))
	}
	return errors.Join(errs...)
}
