package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rzbill/uniqueid/pkg/uniqueid"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.BatchSize != 500 {
		t.Fatalf("default batch size")
	}
	if cfg.WatermarkFlushInterval.Duration != time.Second {
		t.Fatalf("default flush interval")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "uniqueid.json")
	data := []byte(`{"generatorId":12,"clusterId":3,"batchSize":64,"watermarkFlushInterval":"250ms"}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GeneratorID != 12 || cfg.ClusterID != 3 {
		t.Fatalf("identity: %+v", cfg)
	}
	if cfg.BatchSize != 64 {
		t.Fatalf("expected 64")
	}
	if cfg.WatermarkFlushInterval.Duration != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", cfg.WatermarkFlushInterval)
	}
	if cfg.RequestTimeout.Duration != 2*time.Second {
		t.Fatalf("unset fields keep defaults")
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "uniqueid.yaml")
	data := []byte("generatorId: 63\nclusterId: 15\nrequestTimeout: 5s\n")
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GeneratorID != 63 || cfg.ClusterID != 15 {
		t.Fatalf("identity: %+v", cfg)
	}
	if cfg.RequestTimeout.Duration != 5*time.Second {
		t.Fatalf("expected 5s, got %v", cfg.RequestTimeout)
	}
	if cfg.BatchSize != 500 {
		t.Fatalf("batch size default kept")
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(file, []byte(`{"requestTimeout":"soon"}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(file); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	t.Setenv("UNIQUEID_GENERATOR_ID", "7")
	t.Setenv("UNIQUEID_CLUSTER_ID", "2")
	t.Setenv("UNIQUEID_BATCH_SIZE", "1000")
	t.Setenv("UNIQUEID_WATERMARK_FLUSH_INTERVAL", "10s")
	t.Setenv("UNIQUEID_MAX_BATCH", "not-a-number")
	t.Setenv("UNIQUEID_MAX_STALL", "0s")
	FromEnv(&cfg)
	if cfg.GeneratorID != 7 || cfg.ClusterID != 2 {
		t.Fatalf("env override identity")
	}
	if cfg.BatchSize != 1000 {
		t.Fatalf("env override batch size")
	}
	if cfg.WatermarkFlushInterval.Duration != 10*time.Second {
		t.Fatalf("env override flush interval")
	}
	if cfg.MaxBatch != 10000 {
		t.Fatalf("invalid value should be ignored")
	}
	if cfg.MaxStall.Duration != 0 {
		t.Fatalf("env override max stall")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		bounds bool
	}{
		{"generator too large", func(c *Config) { c.GeneratorID = 64 }, true},
		{"negative cluster", func(c *Config) { c.ClusterID = -1 }, true},
		{"zero batch", func(c *Config) { c.BatchSize = 0 }, false},
		{"zero max batch", func(c *Config) { c.MaxBatch = 0 }, false},
		{"zero flush interval", func(c *Config) { c.WatermarkFlushInterval = Duration{} }, false},
		{"negative max stall", func(c *Config) { c.MaxStall = Duration{-time.Second} }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := errors.Is(err, uniqueid.ErrParameterOutOfBounds); got != tt.bounds {
				t.Fatalf("bounds error = %v, want %v (%v)", got, tt.bounds, err)
			}
		})
	}
}
