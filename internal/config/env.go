package config

import (
	"os"
	"strconv"
	"time"
)

// FromEnv overlays UNIQUEID_* environment variables onto cfg. Unparseable
// values are ignored.
func FromEnv(cfg *Config) {
	if v := os.Getenv("UNIQUEID_GENERATOR_ID"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.GeneratorID = n
		}
	}
	if v := os.Getenv("UNIQUEID_CLUSTER_ID"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ClusterID = n
		}
	}
	if v := os.Getenv("UNIQUEID_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BatchSize = n
		}
	}
	if v := os.Getenv("UNIQUEID_MAX_BATCH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxBatch = n
		}
	}
	if v := os.Getenv("UNIQUEID_WATERMARK_FLUSH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.WatermarkFlushInterval = Duration{d}
		}
	}
	if v := os.Getenv("UNIQUEID_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = Duration{d}
		}
	}
	if v := os.Getenv("UNIQUEID_MAX_STALL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.MaxStall = Duration{d}
		}
	}
}
