// Package config provides loading and environment overlay for the uniqueid
// server configuration. It exposes a Default() baseline, JSON/YAML file
// loading, and UNIQUEID_* environment overrides.
//
// Example:
//
//	cfg := config.Default()
//	// Optionally load from file and overlay env vars
//	if fileCfg, err := config.Load("/etc/uniqueid.yaml"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
//	if err := cfg.Validate(); err != nil { /* bad identity */ }
//	rt, _ := runtime.Open(runtime.Options{DataDir: "/var/lib/uniqueid", Fsync: pebblestore.FsyncModeAlways, Config: cfg})
//	defer rt.Close()
package config
