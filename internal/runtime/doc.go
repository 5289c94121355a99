// Package runtime wires storage, config and the generator registry into a
// single-node uniqueid instance. It owns the Registry (there is no package
// level singleton), seeds generators from persisted watermarks and flushes
// them back in the background.
//
// Example:
//
//	cfg := config.Default()
//	cfg.GeneratorID, cfg.ClusterID = 3, 1
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: cfg})
//	defer rt.Close()
//	id, _ := rt.Default().Generate()
package runtime
