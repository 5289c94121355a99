// Package pebblestore provides a thin wrapper around Pebble with fsync
// policy, batches, prefix scans and minimal metrics hooks. uniqueid keeps
// its per-identity watermarks here.
//
// Usage:
//
//	db, err := pebblestore.Open(pebblestore.Options{
//	    DataDir: "./data",
//	    Fsync:   pebblestore.FsyncModeInterval,
//	})
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	_ = db.Set([]byte("wm/3/1"), []byte(`{"lastTimestampMs":1}`))
//	_ = db.ScanPrefix([]byte("wm/"), func(k, v []byte) bool { return true })
package pebblestore
