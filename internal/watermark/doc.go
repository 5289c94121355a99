// Package watermark persists, per generator identity, the highest timestamp
// that identity has embedded in an ID.
//
// A generator restarted on a host whose clock went backwards would
// otherwise reissue IDs it handed out before the restart. Seeding the
// generator with its persisted watermark turns that into a clock
// regression error instead. Watermarks are written by a Flusher, so after
// a crash the last flush interval is not covered.
//
// Records are JSON under "wm/<generator>/<cluster>" in the Pebble store.
//
//	store := watermark.NewStore(db)
//	rec, _ := store.Ensure(identity)
//	g, err := registry.For(identity, []uniqueid.Option{uniqueid.WithLastTimestamp(rec.LastTimestampMs)})
//	f := watermark.NewFlusher(store, registry, time.Second, logger)
//	f.Start()
//	defer f.Stop()
package watermark
