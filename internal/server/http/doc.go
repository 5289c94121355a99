// Package httpserver provides the REST gateway for ID generation and
// decoding, mirroring the gRPC surface with JSON bodies and an SSE stream.
//
// Routes:
//
//	GET  /v1/healthz               {"status":"SERVING"}
//	GET  /v1/ids                   {"id":"<hex>"}
//	GET  /v1/ids/batch?n=100       {"ids":["<hex>", ...]}
//	GET  /v1/ids/stream?n=100      text/event-stream of {"id":"<hex>"}
//	GET  /v1/ids/decode?id=<hex>   decoded fields
//	POST /v1/ids/decode            {"ids":[...],"filter":"generator_id == 3"}
//
// The generator and cluster query parameters select an identity other than
// the configured one.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: config.Default()})
//	s := httpserver.New(rt, nil)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":8080")
package httpserver
