// Package client provides the `uniqueid` command-line client.
//
// The CLI talks to the gRPC or HTTP endpoints of a running server, or
// generates in-process with --transport local.
//
// # Address configuration
//
// The gRPC address is read from UNIQUEID_GRPC (default 127.0.0.1:50051).
// The HTTP base URL comes from the embedding application's BaseURLFunc and
// falls back to UNIQUEID_HTTP (default http://127.0.0.1:8080).
//
// Usage
//
//	uniqueid generate
//	uniqueid generate -n 100 --transport http
//	uniqueid generate --generator-id 3 --cluster-id 1 --decode
//	uniqueid generate --transport local -n 5
//
//	uniqueid decode 0190f3c2a1c41001 0190f3c2a1c41002
//	uniqueid decode --filter 'generator_id == 3 && sequence > 0' 0190f3c2a1c41001
//
// Notes
//
//   - generate prints one hex ID per line, or JSON lines with --decode.
//   - decode never contacts a server.
//   - local generation has no watermark persistence, so two processes
//     sharing an identity can collide.
package client
