// Package idsvc implements the ID facade on top of the runtime. It resolves
// the requested identity, bounds batch sizes, applies the request timeout
// and decodes IDs for the gRPC and HTTP transports.
//
// Example:
//
//	svc := idsvc.New(rt)
//	id, _ := svc.Generate(ctx, idsvc.DefaultSelector())
//	ids, _ := svc.Batch(ctx, idsvc.For(3, 1), 100)
//	hits, _ := svc.DecodeFiltered(ids, "sequence < 10")
package idsvc

// Timeouts
//   - Generation runs on its own goroutine so a caller whose deadline expires
//     while the generator waits for the next millisecond gets
//     context.DeadlineExceeded right away. IDs produced after the caller gave
//     up are dropped and never handed out again.
//   - requestTimeout <= 0 disables the service-level deadline; the caller's
//     context still applies.
