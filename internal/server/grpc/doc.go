// Package grpcserver hosts the gRPC server, registering the ID service and
// the standard grpc.health.v1 Health service on top of the shared services
// layer.
//
// The ID service is described by hand with well-known wrapper types, so
// clients need no generated stubs:
//
//	uniqueid.v1.IDService/Generate (google.protobuf.Empty) -> google.protobuf.BytesValue
//	uniqueid.v1.IDService/Batch (google.protobuf.UInt32Value) -> stream google.protobuf.BytesValue
//
// Metadata keys x-generator-id and x-cluster-id select an identity other
// than the node's configured one. A key that is left out counts as 0.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: config.Default()})
//	s := grpcserver.New(rt)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":50051")
package grpcserver
