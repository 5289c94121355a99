package grpcserver

import (
	"context"
	"errors"
	"io"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "uniqueid.v1.IDService"

	GenerateMethod = "/" + ServiceName + "/Generate"
	BatchMethod    = "/" + ServiceName + "/Batch"

	// Metadata keys overriding the configured identity.
	GeneratorIDKey = "x-generator-id"
	ClusterIDKey   = "x-cluster-id"
)

// IDServiceServer is the server API of uniqueid.v1.IDService.
type IDServiceServer interface {
	Generate(context.Context, *emptypb.Empty) (*wrapperspb.BytesValue, error)
	Batch(*wrapperspb.UInt32Value, grpc.ServerStream) error
}

// RegisterIDServiceServer registers srv on s.
func RegisterIDServiceServer(s grpc.ServiceRegistrar, srv IDServiceServer) {
	s.RegisterService(&idServiceDesc, srv)
}

var idServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IDServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Generate", Handler: generateHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Batch", Handler: batchHandler, ServerStreams: true},
	},
	Metadata: "uniqueid/v1/ids.proto",
}

func generateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IDServiceServer).Generate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GenerateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IDServiceServer).Generate(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func batchHandler(srv any, stream grpc.ServerStream) error {
	in := new(wrapperspb.UInt32Value)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(IDServiceServer).Batch(in, stream)
}

// IDClient calls uniqueid.v1.IDService over any client connection.
type IDClient struct {
	cc grpc.ClientConnInterface
}

// NewIDClient wraps cc.
func NewIDClient(cc grpc.ClientConnInterface) *IDClient { return &IDClient{cc: cc} }

// WithIdentity attaches an identity override to outgoing calls made with ctx.
func WithIdentity(ctx context.Context, generatorID, clusterID int) context.Context {
	return metadata.AppendToOutgoingContext(ctx,
		GeneratorIDKey, strconv.Itoa(generatorID),
		ClusterIDKey, strconv.Itoa(clusterID))
}

// Generate returns one raw 8-byte ID.
func (c *IDClient) Generate(ctx context.Context, opts ...grpc.CallOption) ([]byte, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, GenerateMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out.GetValue(), nil
}

// Batch returns n raw IDs in generation order.
func (c *IDClient) Batch(ctx context.Context, n uint32, opts ...grpc.CallOption) ([][]byte, error) {
	stream, err := c.cc.NewStream(ctx, &idServiceDesc.Streams[0], BatchMethod, opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(wrapperspb.UInt32(n)); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	out := make([][]byte, 0, n)
	for {
		msg := new(wrapperspb.BytesValue)
		if err := stream.RecvMsg(msg); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
		out = append(out, msg.GetValue())
	}
}
