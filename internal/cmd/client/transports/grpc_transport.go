package transports

import (
	"context"

	grpcserver "github.com/rzbill/uniqueid/internal/server/grpc"
	"github.com/rzbill/uniqueid/pkg/uniqueid"
	"google.golang.org/grpc"
)

// GrpcTransport implements IDTransport over gRPC.
type GrpcTransport struct {
	dial func(ctx context.Context) (*grpc.ClientConn, error)
}

// NewGrpcTransport constructs a new GrpcTransport using the provided dialer.
func NewGrpcTransport(dial func(ctx context.Context) (*grpc.ClientConn, error)) *GrpcTransport {
	return &GrpcTransport{dial: dial}
}

func (t *GrpcTransport) withClient(ctx context.Context, fn func(cli *grpcserver.IDClient) error) error {
	conn, err := t.dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	return fn(grpcserver.NewIDClient(conn))
}

// Generate calls IDService.Generate for a single ID and IDService.Batch otherwise.
func (t *GrpcTransport) Generate(ctx context.Context, req Request) ([]uniqueid.ID, error) {
	if req.Override {
		ctx = grpcserver.WithIdentity(ctx, req.GeneratorID, req.ClusterID)
	}
	var raws [][]byte
	err := t.withClient(ctx, func(cli *grpcserver.IDClient) error {
		if n := req.count(); n > 1 {
			var err error
			raws, err = cli.Batch(ctx, uint32(n))
			return err
		}
		raw, err := cli.Generate(ctx)
		if err != nil {
			return err
		}
		raws = [][]byte{raw}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]uniqueid.ID, 0, len(raws))
	for _, raw := range raws {
		id, err := uniqueid.FromBytes(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
