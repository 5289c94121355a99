package grpcserver

import (
	"context"
	"strconv"

	idsvc "github.com/rzbill/uniqueid/internal/services/ids"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type idsSvc struct {
	svc *idsvc.Service
}

func (s *idsSvc) Generate(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BytesValue, error) {
	sel, err := selectorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	id, err := s.svc.Generate(ctx, sel)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Bytes(id.Bytes()), nil
}

func (s *idsSvc) Batch(req *wrapperspb.UInt32Value, stream grpc.ServerStream) error {
	ctx := stream.Context()
	sel, err := selectorFromContext(ctx)
	if err != nil {
		return err
	}
	ids, err := s.svc.Batch(ctx, sel, int(req.GetValue()))
	if err != nil {
		return toStatus(err)
	}
	for _, id := range ids {
		if err := stream.SendMsg(wrapperspb.Bytes(id.Bytes())); err != nil {
			return err
		}
	}
	return nil
}

func selectorFromContext(ctx context.Context) (idsvc.Selector, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return idsvc.DefaultSelector(), nil
	}
	gv, cv := md.Get(GeneratorIDKey), md.Get(ClusterIDKey)
	if len(gv) == 0 && len(cv) == 0 {
		return idsvc.DefaultSelector(), nil
	}
	g, err := metadataInt(GeneratorIDKey, gv)
	if err != nil {
		return idsvc.Selector{}, err
	}
	c, err := metadataInt(ClusterIDKey, cv)
	if err != nil {
		return idsvc.Selector{}, err
	}
	return idsvc.For(g, c), nil
}

func metadataInt(key string, vals []string) (int, error) {
	if len(vals) == 0 {
		return 0, nil
	}
	n, err := strconv.Atoi(vals[0])
	if err != nil {
		return 0, status.Errorf(codes.InvalidArgument, "%s: %q is not an integer", key, vals[0])
	}
	return n, nil
}
