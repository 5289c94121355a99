package grpcserver

import (
	"context"
	"errors"

	idsvc "github.com/rzbill/uniqueid/internal/services/ids"
	"github.com/rzbill/uniqueid/pkg/uniqueid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors onto gRPC codes.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, uniqueid.ErrParameterOutOfBounds), errors.Is(err, idsvc.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, uniqueid.ErrClockRegression), errors.Is(err, uniqueid.ErrStallTimeout):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
