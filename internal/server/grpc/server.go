package grpcserver

import (
	"context"
	"net"
	"time"

	"github.com/rzbill/uniqueid/internal/runtime"
	idsvc "github.com/rzbill/uniqueid/internal/services/ids"
	logpkg "github.com/rzbill/uniqueid/pkg/log"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// Server owns the gRPC server instance and runtime.
type Server struct {
	rt     *runtime.Runtime
	ids    *idsvc.Service
	logger logpkg.Logger
	grpc   *grpc.Server
	lis    net.Listener
}

// New constructs a gRPC server with its own ID service.
func New(rt *runtime.Runtime, opts ...grpc.ServerOption) *Server {
	return NewWithService(rt, idsvc.New(rt), nil, opts...)
}

// NewWithService constructs a gRPC server around a shared ID service.
func NewWithService(rt *runtime.Runtime, ids *idsvc.Service, logger logpkg.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = logpkg.NewNopLogger()
	}
	s := &Server{rt: rt, ids: ids, logger: logger.WithComponent("grpc")}
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(s.logUnary),
		grpc.ChainStreamInterceptor(s.logStream),
	}, opts...)
	s.grpc = grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(s.grpc, &healthSvc{svc: ids})
	RegisterIDServiceServer(s.grpc, &idsSvc{svc: ids})
	return s
}

func (s *Server) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logCall(info.FullMethod, start, err)
	return resp, err
}

func (s *Server) logStream(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	start := time.Now()
	err := handler(srv, ss)
	s.logCall(info.FullMethod, start, err)
	return err
}

func (s *Server) logCall(method string, start time.Time, err error) {
	fields := []logpkg.Field{
		logpkg.Str("method", method),
		logpkg.Str("code", status.Code(err).String()),
		logpkg.Dur("dur", time.Since(start)),
	}
	if err != nil {
		s.logger.Warn("grpc call failed", append(fields, logpkg.Err(err))...)
		return
	}
	s.logger.Debug("grpc call", fields...)
}

// ListenAndServe binds to addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

// Serve serves on l until ctx is done.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	s.lis = l
	s.logger.Info("grpc listening", logpkg.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.grpc.Serve(l) }()
	select {
	case <-ctx.Done():
		s.grpc.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

// Close stops the server and closes the listener.
func (s *Server) Close() {
	if s.grpc != nil {
		s.grpc.GracefulStop()
	}
	if s.lis != nil {
		_ = s.lis.Close()
	}
}
