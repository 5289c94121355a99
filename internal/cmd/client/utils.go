package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rzbill/uniqueid/internal/inspect"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// grpcAddrFromEnv returns the gRPC server address from UNIQUEID_GRPC or a default.
func grpcAddrFromEnv() string {
	if addr := os.Getenv("UNIQUEID_GRPC"); addr != "" {
		return addr
	}
	return "127.0.0.1:50051"
}

// httpBaseFromEnv returns the HTTP base URL from UNIQUEID_HTTP or a default.
func httpBaseFromEnv() string {
	if base := os.Getenv("UNIQUEID_HTTP"); base != "" {
		return base
	}
	return "http://127.0.0.1:8080"
}

// dialGRPCContext dials the gRPC endpoint with insecure transport for local/dev.
func dialGRPCContext(_ context.Context) (*grpc.ClientConn, error) {
	return grpc.NewClient(grpcAddrFromEnv(), grpc.WithTransportCredentials(insecure.NewCredentials()))
}

// decodedLine is the JSON shape printed for a decoded ID.
type decodedLine struct {
	ID          string `json:"id"`
	Timestamp   int64  `json:"ts_ms"`
	Time        string `json:"time"`
	GeneratorID int    `json:"generator_id"`
	ClusterID   int    `json:"cluster_id"`
	Sequence    int    `json:"sequence"`
}

func writeDecoded(w io.Writer, items []inspect.Decoded) error {
	enc := json.NewEncoder(w)
	for _, d := range items {
		line := decodedLine{
			ID:          d.ID.String(),
			Timestamp:   d.Fields.Timestamp,
			Time:        d.ID.Time().UTC().Format(time.RFC3339Nano),
			GeneratorID: d.Fields.GeneratorID,
			ClusterID:   d.Fields.ClusterID,
			Sequence:    d.Fields.Sequence,
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}
	return nil
}
