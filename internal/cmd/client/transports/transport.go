// Package transports provides pluggable transport implementations for the CLI.
package transports

import (
	"context"

	"github.com/rzbill/uniqueid/pkg/uniqueid"
)

// Request describes one generate call.
type Request struct {
	// N is the number of IDs; values below 1 mean 1.
	N int
	// Override selects GeneratorID/ClusterID instead of the server's
	// configured identity.
	Override    bool
	GeneratorID int
	ClusterID   int
}

func (r Request) count() int {
	if r.N < 1 {
		return 1
	}
	return r.N
}

// IDTransport abstracts how the CLI obtains IDs (gRPC, HTTP or in-process).
type IDTransport interface {
	Generate(ctx context.Context, req Request) ([]uniqueid.ID, error)
}
