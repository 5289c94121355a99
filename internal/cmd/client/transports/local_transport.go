package transports

import (
	"context"

	"github.com/rzbill/uniqueid/pkg/uniqueid"
)

// LocalTransport generates IDs in-process without a server. It has no
// watermark persistence, so it is meant for scripts and debugging.
type LocalTransport struct {
	registry *uniqueid.Registry
	def      uniqueid.Identity
}

// NewLocalTransport generates under def unless a request overrides it.
func NewLocalTransport(def uniqueid.Identity, opts ...uniqueid.Option) *LocalTransport {
	return &LocalTransport{registry: uniqueid.NewRegistry(opts...), def: def}
}

// Generate implements IDTransport.
func (t *LocalTransport) Generate(ctx context.Context, req Request) ([]uniqueid.ID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := t.def
	if req.Override {
		id = uniqueid.Identity{GeneratorID: req.GeneratorID, ClusterID: req.ClusterID}
	}
	g, err := t.registry.For(id, nil)
	if err != nil {
		return nil, err
	}
	return g.Batch(req.count())
}
