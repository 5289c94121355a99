package idsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/rzbill/uniqueid/internal/inspect"
	"github.com/rzbill/uniqueid/internal/runtime"
	logpkg "github.com/rzbill/uniqueid/pkg/log"
	"github.com/rzbill/uniqueid/pkg/uniqueid"
)

// Service hands out and decodes IDs for the transports.
type Service struct {
	rt     *runtime.Runtime
	logger logpkg.Logger

	maxBatch int
	timeout  time.Duration
}

// New creates a service with a default logger.
func New(rt *runtime.Runtime) *Service {
	return NewWithLogger(rt, nil)
}

// NewWithLogger creates a service with a custom logger.
func NewWithLogger(rt *runtime.Runtime, logger logpkg.Logger) *Service {
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel))
	}
	cfg := rt.Config()
	return &Service{
		rt:       rt,
		logger:   logger.WithComponent("ids"),
		maxBatch: cfg.MaxBatch,
		timeout:  cfg.RequestTimeout.Duration,
	}
}

// MaxBatch returns the largest batch a single request may ask for.
func (s *Service) MaxBatch() int { return s.maxBatch }

func (s *Service) resolve(sel Selector) (uniqueid.IDGenerator, uniqueid.Identity, error) {
	if !sel.Explicit {
		return s.rt.Default(), s.rt.Identity(), nil
	}
	c, err := s.rt.Cached(sel.GeneratorID, sel.ClusterID)
	if err != nil {
		return nil, uniqueid.Identity{}, err
	}
	return c, uniqueid.Identity{GeneratorID: sel.GeneratorID, ClusterID: sel.ClusterID}, nil
}

// Generate returns one ID for the selected identity.
func (s *Service) Generate(ctx context.Context, sel Selector) (uniqueid.ID, error) {
	ids, err := s.generate(ctx, sel, 1, "ids.generate")
	if err != nil {
		return uniqueid.ID{}, err
	}
	return ids[0], nil
}

// Batch returns n IDs in generation order. n must be in [1, MaxBatch].
func (s *Service) Batch(ctx context.Context, sel Selector, n int) ([]uniqueid.ID, error) {
	if n < 1 || n > s.maxBatch {
		return nil, fmt.Errorf("%w: batch size %d outside [1, %d]", ErrInvalidArgument, n, s.maxBatch)
	}
	return s.generate(ctx, sel, n, "ids.batch")
}

type result struct {
	ids []uniqueid.ID
	err error
}

func (s *Service) generate(ctx context.Context, sel Selector, n int, op string) ([]uniqueid.ID, error) {
	gen, identity, err := s.resolve(sel)
	if err != nil {
		return nil, err
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	done := make(chan result, 1)
	go func() {
		var r result
		if n == 1 {
			var id uniqueid.ID
			id, r.err = gen.Generate()
			if r.err == nil {
				r.ids = []uniqueid.ID{id}
			}
		} else {
			r.ids, r.err = gen.Batch(n)
		}
		done <- r
	}()

	select {
	case <-ctx.Done():
		s.logger.Warn(op+" abandoned",
			logpkg.Str("identity", identity.String()),
			logpkg.Int("n", n),
			logpkg.Dur("waited", time.Since(start)),
			logpkg.Err(ctx.Err()))
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			s.logger.Error(op+" failed", logpkg.Str("identity", identity.String()), logpkg.Err(r.err))
			return nil, r.err
		}
		s.logger.Debug(op,
			logpkg.Str("identity", identity.String()),
			logpkg.Int("n", n),
			logpkg.Dur("dur", time.Since(start)))
		return r.ids, nil
	}
}

// Decode parses one hex ID.
func (s *Service) Decode(hexID string) (DecodedID, error) {
	id, err := uniqueid.ParseHex(hexID)
	if err != nil {
		return DecodedID{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return DecodedID{ID: id, Fields: uniqueid.Decode(id)}, nil
}

// DecodeFiltered decodes hex IDs and keeps those matching the CEL filter.
// An empty filter keeps everything.
func (s *Service) DecodeFiltered(hexIDs []string, filter string) ([]DecodedID, error) {
	f, err := inspect.NewFilter(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	decoded, err := inspect.DecodeAll(hexIDs, f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	out := make([]DecodedID, 0, len(decoded))
	for _, d := range decoded {
		out = append(out, DecodedID{ID: d.ID, Fields: d.Fields})
	}
	return out, nil
}

// CheckHealth reports whether the node can serve IDs.
func (s *Service) CheckHealth(ctx context.Context) error { return s.rt.CheckHealth(ctx) }
