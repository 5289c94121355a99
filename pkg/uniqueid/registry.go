package uniqueid

import (
	"sync"

	logpkg "github.com/rzbill/uniqueid/pkg/log"
)

// Registry hands out one shared Generator per Identity. Entries are never
// evicted. Applications own a Registry at their composition root and pass
// it to whatever needs generators.
type Registry struct {
	opts   []Option
	logger logpkg.Logger

	mu         sync.Mutex // serializes creation
	generators sync.Map   // Identity -> *Generator
	count      int
}

// NewRegistry returns an empty registry. opts are applied to every
// generator it creates.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{opts: opts, logger: logpkg.NewNopLogger()}
}

// WithRegistryLogger sets the logger used for registry events. Generator
// logging is configured separately through WithLogger.
func (r *Registry) WithRegistryLogger(l logpkg.Logger) *Registry {
	if l != nil {
		r.logger = l
	}
	return r
}

// GeneratorFor returns the Generator for (generatorID, clusterID), creating
// it on first use. Concurrent first calls for the same pair observe the
// same instance.
func (r *Registry) GeneratorFor(generatorID, clusterID int) (*Generator, error) {
	id, err := NewIdentity(generatorID, clusterID)
	if err != nil {
		return nil, err
	}
	return r.forIdentity(id, nil), nil
}

// For is GeneratorFor for an Identity value. The identity is validated
// again since its fields can be set without NewIdentity. extra options are
// only applied if this call creates the generator.
func (r *Registry) For(id Identity, extra []Option) (*Generator, error) {
	id, err := NewIdentity(id.GeneratorID, id.ClusterID)
	if err != nil {
		return nil, err
	}
	return r.forIdentity(id, extra), nil
}

func (r *Registry) forIdentity(id Identity, extra []Option) *Generator {
	if g, ok := r.generators.Load(id); ok {
		return g.(*Generator)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.generators.Load(id); ok {
		return g.(*Generator)
	}
	opts := append(append([]Option{}, r.opts...), extra...)
	g := newGenerator(id, opts...)
	r.generators.Store(id, g)
	r.count++
	r.logger.Debug("generator created", logpkg.Str("identity", id.String()))
	return g
}

// Len returns the number of generators created so far.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Range calls fn for every generator until fn returns false.
func (r *Registry) Range(fn func(*Generator) bool) {
	r.generators.Range(func(_, v any) bool {
		return fn(v.(*Generator))
	})
}
