package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	cfgpkg "github.com/rzbill/uniqueid/internal/config"
	pebblestore "github.com/rzbill/uniqueid/internal/storage/pebble"
	"github.com/rzbill/uniqueid/internal/watermark"
	logpkg "github.com/rzbill/uniqueid/pkg/log"
	"github.com/rzbill/uniqueid/pkg/uniqueid"
)

// Options for building the Runtime.
type Options struct {
	DataDir       string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
	Logger        logpkg.Logger
	// Clock overrides the wall clock for every generator (tests).
	Clock uniqueid.Clock
}

// Runtime wires storage, config, the generator registry and watermark
// persistence for a single node.
type Runtime struct {
	db       *pebblestore.DB
	config   cfgpkg.Config
	logger   logpkg.Logger
	store    *watermark.Store
	registry *uniqueid.Registry
	flusher  *watermark.Flusher
	identity uniqueid.Identity
	def      *uniqueid.AutoRefill

	mu     sync.Mutex // guards cached
	cached map[uniqueid.Identity]*uniqueid.AutoRefill
}

// Open initializes storage, validates the configured identity, seeds its
// generator from the persisted watermark and starts the flusher.
func Open(opts Options) (*Runtime, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewNopLogger()
	}
	db, err := pebblestore.Open(pebblestore.Options{DataDir: opts.DataDir, Fsync: opts.Fsync, FsyncInterval: opts.FsyncInterval})
	if err != nil {
		return nil, err
	}

	genOpts := []uniqueid.Option{
		uniqueid.WithLogger(logger.WithComponent("generator")),
		uniqueid.WithMaxStall(opts.Config.MaxStall.Duration),
	}
	if opts.Clock != nil {
		genOpts = append(genOpts, uniqueid.WithClock(opts.Clock))
	}
	rt := &Runtime{
		db:       db,
		config:   opts.Config,
		logger:   logger.WithComponent("runtime"),
		store:    watermark.NewStore(db),
		registry: uniqueid.NewRegistry(genOpts...).WithRegistryLogger(logger.WithComponent("registry")),
		identity: uniqueid.Identity{GeneratorID: opts.Config.GeneratorID, ClusterID: opts.Config.ClusterID},
		cached:   make(map[uniqueid.Identity]*uniqueid.AutoRefill),
	}
	def, err := rt.Cached(rt.identity.GeneratorID, rt.identity.ClusterID)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	rt.def = def
	rt.flusher = watermark.NewFlusher(rt.store, rt.registry, opts.Config.WatermarkFlushInterval.Duration, logger)
	rt.flusher.Start()
	return rt, nil
}

// Close flushes watermarks and closes storage.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	var errs []error
	if r.flusher != nil {
		if err := r.flusher.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("final watermark flush: %w", err))
		}
	}
	errs = append(errs, r.db.Close())
	r.db = nil
	return errors.Join(errs...)
}

// CheckHealth verifies storage is readable and the clock is not behind the
// default generator's last timestamp. It looks at the clock now rather than
// at the outcome of the last call.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := r.store.List(); err != nil {
		return err
	}
	g, err := r.generator(r.identity)
	if err != nil {
		return err
	}
	if !g.Healthy() {
		return fmt.Errorf("generator %s: clock is behind last timestamp %d", r.identity, g.LastTimestamp())
	}
	return nil
}

// generator returns the registry generator for id, seeding it from the
// stored watermark the first time.
func (r *Runtime) generator(id uniqueid.Identity) (*uniqueid.Generator, error) {
	rec, err := r.store.Ensure(id)
	if err != nil {
		return nil, fmt.Errorf("watermark for %s: %w", id, err)
	}
	return r.registry.For(id, []uniqueid.Option{uniqueid.WithLastTimestamp(rec.LastTimestampMs)})
}

// Generator returns the shared generator for (generatorID, clusterID).
func (r *Runtime) Generator(generatorID, clusterID int) (*uniqueid.Generator, error) {
	id, err := uniqueid.NewIdentity(generatorID, clusterID)
	if err != nil {
		return nil, err
	}
	return r.generator(id)
}

// Cached returns the shared AutoRefill cache for (generatorID, clusterID).
func (r *Runtime) Cached(generatorID, clusterID int) (*uniqueid.AutoRefill, error) {
	id, err := uniqueid.NewIdentity(generatorID, clusterID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.cached[id]; ok {
		return c, nil
	}
	g, err := r.generator(id)
	if err != nil {
		return nil, err
	}
	c := uniqueid.DecorateWithBatchSize(g, r.config.BatchSize)
	r.cached[id] = c
	r.logger.Debug("id cache created", logpkg.Str("identity", id.String()), logpkg.Int("batch_size", c.BatchSize()))
	return c, nil
}

// Default returns the cache for the configured identity.
func (r *Runtime) Default() *uniqueid.AutoRefill { return r.def }

// Identity returns the configured identity.
func (r *Runtime) Identity() uniqueid.Identity { return r.identity }

// Registry exposes the generator registry.
func (r *Runtime) Registry() *uniqueid.Registry { return r.registry }

// Watermarks exposes the watermark store.
func (r *Runtime) Watermarks() *watermark.Store { return r.store }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
