package watermark

import (
	"sync"
	"sync/atomic"
	"time"

	logpkg "github.com/rzbill/uniqueid/pkg/log"
	"github.com/rzbill/uniqueid/pkg/uniqueid"
)

// Flusher periodically persists the last timestamp of every generator in a
// registry.
type Flusher struct {
	store    *Store
	registry *uniqueid.Registry
	interval time.Duration
	logger   logpkg.Logger

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewFlusher builds a flusher; call Start to begin ticking.
func NewFlusher(store *Store, registry *uniqueid.Registry, interval time.Duration, logger logpkg.Logger) *Flusher {
	if logger == nil {
		logger = logpkg.NewNopLogger()
	}
	return &Flusher{
		store:    store,
		registry: registry,
		interval: interval,
		logger:   logger.WithComponent("watermark"),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the background loop.
func (f *Flusher) Start() {
	if f.started.CompareAndSwap(false, true) {
		go f.loop()
	}
}

func (f *Flusher) loop() {
	defer close(f.done)
	t := time.NewTicker(f.interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			if err := f.Flush(); err != nil {
				f.logger.Error("flush failed", logpkg.Err(err))
			}
		case <-f.stop:
			return
		}
	}
}

// Flush persists every generator's last timestamp once.
func (f *Flusher) Flush() error {
	var firstErr error
	f.registry.Range(func(g *uniqueid.Generator) bool {
		ms := g.LastTimestamp()
		if ms == 0 {
			return true
		}
		if err := f.store.Advance(g.Identity(), ms); err != nil && firstErr == nil {
			firstErr = err
		}
		return true
	})
	return firstErr
}

// Stop ends the loop (if started) and performs a final flush.
func (f *Flusher) Stop() error {
	f.stopOnce.Do(func() { close(f.stop) })
	if f.started.Load() {
		<-f.done
	}
	return f.Flush()
}
