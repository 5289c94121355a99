package uniqueid

import (
	"sync"
	"time"

	logpkg "github.com/rzbill/uniqueid/pkg/log"
)

// IDGenerator is implemented by Generator and by decorators such as AutoRefill.
type IDGenerator interface {
	// Generate returns a single new ID.
	Generate() (ID, error)
	// Batch returns n new IDs in generation order. Negative n is treated as 0.
	Batch(n int) ([]ID, error)
}

// State describes where a Generator is in its timestamp/sequence cycle.
type State int

const (
	// StateIdle means no ID has been generated yet.
	StateIdle State = iota
	// StateAdvancing is normal operation.
	StateAdvancing
	// StateStalled means the generator is waiting for the clock, either
	// because the sequence space of the current millisecond is exhausted
	// or because the last call observed the clock moving backwards.
	StateStalled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAdvancing:
		return "advancing"
	case StateStalled:
		return "stalled"
	default:
		return "unknown"
	}
}

// stallPoll is the pause between clock reads while waiting for the next millisecond.
const stallPoll = time.Millisecond / 8

// Option configures a Generator.
type Option func(*Generator)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(g *Generator) { g.clock = c }
}

// WithLogger sets the logger used for clock anomalies.
func WithLogger(l logpkg.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithMaxStall bounds how long a call waits for the next millisecond once
// the sequence space is exhausted. Zero (the default) waits indefinitely.
func WithMaxStall(d time.Duration) Option {
	return func(g *Generator) { g.maxStall = d }
}

// WithLastTimestamp seeds the high-water mark, typically from a persisted
// watermark, so that a clock behind it is reported as a regression.
func WithLastTimestamp(ms int64) Option {
	return func(g *Generator) {
		if ms > 0 {
			g.lastTimestamp = ms
			g.sequence = MaxSequence
			g.seeded = true
		}
	}
}

// Generator produces strictly increasing IDs for one Identity. It is safe
// for concurrent use.
type Generator struct {
	identity Identity
	clock    Clock
	logger   logpkg.Logger
	maxStall time.Duration

	mu            sync.Mutex
	state         State
	lastTimestamp int64
	sequence      int
	seeded        bool
}

// NewGenerator validates the identity and returns a Generator for it.
// Callers that share generators across a process should go through a
// Registry instead.
func NewGenerator(generatorID, clusterID int, opts ...Option) (*Generator, error) {
	id, err := NewIdentity(generatorID, clusterID)
	if err != nil {
		return nil, err
	}
	return newGenerator(id, opts...), nil
}

func newGenerator(id Identity, opts ...Option) *Generator {
	g := &Generator{identity: id, clock: SystemClock{}}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = logpkg.NewNopLogger()
	}
	g.logger = g.logger.With(logpkg.Str("identity", id.String()))
	return g
}

// Identity returns the generator's (generator-ID, cluster-ID) pair.
func (g *Generator) Identity() Identity { return g.identity }

// Generate returns the next ID. It fails with *ClockRegressionError when
// the clock is behind the last timestamp handed out.
func (g *Generator) Generate() (ID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.next()
}

// Batch returns n IDs generated under a single lock acquisition. On error
// no IDs are returned; IDs already computed for the failed batch are never
// handed out again.
func (g *Generator) Batch(n int) ([]ID, error) {
	if n < 0 {
		n = 0
	}
	out := make([]ID, 0, n)
	g.mu.Lock()
	defer g.mu.Unlock()
	for len(out) < n {
		id, err := g.next()
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// LastTimestamp returns the most recent timestamp embedded in an ID (or
// the seeded watermark).
func (g *Generator) LastTimestamp() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastTimestamp
}

// State returns the current state.
func (g *Generator) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Healthy reports whether the clock is at or past the last timestamp handed
// out, i.e. whether the next call can succeed without a regression error.
// It re-reads the clock, so a generator left Stalled by an earlier
// regression reports healthy as soon as the clock recovers.
func (g *Generator) Healthy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.clock.NowMillis() >= g.lastTimestamp
}

// next must be called with g.mu held.
func (g *Generator) next() (ID, error) {
	now := g.clock.NowMillis()
	switch {
	case now < g.lastTimestamp:
		g.state = StateStalled
		g.logger.Warn("clock moved backwards",
			logpkg.Int64("now_ms", now),
			logpkg.Int64("last_ms", g.lastTimestamp))
		return ID{}, &ClockRegressionError{Identity: g.identity, Last: g.lastTimestamp, Now: now}
	case now == g.lastTimestamp && (g.state != StateIdle || g.seeded):
		if g.sequence < MaxSequence {
			g.sequence++
			break
		}
		g.state = StateStalled
		next, err := g.waitNextMillis()
		if err != nil {
			return ID{}, err
		}
		now = next
		g.lastTimestamp = now
		g.sequence = 0
	default:
		g.lastTimestamp = now
		g.sequence = 0
	}
	g.state = StateAdvancing
	return Encode(g.lastTimestamp, g.identity.GeneratorID, g.identity.ClusterID, g.sequence), nil
}

// waitNextMillis blocks until the clock passes lastTimestamp. Without
// WithMaxStall there is no upper bound: a clock that never advances blocks
// the caller forever.
func (g *Generator) waitNextMillis() (int64, error) {
	var deadline time.Time
	if g.maxStall > 0 {
		deadline = time.Now().Add(g.maxStall)
	}
	for {
		now := g.clock.NowMillis()
		if now > g.lastTimestamp {
			return now, nil
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			g.logger.Warn("clock did not advance",
				logpkg.Int64("last_ms", g.lastTimestamp),
				logpkg.Dur("waited", g.maxStall))
			return 0, ErrStallTimeout
		}
		time.Sleep(stallPoll)
	}
}
