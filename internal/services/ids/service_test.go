package idsvc

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cfgpkg "github.com/rzbill/uniqueid/internal/config"
	"github.com/rzbill/uniqueid/internal/runtime"
	pebblestore "github.com/rzbill/uniqueid/internal/storage/pebble"
	logpkg "github.com/rzbill/uniqueid/pkg/log"
	"github.com/rzbill/uniqueid/pkg/uniqueid"
)

type testClock struct{ ms atomic.Int64 }

func (c *testClock) NowMillis() int64 { return c.ms.Load() }

func newServiceForTest(t *testing.T, cfg cfgpkg.Config, clock uniqueid.Clock) *Service {
	t.Helper()
	rt, err := runtime.Open(runtime.Options{
		DataDir: t.TempDir(),
		Fsync:   pebblestore.FsyncModeAlways,
		Config:  cfg,
		Clock:   clock,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })
	return NewWithLogger(rt, logpkg.NewNopLogger())
}

func TestGenerateDefaultIdentity(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.GeneratorID, cfg.ClusterID = 9, 2
	svc := newServiceForTest(t, cfg, nil)

	a, err := svc.Generate(context.Background(), DefaultSelector())
	require.NoError(t, err)
	b, err := svc.Generate(context.Background(), DefaultSelector())
	require.NoError(t, err)
	require.Negative(t, a.Compare(b))

	f := uniqueid.Decode(a)
	require.Equal(t, 9, f.GeneratorID)
	require.Equal(t, 2, f.ClusterID)
}

func TestGenerateExplicitIdentity(t *testing.T) {
	svc := newServiceForTest(t, cfgpkg.Default(), nil)

	id, err := svc.Generate(context.Background(), For(63, 15))
	require.NoError(t, err)
	f := uniqueid.Decode(id)
	require.Equal(t, 63, f.GeneratorID)
	require.Equal(t, 15, f.ClusterID)

	_, err = svc.Generate(context.Background(), For(64, 0))
	require.ErrorIs(t, err, uniqueid.ErrParameterOutOfBounds)
}

func TestBatchBounds(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.MaxBatch = 50
	svc := newServiceForTest(t, cfg, nil)

	ids, err := svc.Batch(context.Background(), DefaultSelector(), 50)
	require.NoError(t, err)
	require.Len(t, ids, 50)
	for i := 1; i < len(ids); i++ {
		require.Negative(t, ids[i-1].Compare(ids[i]))
	}

	_, err = svc.Batch(context.Background(), DefaultSelector(), 51)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.Batch(context.Background(), DefaultSelector(), 0)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGenerateClockRegression(t *testing.T) {
	clock := &testClock{}
	clock.ms.Store(5000)
	cfg := cfgpkg.Default()
	cfg.BatchSize = 1
	svc := newServiceForTest(t, cfg, clock)

	_, err := svc.Generate(context.Background(), DefaultSelector())
	require.NoError(t, err)
	clock.ms.Store(4000)
	_, err = svc.Generate(context.Background(), DefaultSelector())
	require.ErrorIs(t, err, uniqueid.ErrClockRegression)
	require.Error(t, svc.CheckHealth(context.Background()))

	clock.ms.Store(5001)
	_, err = svc.Generate(context.Background(), DefaultSelector())
	require.NoError(t, err)
	require.NoError(t, svc.CheckHealth(context.Background()))
}

func TestBatchTimesOutWhileStalled(t *testing.T) {
	clock := &testClock{}
	clock.ms.Store(1000)
	cfg := cfgpkg.Default()
	cfg.RequestTimeout = cfgpkg.Duration{Duration: 30 * time.Millisecond}
	svc := newServiceForTest(t, cfg, clock)

	start := time.Now()
	// more IDs than one frozen millisecond can hold
	_, err := svc.Batch(context.Background(), DefaultSelector(), uniqueid.MaxSequence+10)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), time.Second)

	// release the abandoned batch so the generator lock is freed
	clock.ms.Store(1001)
	require.Eventually(t, func() bool {
		_, err := svc.Generate(context.Background(), DefaultSelector())
		return err == nil
	}, time.Second, 5*time.Millisecond)
}

func TestGenerateCanceledContext(t *testing.T) {
	svc := newServiceForTest(t, cfgpkg.Default(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Generate(ctx, DefaultSelector())
	require.ErrorIs(t, err, context.Canceled)
}

func TestDecode(t *testing.T) {
	svc := newServiceForTest(t, cfgpkg.Default(), nil)
	id := uniqueid.Encode(1700000000000, 4, 5, 6)

	d, err := svc.Decode(id.String())
	require.NoError(t, err)
	require.Equal(t, id, d.ID)
	require.Equal(t, uniqueid.Fields{Timestamp: 1700000000000, GeneratorID: 4, ClusterID: 5, Sequence: 6}, d.Fields)

	_, err = svc.Decode("not-hex")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDecodeFiltered(t *testing.T) {
	svc := newServiceForTest(t, cfgpkg.Default(), nil)
	ids := []string{
		uniqueid.Encode(1000, 1, 0, 0).String(),
		uniqueid.Encode(1000, 2, 0, 1).String(),
		uniqueid.Encode(1001, 1, 0, 0).String(),
	}

	all, err := svc.DecodeFiltered(ids, "")
	require.NoError(t, err)
	require.Len(t, all, 3)

	hits, err := svc.DecodeFiltered(ids, "generator_id == 1")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.Equal(t, int64(1001), hits[1].Timestamp)

	_, err = svc.DecodeFiltered(ids, "generator_id +")
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.DecodeFiltered([]string{"xyz"}, "")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBatchStallTimeout(t *testing.T) {
	clock := &testClock{}
	clock.ms.Store(1000)
	cfg := cfgpkg.Default()
	cfg.MaxStall = cfgpkg.Duration{Duration: 20 * time.Millisecond}
	svc := newServiceForTest(t, cfg, clock)

	_, err := svc.Batch(context.Background(), DefaultSelector(), uniqueid.MaxSequence+10)
	require.ErrorIs(t, err, uniqueid.ErrStallTimeout)

	// IDs cached before the failed refill are still served
	id, err := svc.Generate(context.Background(), DefaultSelector())
	require.NoError(t, err)
	require.Equal(t, int64(1000), uniqueid.Decode(id).Timestamp)
}
