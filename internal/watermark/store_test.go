package watermark

import (
	"errors"
	"testing"
	"time"

	pebblestore "github.com/rzbill/uniqueid/internal/storage/pebble"
	"github.com/rzbill/uniqueid/pkg/uniqueid"
)

func openDB(t *testing.T) *pebblestore.DB {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestEnsureIdempotent(t *testing.T) {
	s := NewStore(openDB(t))
	id := uniqueid.Identity{GeneratorID: 3, ClusterID: 1}

	r1, err := s.Ensure(id)
	if err != nil {
		t.Fatalf("ensure1: %v", err)
	}
	r2, err := s.Ensure(id)
	if err != nil {
		t.Fatalf("ensure2: %v", err)
	}
	if r1 != r2 {
		t.Fatalf("not idempotent: %+v vs %+v", r1, r2)
	}
	if r1.Identity() != id || r1.LastTimestampMs != 0 || r1.ClaimedAtMs == 0 {
		t.Fatalf("unexpected record %+v", r1)
	}
}

func TestGetMissing(t *testing.T) {
	s := NewStore(openDB(t))
	if _, err := s.Get(uniqueid.Identity{}); !errors.Is(err, pebblestore.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAdvanceOnlyMovesForward(t *testing.T) {
	s := NewStore(openDB(t))
	id := uniqueid.Identity{GeneratorID: 1, ClusterID: 2}

	for _, ms := range []int64{100, 250, 200, 250} {
		if err := s.Advance(id, ms); err != nil {
			t.Fatalf("advance %d: %v", ms, err)
		}
	}
	r, err := s.Get(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if r.LastTimestampMs != 250 {
		t.Fatalf("watermark %d want 250", r.LastTimestampMs)
	}
}

func TestList(t *testing.T) {
	s := NewStore(openDB(t))
	ids := []uniqueid.Identity{{GeneratorID: 10, ClusterID: 0}, {GeneratorID: 2, ClusterID: 15}, {GeneratorID: 2, ClusterID: 3}}
	for _, id := range ids {
		if _, err := s.Ensure(id); err != nil {
			t.Fatalf("ensure: %v", err)
		}
	}
	recs, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("want 3 records, got %d", len(recs))
	}
	// byte order of "wm/<g>/<c>" keys
	want := []string{"10/0", "2/15", "2/3"}
	for i, r := range recs {
		if r.Identity().String() != want[i] {
			t.Fatalf("record %d = %s want %s", i, r.Identity(), want[i])
		}
	}
}

func TestFlusherPersistsRegistryTimestamps(t *testing.T) {
	s := NewStore(openDB(t))
	clock := uniqueid.ClockFunc(func() int64 { return 1_700_000_000_000 })
	reg := uniqueid.NewRegistry(uniqueid.WithClock(clock))
	g, err := reg.GeneratorFor(4, 4)
	if err != nil {
		t.Fatalf("generator: %v", err)
	}
	if _, err := reg.GeneratorFor(5, 5); err != nil { // never used; nothing to persist
		t.Fatalf("generator: %v", err)
	}
	if _, err := g.Generate(); err != nil {
		t.Fatalf("generate: %v", err)
	}

	f := NewFlusher(s, reg, 5*time.Millisecond, nil)
	f.Start()
	deadline := time.Now().Add(2 * time.Second)
	for {
		r, err := s.Get(g.Identity())
		if err == nil && r.LastTimestampMs == 1_700_000_000_000 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("watermark not flushed: %+v %v", r, err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := f.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if _, err := s.Get(uniqueid.Identity{GeneratorID: 5, ClusterID: 5}); !errors.Is(err, pebblestore.ErrNotFound) {
		t.Fatalf("unused generator should not be persisted, got %v", err)
	}
}

func TestFlusherStopWithoutStart(t *testing.T) {
	s := NewStore(openDB(t))
	reg := uniqueid.NewRegistry(uniqueid.WithClock(uniqueid.ClockFunc(func() int64 { return 77 })))
	g, _ := reg.GeneratorFor(0, 0)
	if _, err := g.Generate(); err != nil {
		t.Fatalf("generate: %v", err)
	}
	f := NewFlusher(s, reg, time.Hour, nil)
	if err := f.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	r, err := s.Get(g.Identity())
	if err != nil || r.LastTimestampMs != 77 {
		t.Fatalf("final flush missing: %+v %v", r, err)
	}
}
