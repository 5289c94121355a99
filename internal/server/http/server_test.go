package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	cfgpkg "github.com/rzbill/uniqueid/internal/config"
	"github.com/rzbill/uniqueid/internal/runtime"
	pebblestore "github.com/rzbill/uniqueid/internal/storage/pebble"
	logpkg "github.com/rzbill/uniqueid/pkg/log"
	"github.com/rzbill/uniqueid/pkg/uniqueid"
)

type testClock struct{ ms atomic.Int64 }

func (c *testClock) NowMillis() int64 { return c.ms.Load() }

func newServer(t *testing.T, cfg cfgpkg.Config, clock uniqueid.Clock, logger logpkg.Logger) *Server {
	t.Helper()
	rt, err := runtime.Open(runtime.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways, Config: cfg, Clock: clock})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	if logger == nil {
		logger, _ = logpkg.ApplyConfig(&logpkg.Config{Level: "error", Format: "text"})
	}
	return New(rt, logger)
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthHandler(t *testing.T) {
	s := newServer(t, cfgpkg.Default(), nil, nil)
	w := do(t, s, http.MethodGet, "/v1/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); !strings.Contains(got, `"SERVING"`) {
		t.Fatalf("body: %s", got)
	}
}

func TestGenerateHandler(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.GeneratorID, cfg.ClusterID = 5, 6
	s := newServer(t, cfg, nil, nil)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		w := do(t, s, method, "/v1/ids", "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s status: %d", method, w.Code)
		}
		var res struct{ ID string }
		if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
			t.Fatalf("decode: %v", err)
		}
		id, err := uniqueid.ParseHex(res.ID)
		if err != nil {
			t.Fatalf("parse %q: %v", res.ID, err)
		}
		if f := uniqueid.Decode(id); f.GeneratorID != 5 || f.ClusterID != 6 {
			t.Fatalf("identity: %+v", f)
		}
	}

	w := do(t, s, http.MethodGet, "/v1/ids?generator=7&cluster=1", "")
	var res struct{ ID string }
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	id, _ := uniqueid.ParseHex(res.ID)
	if f := uniqueid.Decode(id); f.GeneratorID != 7 || f.ClusterID != 1 {
		t.Fatalf("override: %+v", f)
	}

	if w := do(t, s, http.MethodDelete, "/v1/ids", ""); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("delete status: %d", w.Code)
	}
}

func TestBatchHandler(t *testing.T) {
	s := newServer(t, cfgpkg.Default(), nil, nil)
	w := do(t, s, http.MethodGet, "/v1/ids/batch?n=25", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d %s", w.Code, w.Body.String())
	}
	var res struct{ IDs []string }
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.IDs) != 25 {
		t.Fatalf("got %d ids", len(res.IDs))
	}
	for i := 1; i < len(res.IDs); i++ {
		// fixed-width hex sorts like the IDs themselves
		if res.IDs[i-1] >= res.IDs[i] {
			t.Fatalf("ids not increasing at %d", i)
		}
	}
}

func TestStreamHandler(t *testing.T) {
	s := newServer(t, cfgpkg.Default(), nil, nil)
	w := do(t, s, http.MethodGet, "/v1/ids/stream?n=3", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type: %s", ct)
	}
	if n := strings.Count(w.Body.String(), "data: "); n != 3 {
		t.Fatalf("got %d events", n)
	}
}

// flushRecorder records how many events had been written at each flush.
type flushRecorder struct {
	*httptest.ResponseRecorder
	atFlush []int
}

func (f *flushRecorder) Flush() {
	f.atFlush = append(f.atFlush, strings.Count(f.Body.String(), "data: "))
	f.ResponseRecorder.Flush()
}

func TestStreamHandlerFlushesEachEvent(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.MaxBatch = 200
	s := newServer(t, cfg, nil, nil)
	w := &flushRecorder{ResponseRecorder: httptest.NewRecorder()}
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/ids/stream?n=70", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	if len(w.atFlush) != 70 {
		t.Fatalf("flushes: %d want 70", len(w.atFlush))
	}
	for i, n := range w.atFlush {
		if n != i+1 {
			t.Fatalf("flush %d saw %d events", i, n)
		}
	}

	if r := do(t, s, http.MethodGet, "/v1/ids/stream?n=201", ""); r.Code != http.StatusBadRequest {
		t.Fatalf("oversized stream: %d", r.Code)
	}
}

func TestErrorStatuses(t *testing.T) {
	clock := &testClock{}
	clock.ms.Store(50_000)
	cfg := cfgpkg.Default()
	cfg.BatchSize = 1
	cfg.MaxBatch = 10
	s := newServer(t, cfg, clock, nil)

	cases := []struct {
		name   string
		target string
		want   int
	}{
		{"batch too large", "/v1/ids/batch?n=11", http.StatusBadRequest},
		{"batch not a number", "/v1/ids/batch?n=ten", http.StatusBadRequest},
		{"identity out of bounds", "/v1/ids?generator=64", http.StatusBadRequest},
		{"bad decode", "/v1/ids/decode?id=xyz", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := do(t, s, http.MethodGet, tc.target, ""); w.Code != tc.want {
				t.Fatalf("status: %d want %d (%s)", w.Code, tc.want, w.Body.String())
			}
		})
	}

	if w := do(t, s, http.MethodGet, "/v1/ids", ""); w.Code != http.StatusOK {
		t.Fatalf("generate: %d", w.Code)
	}
	clock.ms.Store(40_000)
	if w := do(t, s, http.MethodGet, "/v1/ids", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("regression status: %d", w.Code)
	}
	if w := do(t, s, http.MethodGet, "/v1/healthz", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("health while clock is behind: %d", w.Code)
	}
	clock.ms.Store(60_000)
	if w := do(t, s, http.MethodGet, "/v1/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("health after clock recovered: %d", w.Code)
	}
}

func TestDecodeHandlers(t *testing.T) {
	s := newServer(t, cfgpkg.Default(), nil, nil)
	a := uniqueid.Encode(1700000000000, 1, 2, 3)
	b := uniqueid.Encode(1700000000001, 4, 2, 0)

	w := do(t, s, http.MethodGet, "/v1/ids/decode?id="+a.String(), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	var one struct {
		ID          string `json:"id"`
		Timestamp   int64  `json:"ts_ms"`
		GeneratorID int    `json:"generator_id"`
		Sequence    int    `json:"sequence"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &one); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if one.ID != a.String() || one.Timestamp != 1700000000000 || one.GeneratorID != 1 || one.Sequence != 3 {
		t.Fatalf("unexpected: %+v", one)
	}

	body, _ := json.Marshal(map[string]any{"ids": []string{a.String(), b.String()}, "filter": "generator_id == 4"})
	w = do(t, s, http.MethodPost, "/v1/ids/decode", string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d %s", w.Code, w.Body.String())
	}
	var many struct {
		IDs []struct {
			ID string `json:"id"`
		} `json:"ids"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &many); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(many.IDs) != 1 || many.IDs[0].ID != b.String() {
		t.Fatalf("filter: %+v", many)
	}

	w = do(t, s, http.MethodPost, "/v1/ids/decode", `{"ids":[],"filter":"ts_ms"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("non-bool filter status: %d", w.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := logpkg.NewLogger(
		logpkg.WithLevel(logpkg.DebugLevel),
		logpkg.WithFormatter(&logpkg.TextFormatter{DisableTimestamp: true}),
		logpkg.WithOutput(logpkg.NewWriterOutput(&buf)),
	)
	s := newServer(t, cfgpkg.Default(), nil, logger)

	w := do(t, s, http.MethodGet, "/v1/healthz", "")
	rid := w.Header().Get(RequestIDHeader)
	if len(rid) != 36 {
		t.Fatalf("generated request id: %q", rid)
	}
	if !strings.Contains(buf.String(), "request_id="+rid) {
		t.Fatalf("access log missing request id: %s", buf.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("request id not propagated: %q", got)
	}
}
