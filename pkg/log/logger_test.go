package log

import (
	"bytes"
	"encoding/json"
	"errors"
	stdlog "log"
	"os"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer, level Level, f Formatter) Logger {
	return NewLogger(WithLevel(level), WithFormatter(f), WithOutput(NewWriterOutput(buf)))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"INFO", InfoLevel, false},
		{"", InfoLevel, false},
		{"warning", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"verbose", InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseLevel(%q) err=%v wantErr=%v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelGating(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, WarnLevel, &TextFormatter{DisableTimestamp: true})
	l.Info("hidden")
	l.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info should be filtered: %q", out)
	}
	if !strings.Contains(out, "WARN  shown") {
		t.Fatalf("missing warn line: %q", out)
	}
}

func TestWithFieldsText(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, DebugLevel, &TextFormatter{DisableTimestamp: true})
	l = l.WithComponent("registry").With(Int("generator_id", 3))
	l.Debug("created", Str("identity", "3/1"))
	want := "DEBUG created component=registry generator_id=3 identity=3/1\n"
	if buf.String() != want {
		t.Fatalf("got %q want %q", buf.String(), want)
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, InfoLevel, &JSONFormatter{IncludeCaller: true})
	l.WithError(errors.New("boom")).Error("refill failed", Int("batch", 500))

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("unmarshal: %v (%q)", err, buf.String())
	}
	if m["msg"] != "refill failed" || m["level"] != "ERROR" || m["error"] != "boom" {
		t.Fatalf("unexpected entry: %v", m)
	}
	if m["batch"].(float64) != 500 {
		t.Fatalf("batch field: %v", m["batch"])
	}
	if c, _ := m["caller"].(string); !strings.Contains(c, "logger_test.go") {
		t.Fatalf("caller should point at the test, got %q", c)
	}
}

func TestSetLevelSharedWithChildren(t *testing.T) {
	var buf bytes.Buffer
	parent := newBufferLogger(&buf, ErrorLevel, &TextFormatter{DisableTimestamp: true})
	child := parent.WithComponent("x")
	parent.SetLevel(DebugLevel)
	child.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("child should follow parent level, got %q", buf.String())
	}
}

func TestApplyConfig(t *testing.T) {
	if _, err := ApplyConfig(&Config{Level: "debug", Format: "json"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := ApplyConfig(&Config{Format: "xml"}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if _, err := ApplyConfig(&Config{Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestRedirectStdLog(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, InfoLevel, &TextFormatter{DisableTimestamp: true})
	RedirectStdLog(l)
	t.Cleanup(func() {
		stdlog.SetOutput(os.Stderr)
		stdlog.SetFlags(stdlog.LstdFlags)
	})
	stdlog.Printf("pebble says %d", 42)
	if got := buf.String(); got != "INFO  pebble says 42 component=stdlog\n" {
		t.Fatalf("got %q", got)
	}
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Error("nothing")
	if l.GetLevel() <= FatalLevel {
		t.Fatalf("nop logger should be above fatal")
	}
}
