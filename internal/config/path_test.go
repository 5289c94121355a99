package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultDataDir(t *testing.T) {
	home := t.TempDir()
	tests := []struct {
		name     string
		dataDir  string
		xdg      string
		expected string
	}{
		{"explicit override", "/srv/ids", "/custom/data", "/srv/ids"},
		{"xdg data home", "", "/custom/data", filepath.Join("/custom/data", "uniqueid")},
		{"home dotdir", "", "", filepath.Join(home, ".uniqueid")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", home)
			t.Setenv(DataDirEnv, tt.dataDir)
			t.Setenv("XDG_DATA_HOME", tt.xdg)
			if got := DefaultDataDir(); got != tt.expected {
				t.Fatalf("DefaultDataDir() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDefaultDataDirWithoutHome(t *testing.T) {
	t.Setenv(DataDirEnv, "")
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", "")
	if got := DefaultDataDir(); got != "./data" {
		t.Fatalf("DefaultDataDir() = %q, want ./data", got)
	}
}
