package config

import (
	"os"
	"path/filepath"
)

// DataDirEnv overrides the default data directory.
const DataDirEnv = "UNIQUEID_DATA_DIR"

// DefaultDataDir returns where the server keeps its watermark store when
// --data-dir is not given. Resolution order: $UNIQUEID_DATA_DIR,
// $XDG_DATA_HOME/uniqueid, ~/.uniqueid, then ./data when there is no home
// directory.
func DefaultDataDir() string {
	if dir := os.Getenv(DataDirEnv); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "uniqueid")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "./data"
	}
	return filepath.Join(home, ".uniqueid")
}
