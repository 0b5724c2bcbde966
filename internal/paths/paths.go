// Package paths locates folio's configuration and state directories.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories.
const AppName = "folio"

// Environment overrides.
const (
	EnvConfigDir = "FOLIO_CONFIG_DIR"
	EnvDataDir   = "FOLIO_DATA_DIR"
)

// DefaultConfigDir is where config.yaml lives when nothing overrides it:
// $XDG_CONFIG_HOME/folio or ~/.config/folio on Linux, the user config
// directory elsewhere.
func DefaultConfigDir() (string, error) {
	return userDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir is where the bookmark, history and database files live when
// nothing overrides it: $XDG_DATA_HOME/folio or ~/.local/share/folio on
// Linux, the user config directory elsewhere.
func DefaultDataDir() (string, error) {
	return userDir("XDG_DATA_HOME", ".local", "share")
}

// userDir returns AppName under $xdgVar, under home/fallback when that is
// unset, or under os.UserConfigDir outside Linux.
func userDir(xdgVar string, fallback ...string) (string, error) {
	if runtime.GOOS != "linux" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv(xdgVar); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append(append([]string{home}, fallback...), AppName)...), nil
}

// ResolveConfigDir picks the --config-dir flag, then FOLIO_CONFIG_DIR, then
// DefaultConfigDir.
func ResolveConfigDir(flag string) (string, error) {
	return firstAbs(DefaultConfigDir, flag, os.Getenv(EnvConfigDir))
}

// ResolveDataDir picks the --data-dir flag, then the config file's data_dir,
// then FOLIO_DATA_DIR, then DefaultDataDir.
func ResolveDataDir(flag, configValue string) (string, error) {
	return firstAbs(DefaultDataDir, flag, configValue, os.Getenv(EnvDataDir))
}

// firstAbs returns the first non-empty candidate made absolute, or def.
func firstAbs(def func() (string, error), candidates ...string) (string, error) {
	for _, c := range candidates {
		if c != "" {
			return filepath.Abs(c)
		}
	}
	return def()
}
