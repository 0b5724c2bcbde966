package types

import (
	"errors"
	"time"
)

// Config holds backend selection and parameters for opening a Store.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// SettleDelay is how long the plain backend waits after the last change
	// notification for a store file before reloading it. Zero selects
	// DefaultSettleDelay.
	SettleDelay time.Duration `json:"settle_delay,omitempty" yaml:"settle_delay,omitempty"`
}

// Supported backend names.
const (
	BackendNull   = "null"
	BackendPlain  = "plain"
	BackendSQLite = "sqlite"
)

// DefaultSettleDelay is the plain backend's reload delay when Config leaves it unset.
const DefaultSettleDelay = 100 * time.Millisecond

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrDataDirEmpty   = errors.New("data directory must not be empty")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendNull:   true,
	BackendPlain:  true,
	BackendSQLite: true,
}

// Backends returns the names of all supported backends.
func Backends() []string {
	return []string{BackendNull, BackendPlain, BackendSQLite}
}

// Validate checks that the Config is well-formed. Backends with on-disk
// storage require a DataDir.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Backend != BackendNull && c.DataDir == "" {
		return ErrDataDirEmpty
	}
	return nil
}

// GetSettleDelay returns SettleDelay, or DefaultSettleDelay when it is not positive.
func (c Config) GetSettleDelay() time.Duration {
	if c.SettleDelay <= 0 {
		return DefaultSettleDelay
	}
	return c.SettleDelay
}
