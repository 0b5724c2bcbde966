// Config loading for the folio CLI.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/folio/internal/logger"
	"github.com/mesh-intelligence/folio/internal/paths"
	"github.com/mesh-intelligence/folio/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyBackend     = "backend"
	cfgKeyDataDir     = "data_dir"
	cfgKeyLogLevel    = "log_level"
	cfgKeyLogFormat   = "log_format"
	cfgKeySettleDelay = "settle_delay"

	defaultBackend = types.BackendSQLite
)

// configHeader precedes the generated YAML in config.yaml.
const configHeader = `# folio configuration
#
# backend:      null, plain or sqlite
# data_dir:     where the store files live (overridable by --data-dir)
# log_level:    debug, info, warn or error
# log_format:   text or json
# settle_delay: how long the plain backend waits before reloading a changed file
`

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend     string `yaml:"backend"`
	DataDir     string `yaml:"data_dir,omitempty"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	SettleDelay string `yaml:"settle_delay"`
}

// settings is the configuration after flags, config.yaml, environment and
// defaults have been applied.
type settings struct {
	ConfigDir   string
	Backend     string
	DataDir     string
	SettleDelay time.Duration
	Log         logger.Config
}

// storeConfig returns the store configuration for the named backend.
func (s settings) storeConfig(backend string) types.Config {
	return types.Config{
		Backend:     backend,
		DataDir:     s.DataDir,
		SettleDelay: s.SettleDelay,
	}
}

// setup resolves settings and installs the process logger. It runs before
// every command.
func (a *app) setup(cmd *cobra.Command) error {
	s, err := resolveSettings(a.flags)
	if err != nil {
		return err
	}
	a.settings = s
	slog.SetDefault(logger.New(cmd.ErrOrStderr(), s.Log))
	slog.Debug("cli: settings resolved",
		"config_dir", s.ConfigDir,
		"data_dir", s.DataDir,
		"backend", s.Backend)
	return nil
}

func resolveSettings(f rootFlags) (settings, error) {
	configDir, err := paths.ResolveConfigDir(f.configDir)
	if err != nil {
		return settings{}, systemError(fmt.Errorf("resolve config dir: %w", err))
	}

	v, err := loadConfig(configDir)
	if err != nil {
		return settings{}, systemError(err)
	}

	dataDir, err := paths.ResolveDataDir(f.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return settings{}, systemError(fmt.Errorf("resolve data dir: %w", err))
	}

	s := settings{
		ConfigDir:   configDir,
		Backend:     v.GetString(cfgKeyBackend),
		DataDir:     dataDir,
		SettleDelay: v.GetDuration(cfgKeySettleDelay),
		Log: logger.Config{
			Level:  logger.Level(v.GetString(cfgKeyLogLevel)),
			Format: logger.Format(v.GetString(cfgKeyLogFormat)),
		},
	}
	if f.backend != "" {
		s.Backend = f.backend
	}
	if f.logLevel != "" {
		s.Log.Level = logger.Level(f.logLevel)
	}

	if err := s.Log.Finalize(); err != nil {
		return settings{}, userError("%v", err)
	}
	if err := s.storeConfig(s.Backend).Validate(); err != nil {
		return settings{}, userError("backend %q: %v (valid: %v)", s.Backend, err, types.Backends())
	}
	return s, nil
}

// loadConfig reads config.yaml from the config directory using Viper.
// A missing config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetDefault(cfgKeyLogLevel, string(logger.LevelWarn))
	v.SetDefault(cfgKeyLogFormat, string(logger.FormatText))
	v.SetDefault(cfgKeySettleDelay, types.DefaultSettleDelay)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// writeConfigIfMissing creates config.yaml from s if the file does not exist.
// If it already exists, the function returns nil.
func writeConfigIfMissing(configDir string, s settings) (bool, error) {
	path := filepath.Join(configDir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	cfg := configFile{
		Backend:     s.Backend,
		DataDir:     s.DataDir,
		LogLevel:    string(s.Log.Level),
		LogFormat:   string(s.Log.Format),
		SettleDelay: s.SettleDelay.String(),
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}
