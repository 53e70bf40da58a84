// Package config handles loading and saving application configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const appName = "duelist"

// Storage drivers.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config represents the application configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	UI      UIConfig      `yaml:"ui"`
	Notify  NotifyConfig  `yaml:"notify"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig selects where the list is persisted.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	// Dir defaults to the XDG data directory when empty
	Dir string `yaml:"dir,omitempty"`
}

// UIConfig holds presentation settings. Mode flags are only startup defaults.
type UIConfig struct {
	Theme           string        `yaml:"theme"`
	GroupDone       bool          `yaml:"group_done"`
	HideDone        bool          `yaml:"hide_done"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

type NotifyConfig struct {
	Enabled bool `yaml:"enabled"`
}

type LogConfig struct {
	Development bool `yaml:"development"`
	// File defaults to <data dir>/duelist.log; "-" disables logging
	File string `yaml:"file,omitempty"`
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{Driver: DriverJSON},
		UI: UIConfig{
			Theme:           "classic",
			RefreshInterval: time.Minute,
		},
		Notify: NotifyConfig{Enabled: true},
	}
}

// ConfigDir returns the path to the configuration directory.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", appName), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DataDir returns the directory holding the list and the log.
// Uses XDG_DATA_HOME or defaults to ~/.local/share/duelist/
func DataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataHome, appName), nil
}

// Load reads the configuration at path, then applies environment overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("DUELIST_STORAGE_DRIVER")); v != "" {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("DUELIST_DATA_DIR")); v != "" {
		c.Storage.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv("DUELIST_THEME")); v != "" {
		c.UI.Theme = v
	}
}

// Validate checks values Load cannot fix up on its own.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverJSON, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q (want json, sqlite or memory)", c.Storage.Driver)
	}
	if c.UI.RefreshInterval <= 0 || c.UI.RefreshInterval > time.Minute {
		return fmt.Errorf("ui.refresh_interval must be in (0, 1m], got %s", c.UI.RefreshInterval)
	}
	return nil
}

// ResolveDataDir returns Storage.Dir or the default data directory.
func (c *Config) ResolveDataDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	return DataDir()
}

// LogPath returns where the log goes; empty means logging is off.
func (c *Config) LogPath() (string, error) {
	switch c.Log.File {
	case "-":
		return "", nil
	case "":
		dir, err := c.ResolveDataDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appName+".log"), nil
	default:
		return c.Log.File, nil
	}
}

// ErrExists is returned by WriteTemplate when a config file is already present.
var ErrExists = errors.New("config file already exists")

// WriteTemplate writes Template to path. An existing file is kept unless force is set.
func WriteTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(Template), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Template is written by `duelist init`.
const Template = `# duelist configuration

storage:
  # json (one todos.json file), sqlite (duelist.db) or memory (nothing persisted)
  driver: json
  # dir: ~/.local/share/duelist

ui:
  # classic, neon or mono
  theme: classic
  # startup defaults for the g / h toggles
  group_done: false
  hide_done: false
  # how often countdowns refresh; at most 1m
  refresh_interval: 1m

notify:
  # desktop notification when a pending item expires while the TUI runs
  enabled: true

log:
  development: false
  # file: ~/.local/share/duelist/duelist.log   ("-" disables)
`
