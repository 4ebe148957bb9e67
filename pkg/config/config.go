// Package config handles loading and saving accordion configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/accordion/config.yaml
//   - Data:    ~/.local/share/accordion/ (default folder database)
//   - State:   ~/.local/state/accordion/ (TUI log file)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/accordion/pkg/model"
)

const appName = "accordion"

// EnvStore overrides the configured store DSN.
const EnvStore = "ACCORDION_STORE"

// SortConfig is the persisted list order.
type SortConfig struct {
	Key       model.SortKey `yaml:"key"`
	Ascending bool          `yaml:"ascending"`
}

// NamedStore is a store registered under a short name.
type NamedStore struct {
	Name string `yaml:"name"`
	DSN  string `yaml:"dsn"`
}

// StoreConfig selects where folders live.
type StoreConfig struct {
	DSN   string       `yaml:"dsn,omitempty"`   // file path or postgres:// URL
	Named []NamedStore `yaml:"named,omitempty"` // aliases usable with --store
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	DefaultTitle string `yaml:"default_title,omitempty"` // Title for folders added without one
	SampleData   bool   `yaml:"sample_data"`             // Seed sample folders into an empty store
	ShowHelp     bool   `yaml:"show_help"`               // Key help line under the list
}

// WatchConfig controls reloading when another process changes the store.
type WatchConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Debounce     time.Duration `yaml:"debounce,omitempty"`      // Quiet period before reloading
	PollInterval time.Duration `yaml:"poll_interval,omitempty"` // Used on remote filesystems
}

// Config is the top-level configuration for accordion.
type Config struct {
	Sort  SortConfig  `yaml:"sort"`
	Store StoreConfig `yaml:"store,omitempty"`
	UI    UIConfig    `yaml:"ui,omitempty"`
	Watch WatchConfig `yaml:"watch,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Sort: SortConfig{Key: model.SortManual, Ascending: true},
		UI: UIConfig{
			DefaultTitle: model.DefaultTitle,
			SampleData:   true,
			ShowHelp:     true,
		},
		Watch: WatchConfig{
			Enabled:      true,
			Debounce:     200 * time.Millisecond,
			PollInterval: 2 * time.Second,
		},
	}
}

// ConfigDir returns the XDG config directory for accordion.
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns the XDG data directory for accordion.
func DataDir() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// StateDir returns the XDG state directory for accordion.
func StateDir() string {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, fallback, appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// DefaultStoreDSN returns the SQLite database in the data directory.
func DefaultStoreDSN() string {
	dir := DataDir()
	if dir == "" {
		return "accordion.db"
	}
	return filepath.Join(dir, "accordion.db")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	// Expand ~ in store paths
	cfg.Store.DSN = expandHome(cfg.Store.DSN)
	for i := range cfg.Store.Named {
		cfg.Store.Named[i].DSN = expandHome(cfg.Store.Named[i].DSN)
	}

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// FindStore returns the named store with the given name, or nil.
func (c Config) FindStore(name string) *NamedStore {
	for i := range c.Store.Named {
		if strings.EqualFold(c.Store.Named[i].Name, name) {
			return &c.Store.Named[i]
		}
	}
	return nil
}

// ResolveDSN picks the store to open. The first non-empty of flag, the
// ACCORDION_STORE environment variable and the configured DSN wins; a
// value naming a registered store resolves to that store's DSN. With
// nothing set, the default database in the data directory is used.
func (c Config) ResolveDSN(flag string) string {
	dsn := flag
	if dsn == "" {
		dsn = os.Getenv(EnvStore)
	}
	if dsn == "" {
		dsn = c.Store.DSN
	}
	if dsn == "" {
		return DefaultStoreDSN()
	}
	if named := c.FindStore(dsn); named != nil {
		return named.DSN
	}
	return expandHome(dsn)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
