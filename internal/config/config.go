// Package config loads the danak TOML configuration and the tax regime table.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/danak/internal/currency"
)

// ErrInvalidBaseMode is returned for an unknown social-security base mode.
var ErrInvalidBaseMode = errors.New("invalid base mode")

// BaseMode selects where the social-security base comes from.
type BaseMode string

const (
	// BaseActual derives the base from the month's earned income.
	BaseActual BaseMode = "actual"
	// BaseElected uses the insurance income chosen in settings.
	BaseElected BaseMode = "elected"
)

// ParseBaseMode parses a base mode name, defaulting to actual when empty.
func ParseBaseMode(s string) (BaseMode, error) {
	switch BaseMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", BaseActual:
		return BaseActual, nil
	case BaseElected:
		return BaseElected, nil
	default:
		return "", fmt.Errorf("%w: %q (want actual or elected)", ErrInvalidBaseMode, s)
	}
}

// Config holds all danak configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Appearance AppearanceConfig `toml:"appearance"`
	TUI        TUIConfig        `toml:"tui"`
	Log        LogConfig        `toml:"log"`
	Server     ServerConfig     `toml:"server"`
	Regime     RegimeOverrides  `toml:"regime"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DataDir  string   `toml:"data_dir,omitempty"`
	Currency string   `toml:"currency"`
	BaseMode BaseMode `toml:"base_mode"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// TUIConfig holds dashboard refresh settings.
type TUIConfig struct {
	AutoRefresh        bool `toml:"auto_refresh"`
	RefreshIntervalSec int  `toml:"refresh_interval_sec"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ServerConfig holds daemon settings.
type ServerConfig struct {
	Addr        string `toml:"addr"`
	IntervalSec int    `toml:"interval_sec"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Currency: string(currency.EUR),
			BaseMode: BaseActual,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		TUI: TUIConfig{
			RefreshIntervalSec: 30,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Server: ServerConfig{
			Addr:        "127.0.0.1:8797",
			IntervalSec: 15,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "danak")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "danak")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "danak")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "danak")
}

// DBPath returns the record database path for cfg.
func (c Config) DBPath() string {
	dir := c.General.DataDir
	if dir == "" {
		dir = DataDir()
	}
	return filepath.Join(dir, "danak.db")
}

// DisplayCurrency returns the configured display currency, falling back to EUR.
func (c Config) DisplayCurrency() currency.Currency {
	cur, err := currency.Parse(c.General.Currency)
	if err != nil {
		return currency.EUR
	}
	return cur
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied last.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyEnv(&cfg)

	mode, err := ParseBaseMode(string(cfg.General.BaseMode))
	if err != nil {
		return cfg, err
	}
	cfg.General.BaseMode = mode

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DANAK_DATA_DIR"); v != "" {
		cfg.General.DataDir = v
	}
	if v := os.Getenv("DANAK_CURRENCY"); v != "" {
		cfg.General.Currency = v
	}
	if v := os.Getenv("DANAK_BASE_MODE"); v != "" {
		cfg.General.BaseMode = BaseMode(v)
	}
	if v := os.Getenv("DANAK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
