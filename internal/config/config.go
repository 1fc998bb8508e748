// Package config provides configuration management for life.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all configuration for the life application.
type Config struct {
	Storage       StorageConfig      `mapstructure:"storage"`
	Calendar      CalendarConfig     `mapstructure:"calendar"`
	Engine        EngineConfig       `mapstructure:"engine"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Log           LogConfig          `mapstructure:"log"`
	Metrics       MetricsConfig      `mapstructure:"metrics"`
	MCP           MCPConfig          `mapstructure:"mcp"`
	Theme         ThemeConfig        `mapstructure:"theme"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	Driver  string `mapstructure:"driver"`
	DataDir string `mapstructure:"data_dir"`
	DSN     string `mapstructure:"dsn"`
}

// CalendarConfig decides which calendar day "now" falls on.
type CalendarConfig struct {
	// Timezone is an IANA zone name. Empty uses the process local zone.
	Timezone string `mapstructure:"timezone"`
}

// Location resolves Timezone.
func (c CalendarConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid calendar.timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// EngineConfig tunes the consistency engine.
type EngineConfig struct {
	StreakLimit     int           `mapstructure:"streak_limit"`
	BulkConcurrency int           `mapstructure:"bulk_concurrency"`
	PersistTimeout  time.Duration `mapstructure:"persist_timeout"`
}

// NotificationConfig holds notification settings.
type NotificationConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Sound   bool `mapstructure:"sound"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// MetricsConfig holds the prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// MCPConfig holds MCP server settings.
type MCPConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// ThemeConfig holds board and dashboard colors and icons.
type ThemeConfig struct {
	ColorDone    string `mapstructure:"color_done"`
	ColorPending string `mapstructure:"color_pending"`
	ColorMissed  string `mapstructure:"color_missed"`
	ColorTitle   string `mapstructure:"color_title"`
	ColorHelp    string `mapstructure:"color_help"`
	ColorError   string `mapstructure:"color_error"`
	IconDone     string `mapstructure:"icon_done"`
	IconPending  string `mapstructure:"icon_pending"`
	IconMissed   string `mapstructure:"icon_missed"`
}

// DefaultThemeConfig returns the default theme configuration.
func DefaultThemeConfig() ThemeConfig {
	return ThemeConfig{
		ColorDone:    "#2ECC71",
		ColorPending: "#F5A623",
		ColorMissed:  "#6B7280",
		ColorTitle:   "#7C6FE0",
		ColorHelp:    "#95A5A6",
		ColorError:   "#E74C3C",
		IconDone:     "●",
		IconPending:  "◐",
		IconMissed:   "○",
	}
}

const defaultDataDir = "~/.life"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver:  DriverSQLite,
			DataDir: defaultDataDir,
		},
		Engine: EngineConfig{
			StreakLimit:     365,
			BulkConcurrency: 8,
			PersistTimeout:  10 * time.Second,
		},
		Notifications: NotificationConfig{
			Enabled: true,
			Sound:   true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9464",
		},
		MCP: MCPConfig{
			Enabled: true,
		},
		Theme: DefaultThemeConfig(),
	}
}

// Load loads the configuration from the default config file.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from configPath, creating it with
// defaults when missing.
func LoadFrom(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	v := newViper(configPath)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := SaveTo(configPath, DefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the %s driver", DriverPostgres)
		}
	default:
		return fmt.Errorf("unknown storage.driver %q: must be %s or %s", c.Storage.Driver, DriverSQLite, DriverPostgres)
	}
	if c.Engine.StreakLimit < 1 {
		return fmt.Errorf("engine.streak_limit must be positive, got %d", c.Engine.StreakLimit)
	}
	if c.Engine.BulkConcurrency < 1 {
		return fmt.Errorf("engine.bulk_concurrency must be positive, got %d", c.Engine.BulkConcurrency)
	}
	if _, err := c.Calendar.Location(); err != nil {
		return err
	}
	return nil
}

func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = defaultDataDir
	}
	c.Storage.DataDir = expandHome(c.Storage.DataDir, homeDir)
	if c.Log.File == "" {
		c.Log.File = filepath.Join(c.Storage.DataDir, "life.log")
	}
	c.Log.File = expandHome(c.Log.File, homeDir)
	return nil
}

func expandHome(path, homeDir string) string {
	if path == "~" {
		return homeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

// Save saves the configuration to the default config file.
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return SaveTo(configPath, cfg)
}

// SaveTo writes cfg to configPath.
func SaveTo(configPath string, cfg *Config) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := newViper(configPath)

	v.Set("storage.driver", cfg.Storage.Driver)
	v.Set("storage.data_dir", cfg.Storage.DataDir)
	v.Set("storage.dsn", cfg.Storage.DSN)
	v.Set("calendar.timezone", cfg.Calendar.Timezone)
	v.Set("engine.streak_limit", cfg.Engine.StreakLimit)
	v.Set("engine.bulk_concurrency", cfg.Engine.BulkConcurrency)
	v.Set("engine.persist_timeout", cfg.Engine.PersistTimeout.String())
	v.Set("notifications.enabled", cfg.Notifications.Enabled)
	v.Set("notifications.sound", cfg.Notifications.Sound)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("log.file", cfg.Log.File)
	v.Set("metrics.enabled", cfg.Metrics.Enabled)
	v.Set("metrics.addr", cfg.Metrics.Addr)
	v.Set("mcp.enabled", cfg.MCP.Enabled)
	v.Set("theme.color_done", cfg.Theme.ColorDone)
	v.Set("theme.color_pending", cfg.Theme.ColorPending)
	v.Set("theme.color_missed", cfg.Theme.ColorMissed)
	v.Set("theme.color_title", cfg.Theme.ColorTitle)
	v.Set("theme.color_help", cfg.Theme.ColorHelp)
	v.Set("theme.color_error", cfg.Theme.ColorError)
	v.Set("theme.icon_done", cfg.Theme.IconDone)
	v.Set("theme.icon_pending", cfg.Theme.IconPending)
	v.Set("theme.icon_missed", cfg.Theme.IconMissed)

	return v.WriteConfigAs(configPath)
}

// SetValue updates a single dotted key in the config file at configPath.
// Unknown keys are rejected.
func SetValue(configPath, key, value string) error {
	if _, err := LoadFrom(configPath); err != nil {
		return err
	}

	v := newViper(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if !v.IsSet(key) {
		return fmt.Errorf("unknown config key %q", key)
	}
	v.Set(key, value)

	var check Config
	if err := v.Unmarshal(&check); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return v.WriteConfigAs(configPath)
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".life", "config.toml"), nil
}

// GetDBPath returns the path to the SQLite database file.
func GetDBPath(cfg *Config) string {
	return filepath.Join(cfg.Storage.DataDir, "life.db")
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	v.SetEnvPrefix("LIFE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// setDefaults sets default values for viper.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.data_dir", d.Storage.DataDir)
	v.SetDefault("storage.dsn", "")
	v.SetDefault("calendar.timezone", "")
	v.SetDefault("engine.streak_limit", d.Engine.StreakLimit)
	v.SetDefault("engine.bulk_concurrency", d.Engine.BulkConcurrency)
	v.SetDefault("engine.persist_timeout", d.Engine.PersistTimeout.String())
	v.SetDefault("notifications.enabled", d.Notifications.Enabled)
	v.SetDefault("notifications.sound", d.Notifications.Sound)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", "")
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
	v.SetDefault("mcp.enabled", d.MCP.Enabled)

	// Theme defaults
	v.SetDefault("theme.color_done", d.Theme.ColorDone)
	v.SetDefault("theme.color_pending", d.Theme.ColorPending)
	v.SetDefault("theme.color_missed", d.Theme.ColorMissed)
	v.SetDefault("theme.color_title", d.Theme.ColorTitle)
	v.SetDefault("theme.color_help", d.Theme.ColorHelp)
	v.SetDefault("theme.color_error", d.Theme.ColorError)
	v.SetDefault("theme.icon_done", d.Theme.IconDone)
	v.SetDefault("theme.icon_pending", d.Theme.IconPending)
	v.SetDefault("theme.icon_missed", d.Theme.IconMissed)
}
