// Package config provides YAML-based configuration loading for Taproom.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Taproom configuration, loaded from config.yaml.
type Config struct {
	Venue    string         `yaml:"venue"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	POS      POSConfig      `yaml:"pos"`
	Audio    AudioConfig    `yaml:"audio"`
	Provider ProviderConfig `yaml:"provider"`
	Digest   DigestConfig   `yaml:"digest"`
}

// ServerConfig holds HTTP/WebSocket server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
	// SessionIdleTimeoutSec closes voice sessions with no activity for
	// this long. Negative disables the sweep.
	SessionIdleTimeoutSec int `yaml:"session_idle_timeout_sec"`
}

// DatabaseConfig holds store connection settings. Driver is "sqlite" or
// "mysql"; Path applies to sqlite, the remaining fields to mysql.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// POSConfig holds point-of-sale business settings.
type POSConfig struct {
	// TaxRate is the sales tax applied to order subtotals (e.g. 0.08).
	TaxRate float64 `yaml:"tax_rate"`
	// LowStockThreshold marks products below this on-hand quantity as low.
	LowStockThreshold float64 `yaml:"low_stock_threshold"`
	// DefaultBottleOz is the container size assumed for fluid-ounce
	// ingredients whose product has no configured unit volume.
	DefaultBottleOz float64 `yaml:"default_bottle_oz"`
}

// AudioConfig holds PCM capture/playback settings.
type AudioConfig struct {
	// SampleRate is the target rate audio is resampled to before being
	// forwarded to the speech provider.
	SampleRate int `yaml:"sample_rate"`
	// FrameSamples is the capture flush size in samples per channel.
	FrameSamples int `yaml:"frame_samples"`
}

// ProviderConfig holds speech provider connection settings.
type ProviderConfig struct {
	URL       string `yaml:"url"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	// ReconnectDelaySec is the fixed delay between reconnect attempts.
	ReconnectDelaySec int `yaml:"reconnect_delay_sec"`
}

// DigestConfig holds scheduled report settings.
type DigestConfig struct {
	LowStock LowStockDigestConfig `yaml:"low_stock"`
}

// LowStockDigestConfig enables a cron-scheduled low stock report.
type LowStockDigestConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a Config with all defaults applied and no file loaded.
func Default() *Config {
	cfg := &Config{Venue: "taproom"}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.SessionIdleTimeoutSec == 0 {
		c.Server.SessionIdleTimeoutSec = 1800
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = "taproom.db"
	}
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.User == "" {
		c.Database.User = "root"
	}
	if c.Database.Database == "" && c.Venue != "" {
		c.Database.Database = "taproom_" + c.Venue
	}
	if c.POS.TaxRate == 0 {
		c.POS.TaxRate = 0.08
	}
	if c.POS.LowStockThreshold == 0 {
		c.POS.LowStockThreshold = 10
	}
	if c.POS.DefaultBottleOz == 0 {
		c.POS.DefaultBottleOz = 25.36 // standard 750 ml bottle
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 24000
	}
	if c.Audio.FrameSamples == 0 {
		c.Audio.FrameSamples = 4096
	}
	if c.Provider.APIKeyEnv == "" {
		c.Provider.APIKeyEnv = "TAPROOM_PROVIDER_API_KEY"
	}
	if c.Provider.ReconnectDelaySec == 0 {
		c.Provider.ReconnectDelaySec = 3
	}
	if c.Digest.LowStock.Cron == "" {
		c.Digest.LowStock.Cron = "0 7 * * *"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Venue == "" {
		errs = append(errs, "venue is required")
	}
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not one of sqlite, mysql", c.Database.Driver))
	}
	if c.POS.TaxRate < 0 || c.POS.TaxRate >= 1 {
		errs = append(errs, "pos.tax_rate must be in [0, 1)")
	}
	if c.Audio.SampleRate < 8000 {
		errs = append(errs, "audio.sample_rate must be at least 8000")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
