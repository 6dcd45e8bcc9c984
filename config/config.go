// Package config provides configuration for the trading desk.
//
// Configuration is read from a YAML or JSON file, then overlaid with
// environment variables (a .env file is honored when present, so feed
// credentials stay out of config files).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the complete desk configuration.
type Config struct {
	Desk    DeskConfig    `json:"desk" yaml:"desk"`
	Market  MarketConfig  `json:"market" yaml:"market"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// DeskConfig contains account and trading-limit parameters.
type DeskConfig struct {
	InitialBalance   float64 `json:"initial_balance" yaml:"initial_balance"`
	Spread           float64 `json:"spread" yaml:"spread"`
	MaxOrderSize     int     `json:"max_order_size" yaml:"max_order_size"`
	DailyTradeLimit  int     `json:"daily_trade_limit" yaml:"daily_trade_limit"`
	MaxTradeFraction float64 `json:"max_trade_fraction" yaml:"max_trade_fraction"`
}

// MarketConfig contains price oracle parameters.
type MarketConfig struct {
	APIKey          string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Plan            string `json:"plan" yaml:"plan"` // "eod" or "intraday"
	Retries         int    `json:"retries" yaml:"retries"`
	Backoff         string `json:"backoff" yaml:"backoff"` // e.g. "100ms"
	RefreshSchedule string `json:"refresh_schedule" yaml:"refresh_schedule"`
}

// ParseBackoff converts the backoff string to a time.Duration.
func (m MarketConfig) ParseBackoff() (time.Duration, error) {
	if m.Backoff == "" {
		return 0, nil
	}
	return time.ParseDuration(m.Backoff)
}

// StoreConfig contains persistence parameters.
type StoreConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
}

// JournalConfig contains audit trail parameters.
type JournalConfig struct {
	Type   string `json:"type" yaml:"type"` // "sqlite" or "csv"
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	File   string `json:"file,omitempty" yaml:"file,omitempty"`
}

// LogConfig contains logging parameters.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty"`
}

// LoadFromFile loads configuration from a file (YAML or JSON based on
// content), overlays environment variables, and validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Load returns the default configuration with environment overrides.
// Used when no config file is given.
func Load() (*Config, error) {
	cfg := Default()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyEnv overlays environment variables. A .env file in the working
// directory is loaded first when present.
func (c *Config) applyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		c.Market.APIKey = v
	}
	if v := os.Getenv("POLYGON_PLAN"); v != "" {
		c.Market.Plan = v
	}
	if v := os.Getenv("DESK_DB"); v != "" {
		c.Store.DBPath = v
	}
	if v := os.Getenv("DESK_MAX_TRADE_FRACTION"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Desk.MaxTradeFraction = f
		}
	}
	if v := os.Getenv("DESK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Desk.InitialBalance <= 0 {
		return fmt.Errorf("desk.initial_balance must be positive")
	}
	if c.Desk.Spread < 0 || c.Desk.Spread >= 1 {
		return fmt.Errorf("desk.spread must be in [0, 1)")
	}
	if c.Desk.MaxOrderSize <= 0 {
		return fmt.Errorf("desk.max_order_size must be positive")
	}
	if c.Desk.DailyTradeLimit <= 0 {
		return fmt.Errorf("desk.daily_trade_limit must be positive")
	}
	if c.Desk.MaxTradeFraction < 0 || c.Desk.MaxTradeFraction > 1 {
		return fmt.Errorf("desk.max_trade_fraction must be in [0, 1]")
	}
	if c.Market.Plan != "eod" && c.Market.Plan != "intraday" {
		return fmt.Errorf("market.plan must be 'eod' or 'intraday'")
	}
	if c.Market.Retries < 0 {
		return fmt.Errorf("market.retries must not be negative")
	}
	if _, err := c.Market.ParseBackoff(); err != nil {
		return fmt.Errorf("market.backoff: %w", err)
	}
	if c.Store.DBPath == "" {
		return fmt.Errorf("store.db_path is required")
	}
	switch c.Journal.Type {
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for sqlite type")
		}
	case "csv":
		if c.Journal.File == "" {
			return fmt.Errorf("journal.file required for csv type")
		}
	default:
		return fmt.Errorf("journal.type must be 'sqlite' or 'csv'")
	}
	return nil
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Desk: DeskConfig{
			InitialBalance:   10_000,
			Spread:           0.002,
			MaxOrderSize:     1000,
			DailyTradeLimit:  20,
			MaxTradeFraction: 0.3,
		},
		Market: MarketConfig{
			Plan:            "eod",
			Retries:         2,
			Backoff:         "100ms",
			RefreshSchedule: "5 0 * * *",
		},
		Store: StoreConfig{
			DBPath: "./desk.db",
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./logs.db",
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}
