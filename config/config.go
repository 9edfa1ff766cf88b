// Package config loads the server configuration from a TOML file,
// creating one with defaults on first run.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Tracking TrackingConfig `toml:"tracking"`
}

type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type TrackingConfig struct {
	// Timezone is the fallback IANA zone for employees without one.
	Timezone string `toml:"timezone"`
	// CutoffHour/CutoffMinute mark the local time after which an
	// open day is closed automatically.
	CutoffHour   int `toml:"cutoff_hour"`
	CutoffMinute int `toml:"cutoff_minute"`
	// MinReasonLength is enforced on correction reasons.
	MinReasonLength int `toml:"min_reason_length"`
	// SweepIntervalMinutes is how often the auto-complete sweep runs.
	SweepIntervalMinutes int `toml:"sweep_interval_minutes"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Path: "./data/attendance.db",
		},
		Tracking: TrackingConfig{
			Timezone:             "UTC",
			CutoffHour:           23,
			CutoffMinute:         59,
			MinReasonLength:      5,
			SweepIntervalMinutes: 15,
		},
	}
}

// Load reads the config file at path. If the file doesn't exist it is
// created with defaults, so a fresh install starts with a readable,
// editable config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as TOML.
func Save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Tracking.CutoffHour < 0 || c.Tracking.CutoffHour > 23 {
		return fmt.Errorf("invalid cutoff hour: %d", c.Tracking.CutoffHour)
	}
	if c.Tracking.CutoffMinute < 0 || c.Tracking.CutoffMinute > 59 {
		return fmt.Errorf("invalid cutoff minute: %d", c.Tracking.CutoffMinute)
	}
	if _, err := time.LoadLocation(c.Tracking.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Tracking.Timezone, err)
	}
	return nil
}

// SweepInterval returns the sweep interval as a duration, with a
// floor of one minute.
func (c *Config) SweepInterval() time.Duration {
	minutes := c.Tracking.SweepIntervalMinutes
	if minutes < 1 {
		minutes = 1
	}
	return time.Duration(minutes) * time.Minute
}
