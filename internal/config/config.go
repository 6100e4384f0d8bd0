// Package config handles engine configuration loading and validation.
//
// # Configuration Sources
//
// Configuration is loaded from (in order of precedence):
// 1. Command-line flags
// 2. Environment variables (CPEMGR_*)
// 3. Config file (YAML)
// 4. Defaults
//
// # Example Config File
//
//	acs:
//	  url: http://acs.example.net:7557
//	  username: admin
//	  rate_limit: 120
//
//	redis:
//	  url: redis://localhost:6379/0
//
//	database:
//	  url: postgres://localhost:5432/subscribers?sslmode=disable
//
//	notify:
//	  webhook_url: https://hooks.example.net/fleet-alerts
//
//	monitor:
//	  startup_delay: 5m
//	  signal_scan:
//	    enabled: true
//	    interval: 30m
//	    threshold_dbm: -27
//	  liveness_scan:
//	    enabled: true
//	    interval: 1h
//	    threshold_hours: 24
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete engine configuration. Credentials (the ACS password,
// the webhook token) are resolved through the secrets backend, not here.
type Config struct {
	ACS      ACSConfig      `yaml:"acs"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
	Notify   NotifyConfig   `yaml:"notify"`
	Monitor  MonitorConfig  `yaml:"monitor"`
}

// ACSConfig defines how to reach the ACS API.
type ACSConfig struct {
	URL       string        `yaml:"url"`
	Username  string        `yaml:"username,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	RateLimit int           `yaml:"rate_limit,omitempty"` // requests per minute
}

// RedisConfig defines the optional device read cache.
type RedisConfig struct {
	URL string `yaml:"url,omitempty"` // empty disables caching
}

// DatabaseConfig defines the optional subscriber database.
type DatabaseConfig struct {
	URL string `yaml:"url,omitempty"` // empty disables subscriber lookup
}

// NotifyConfig defines the alert webhook.
type NotifyConfig struct {
	WebhookURL string `yaml:"webhook_url,omitempty"` // empty falls back to log-only
}

// MonitorConfig defines the fleet scan schedule and thresholds.
type MonitorConfig struct {
	StartupDelay time.Duration  `yaml:"startup_delay"`
	SignalScan   SignalConfig   `yaml:"signal_scan"`
	LivenessScan LivenessConfig `yaml:"liveness_scan"`
}

// SignalConfig configures the optical signal scan.
type SignalConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Interval     time.Duration `yaml:"interval"`
	ThresholdDBm float64       `yaml:"threshold_dbm"`
}

// LivenessConfig configures the liveness scan.
type LivenessConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Interval       time.Duration `yaml:"interval"`
	ThresholdHours float64       `yaml:"threshold_hours"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ACS: ACSConfig{
			Timeout:   30 * time.Second,
			RateLimit: 120,
		},
		Monitor: MonitorConfig{
			StartupDelay: 5 * time.Minute,
			SignalScan: SignalConfig{
				Enabled:      true,
				Interval:     30 * time.Minute,
				ThresholdDBm: -27,
			},
			LivenessScan: LivenessConfig{
				Enabled:        true,
				Interval:       time.Hour,
				ThresholdHours: 24,
			},
		},
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.ACS.URL == "" {
		return fmt.Errorf("acs.url is required")
	}
	if c.Monitor.SignalScan.Enabled && c.Monitor.SignalScan.Interval <= 0 {
		return fmt.Errorf("monitor.signal_scan.interval must be positive")
	}
	if c.Monitor.LivenessScan.Enabled && c.Monitor.LivenessScan.Interval <= 0 {
		return fmt.Errorf("monitor.liveness_scan.interval must be positive")
	}
	return nil
}

// ApplyEnvOverrides applies environment variable overrides:
// - CPEMGR_ACS_URL
// - CPEMGR_ACS_USERNAME
// - CPEMGR_REDIS_URL
// - CPEMGR_DATABASE_URL
// - CPEMGR_NOTIFY_WEBHOOK_URL
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CPEMGR_ACS_URL"); v != "" {
		c.ACS.URL = v
	}
	if v := os.Getenv("CPEMGR_ACS_USERNAME"); v != "" {
		c.ACS.Username = v
	}
	if v := os.Getenv("CPEMGR_REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := os.Getenv("CPEMGR_DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("CPEMGR_NOTIFY_WEBHOOK_URL"); v != "" {
		c.Notify.WebhookURL = v
	}
}
