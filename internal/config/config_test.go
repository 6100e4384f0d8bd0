package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
acs:
  url: http://acs.example.net:7557
  username: admin
  rate_limit: 60

redis:
  url: redis://localhost:6379/0

monitor:
  startup_delay: 1m
  signal_scan:
    enabled: true
    interval: 15m
    threshold_dbm: -25
  liveness_scan:
    enabled: false
    interval: 2h
    threshold_hours: 48
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.ACS.URL != "http://acs.example.net:7557" || cfg.ACS.Username != "admin" {
		t.Errorf("ACS config = %+v", cfg.ACS)
	}
	if cfg.ACS.RateLimit != 60 {
		t.Errorf("rate limit = %d, want 60", cfg.ACS.RateLimit)
	}
	// Defaults survive for fields the file doesn't set.
	if cfg.ACS.Timeout != 30*time.Second {
		t.Errorf("timeout = %s, want default 30s", cfg.ACS.Timeout)
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Errorf("redis url = %q", cfg.Redis.URL)
	}
	if cfg.Monitor.SignalScan.Interval != 15*time.Minute || cfg.Monitor.SignalScan.ThresholdDBm != -25 {
		t.Errorf("signal scan = %+v", cfg.Monitor.SignalScan)
	}
	if cfg.Monitor.LivenessScan.Enabled {
		t.Error("liveness scan should be disabled")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := writeConfig(t, "acs: [not: valid")
	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("validation should require acs.url")
	}

	cfg.ACS.URL = "http://acs.example.net:7557"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	cfg.Monitor.SignalScan.Interval = 0
	if err := cfg.Validate(); err == nil {
		t.Error("validation should reject an enabled scan with no interval")
	}

	// Disabling the scan makes the zero interval acceptable.
	cfg.Monitor.SignalScan.Enabled = false
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate with scan disabled: %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("CPEMGR_ACS_URL", "http://override:7557")
	t.Setenv("CPEMGR_REDIS_URL", "redis://override:6379")
	t.Setenv("CPEMGR_NOTIFY_WEBHOOK_URL", "")

	cfg := DefaultConfig()
	cfg.ACS.URL = "http://from-file:7557"
	cfg.Notify.WebhookURL = "https://from-file/hook"
	cfg.ApplyEnvOverrides()

	if cfg.ACS.URL != "http://override:7557" {
		t.Errorf("acs url = %q, want env override", cfg.ACS.URL)
	}
	if cfg.Redis.URL != "redis://override:6379" {
		t.Errorf("redis url = %q, want env override", cfg.Redis.URL)
	}
	// Empty environment values never clobber file values.
	if cfg.Notify.WebhookURL != "https://from-file/hook" {
		t.Errorf("webhook url = %q, want file value preserved", cfg.Notify.WebhookURL)
	}
}
