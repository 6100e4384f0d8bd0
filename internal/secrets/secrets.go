// Package secrets resolves operational credentials (the ACS password, the
// notifier token) from an environment or 1Password Connect backend.
package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Store resolves a named secret. A missing secret returns an empty string
// without error so optional credentials stay optional.
type Store interface {
	Get(ctx context.Context, name string) (string, error)
}

// Secret names used by the engine.
const (
	NameACSPassword = "acs-password"
	NameNotifyToken = "notify-token"
)

// Config holds configuration for the secrets backend.
type Config struct {
	// Backend specifies which backend to use: "1password", "env", or "auto".
	// "auto" (default) uses 1Password if configured, otherwise environment.
	Backend string

	// 1Password Connect configuration.
	OnePasswordHost  string // OP_CONNECT_HOST
	OnePasswordToken string // OP_CONNECT_TOKEN
	OnePasswordVault string // OP_VAULT_ID
}

// ConfigFromEnv creates a Config from environment variables.
func ConfigFromEnv() Config {
	backend := os.Getenv("CPEMGR_SECRETS_BACKEND")
	if backend == "" {
		backend = "auto"
	}
	return Config{
		Backend:          backend,
		OnePasswordHost:  os.Getenv("OP_CONNECT_HOST"),
		OnePasswordToken: os.Getenv("OP_CONNECT_TOKEN"),
		OnePasswordVault: os.Getenv("OP_VAULT_ID"),
	}
}

// NewStore creates a secret store based on configuration.
func NewStore(cfg Config, logger *slog.Logger) (Store, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = "auto"
	}

	switch backend {
	case "1password":
		if cfg.OnePasswordHost == "" || cfg.OnePasswordToken == "" || cfg.OnePasswordVault == "" {
			return nil, fmt.Errorf("1Password backend requested but OP_CONNECT_HOST, OP_CONNECT_TOKEN or OP_VAULT_ID not set")
		}
		return NewOnePasswordStore(cfg, logger), nil
	case "env":
		return &EnvStore{}, nil
	case "auto":
		if cfg.OnePasswordHost != "" && cfg.OnePasswordToken != "" && cfg.OnePasswordVault != "" {
			logger.Info("using 1Password secrets backend")
			return NewOnePasswordStore(cfg, logger), nil
		}
		return &EnvStore{}, nil
	default:
		return nil, fmt.Errorf("unknown secrets backend: %s", backend)
	}
}

// EnvStore reads secrets from CPEMGR_SECRET_* environment variables, e.g.
// "acs-password" resolves from CPEMGR_SECRET_ACS_PASSWORD.
type EnvStore struct{}

// Get reads the secret's environment variable.
func (e *EnvStore) Get(_ context.Context, name string) (string, error) {
	key := "CPEMGR_SECRET_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	return os.Getenv(key), nil
}
