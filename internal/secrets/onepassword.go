package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/1Password/connect-sdk-go/connect"
)

// OnePasswordStore resolves secrets from a 1Password Connect vault. Items are
// matched by title; the "password" (or "credential") field holds the value.
type OnePasswordStore struct {
	client  connect.Client
	vaultID string
	logger  *slog.Logger

	// Cache to avoid repeated API calls.
	mu    sync.RWMutex
	cache map[string]string
}

// NewOnePasswordStore creates a 1Password-backed secret store.
func NewOnePasswordStore(cfg Config, logger *slog.Logger) *OnePasswordStore {
	return &OnePasswordStore{
		client:  connect.NewClientWithUserAgent(cfg.OnePasswordHost, cfg.OnePasswordToken, "cpemgr"),
		vaultID: cfg.OnePasswordVault,
		logger:  logger.With("component", "secrets"),
		cache:   make(map[string]string),
	}
}

// Get resolves a secret by item title. A missing item resolves to an empty
// string; transport failures are errors.
func (s *OnePasswordStore) Get(_ context.Context, name string) (string, error) {
	s.mu.RLock()
	if cached, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	items, err := s.client.GetItemsByTitle(name, s.vaultID)
	if err != nil {
		if isNotFoundError(err) {
			return "", nil
		}
		return "", fmt.Errorf("listing items: %w", err)
	}
	if len(items) == 0 {
		return "", nil
	}

	item, err := s.client.GetItem(items[0].ID, s.vaultID)
	if err != nil {
		return "", fmt.Errorf("fetching item %q: %w", name, err)
	}

	var value string
	for _, field := range item.Fields {
		label := strings.ToLower(field.Label)
		if label == "password" || label == "credential" {
			value = field.Value
			break
		}
	}
	if value == "" {
		return "", fmt.Errorf("item %q has no password field", name)
	}

	s.mu.Lock()
	s.cache[name] = value
	s.mu.Unlock()

	s.logger.Debug("secret resolved", "name", name)
	return value, nil
}

// isNotFoundError checks whether a Connect API error means "no such item".
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "404")
}
