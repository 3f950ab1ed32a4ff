// Package endpoint owns the configured analysis backend URL: loading it
// from a Store, cleaning pasted tunnel logs and persisting every change.
package endpoint

import (
	"context"
	"fmt"
	"sync"

	"github.com/raysh454/codeprobe/internal/logging"
)

// DefaultEndpoint is used when nothing has been stored yet.
const DefaultEndpoint = "https://code-analyzer-1-ii0s.onrender.com/analyze"

// Manager is the connection manager. Reads of the current value are safe
// from concurrent handlers.
type Manager struct {
	store    Store
	fallback string
	logger   logging.Logger

	mu      sync.RWMutex
	current string
}

// NewManager returns a Manager over store. An empty fallback selects
// DefaultEndpoint.
func NewManager(store Store, fallback string, logger logging.Logger) *Manager {
	if fallback == "" {
		fallback = DefaultEndpoint
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Manager{
		store:    store,
		fallback: fallback,
		logger:   logger.With(logging.Field{Key: "component", Value: "endpoint"}),
	}
}

// Load returns the stored endpoint. When none is stored the fallback is
// returned and persisted as if the user had entered it.
func (m *Manager) Load(ctx context.Context) (string, error) {
	value, ok, err := m.store.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("load endpoint: %w", err)
	}

	if !ok {
		value = m.fallback
		if err := m.store.Set(ctx, value); err != nil {
			return "", fmt.Errorf("persist default endpoint: %w", err)
		}
		m.logger.Info("no stored endpoint, using default", logging.Field{Key: "endpoint", Value: value})
	}

	m.mu.Lock()
	m.current = value
	m.mu.Unlock()
	return value, nil
}

// Set stores raw, or the URL extracted from it when raw is a pasted tunnel
// log line. Malformed input is stored verbatim; it is validated at request
// time. The stored value is returned.
func (m *Manager) Set(ctx context.Context, raw string) (string, error) {
	value := raw
	if cleaned, isLog := ExtractTunnelURL(raw); isLog {
		value = cleaned
		m.logger.Debug("extracted url from tunnel log", logging.Field{Key: "endpoint", Value: value})
	}

	if err := m.store.Set(ctx, value); err != nil {
		return "", fmt.Errorf("persist endpoint: %w", err)
	}

	m.mu.Lock()
	m.current = value
	m.mu.Unlock()

	m.logger.Info("endpoint updated", logging.Field{Key: "endpoint", Value: value})
	return value, nil
}

// Current returns the last loaded or set value.
func (m *Manager) Current() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Default returns the fallback endpoint.
func (m *Manager) Default() string { return m.fallback }

// Origin returns DeriveOrigin of the current value.
func (m *Manager) Origin() string { return DeriveOrigin(m.Current()) }
