package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"tradehook/internal/domain"
)

// Registry is the immutable tenant table, built once before the server
// accepts traffic. Lookups are pure, so concurrent handlers need no locking.
type Registry struct {
	tenants map[string]*domain.TenantConfig
}

// Load reads the tenants file (a JSON object keyed by tenant id) and
// validates every entry. Entries without exchange credentials are rejected
// outright; a missing Telegram token or chat id is allowed and surfaces
// later as a notification config error.
func Load(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tenants file: %w", err)
	}

	var entries map[string]domain.TenantConfig
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse tenants file %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("tenants file %s contains no tenants", path)
	}

	tenants := make(map[string]*domain.TenantConfig, len(entries))
	for id, cfg := range entries {
		if id == "" {
			return nil, fmt.Errorf("tenants file %s contains an empty tenant id", path)
		}
		if cfg.BinanceAPIKey == "" || cfg.BinanceSecretKey == "" {
			return nil, fmt.Errorf("tenant %s is missing Binance credentials", id)
		}
		cfg.ID = id
		entry := cfg
		tenants[id] = &entry
	}

	return &Registry{tenants: tenants}, nil
}

// New builds a registry from already-validated configs. Used by tests and by
// callers that source tenants from somewhere other than a file.
func New(configs ...domain.TenantConfig) *Registry {
	tenants := make(map[string]*domain.TenantConfig, len(configs))
	for _, cfg := range configs {
		entry := cfg
		tenants[cfg.ID] = &entry
	}
	return &Registry{tenants: tenants}
}

// Resolve returns the tenant config for id, or domain.ErrTenantNotFound.
func (r *Registry) Resolve(id string) (*domain.TenantConfig, error) {
	tenant, ok := r.tenants[id]
	if !ok {
		return nil, fmt.Errorf("tenant %q: %w", id, domain.ErrTenantNotFound)
	}
	return tenant, nil
}

func (r *Registry) Len() int {
	return len(r.tenants)
}
