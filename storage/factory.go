package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kbukum/backend-template/logger"
)

// BackendFactory creates a Backend from core config and an optional
// provider-specific configuration. A nil providerCfg means the provider
// derives its settings from cfg.
type BackendFactory func(ctx context.Context, cfg Config, providerCfg any, log *logger.Logger) (Backend, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]BackendFactory)
)

// RegisterFactory makes a provider available to New. Provider packages
// call it from init, so importing the package is enough:
//
//	import _ "github.com/kbukum/backend-template/storage/s3"
func RegisterFactory(name string, f BackendFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// Providers lists the registered provider names.
func Providers() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates the Backend selected by cfg.Provider.
func New(ctx context.Context, cfg Config, providerCfg any, log *logger.Logger) (Backend, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factoriesMu.RLock()
	f, ok := factories[cfg.Provider]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported provider %q (not registered)", cfg.Provider)
	}

	l := log.WithComponent("storage")
	l.Info("initializing storage", logger.Fields("provider", cfg.Provider, "bucket", cfg.Bucket))
	return f(ctx, cfg, providerCfg, l)
}
