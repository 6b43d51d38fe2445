// Package kvstore persists small JSON documents (session, synced user, profile cache)
// across process restarts.
package kvstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gearhead/pkg/config"
)

// Store is a durable key-value store. Get returns nil, nil when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

const (
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Open returns the store selected by cfg.StoreDriver.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case DriverSQLite, "":
		if err := os.MkdirAll(filepath.Dir(cfg.StorePath), 0o700); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
		return OpenSQLite(cfg.StorePath)
	case DriverRedis:
		return OpenRedis(cfg.RedisURL)
	case DriverPostgres:
		return OpenPostgres(cfg.PostgresDSN)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
