// package storage implements the persisted key-value store that backs the
// auth token, the current-user snapshot and the jobs snapshot.
package storage

import (
	"context"
	"fmt"

	"github.com/Sidd1721986/Elite-App/internal/shared"
	"github.com/charmbracelet/log"
)

// Fixed keys used by the client.
const (
	KeyAuthToken    = "@auth_token"
	KeyCurrentUser  = "@current_user"
	KeyJobsSnapshot = "@jobs_cache"
)

// Store is an asynchronous string key-value store.
//
// GetItem reports ok=false when the key is absent; that is not an error.
type Store interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	Close() error
}

// Open builds the [Store] selected by the storage driver in cfg.
func Open(ctx context.Context, cfg shared.StorageConfig, logger *log.Logger) (Store, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	switch cfg.Driver {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite", "":
		path := cfg.Path
		if path == "" {
			path = ":memory:"
		}
		db, err := shared.NewDatabase(path)
		if err != nil {
			return nil, err
		}
		shared.ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)
		s, err := NewSQLiteStore(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		logger.Debug("opened sqlite store", "path", path)
		return s, nil
	case "redis":
		s, err := NewRedisStore(ctx, cfg.RedisURL, cfg.KeyPrefix)
		if err != nil {
			return nil, err
		}
		logger.Debug("opened redis store", "prefix", cfg.KeyPrefix)
		return s, nil
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", shared.ErrInvalidConfig, cfg.Driver)
	}
}
