package storage

import (
	"fmt"

	"github.com/erp/pos/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewStoreFromConfig creates the key-value store selected by
// configuration
func NewStoreFromConfig(cfg *config.Config, logger *zap.Logger) (KeyValueStore, error) {
	switch cfg.Storage.Backend {
	case "memory":
		logger.Info("Using in-memory key-value store (state will not survive restarts)")
		return NewInMemoryStore(), nil

	case "file":
		store, err := NewFileStore(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("Using file-backed key-value store",
			zap.String("path", cfg.Storage.Path))
		return store, nil

	case "redis":
		store, err := NewRedisStore(RedisConfig{
			Addr:      cfg.Redis.Addr(),
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("Using Redis key-value store",
			zap.String("addr", cfg.Redis.Addr()),
			zap.String("key_prefix", cfg.Redis.KeyPrefix))
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
}
