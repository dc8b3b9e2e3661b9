package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/webforge-app/webforge-backend/config"
	"github.com/webforge-app/webforge-backend/internal/content/repository"
)

// OpenStore connects the configured document store. Postgres schemas are
// migrated before the store is returned. The caller owns Close.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pool, err := OpenDB(ctx, DBOptions{
			DSN:      cfg.Database.PostgresDSN(),
			MaxConns: int32(cfg.Database.MaxConns),
			MinConns: int32(cfg.Database.MinConns),
		})
		if err != nil {
			return nil, err
		}
		store := repository.OpenPostgresStore(pool)
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		logger.Info("store connected", zap.String("driver", cfg.Store.Driver))
		return store, nil

	case config.StoreDriverRedis:
		client, err := OpenRedis(ctx, RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("store connected", zap.String("driver", cfg.Store.Driver), zap.String("addr", cfg.Redis.Addr))
		return repository.NewRedisStore(client), nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}
