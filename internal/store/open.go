package store

import (
	"context"
	"fmt"

	"github.com/nakachan-ing/daytask/internal/logger"
	"github.com/nakachan-ing/daytask/internal/model"
	"github.com/redis/go-redis/v9"
)

// Open builds the backend named by config.Storage.Backend. The returned
// close func releases any connection the backend holds.
func Open(ctx context.Context, config model.Config, log *logger.Logger) (Store, func() error, error) {
	switch config.Storage.Backend {
	case "", "file":
		s, err := NewFileStore(config.DataDir)
		if err != nil {
			return nil, nil, err
		}
		log.Debugw("using file store", "dir", config.DataDir)
		return s, func() error { return nil }, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     config.Storage.Redis.Addr,
			Password: config.Storage.Redis.Password,
			DB:       config.Storage.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", config.Storage.Redis.Addr, err)
		}
		log.Debugw("using redis store", "addr", config.Storage.Redis.Addr, "prefix", config.Storage.Redis.Prefix)
		s := NewRedisStore(client, config.Storage.Redis.Prefix)
		return s, s.Close, nil

	case "memory":
		return NewMemoryStore(), func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", config.Storage.Backend)
	}
}
