package infrastructure

import (
	"fmt"

	"go.uber.org/zap"

	"fuser-service/internal/config"
	redisclient "fuser-service/pkg/redis"
)

// NewRedisClient creates a Redis client from configuration. Returns nil when
// Redis is disabled; the caching layer is skipped in that case.
func NewRedisClient(cfg *config.Config, l *zap.Logger) (*redisclient.Client, error) {
	if !cfg.Redis.Enabled {
		l.Info("Redis disabled, caching and rate limiting run without it")
		return nil, nil
	}

	rdb, err := redisclient.NewClient(redisclient.Config{
		Addr:        cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxRetries:  cfg.Redis.MaxRetries,
		PoolSize:    cfg.Redis.PoolSize,
		MinIdleConn: cfg.Redis.MinIdleConn,
	}, l)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return rdb, nil
}
