package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const connectTimeout = 5 * time.Second

// Config holds Redis connection configuration.
type Config struct {
	Addr        string
	Password    string
	DB          int
	MaxRetries  int
	PoolSize    int
	MinIdleConn int
}

// Client wraps redis.Client with connection lifecycle logging.
type Client struct {
	*redis.Client
	log *zap.Logger
}

// NewClient builds a Redis client from cfg and verifies connectivity with a
// ping before returning it.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConn,
		DialTimeout:  connectTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}

	log.Info("Redis connected",
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB),
		zap.Int("pool_size", cfg.PoolSize),
	)

	return &Client{Client: rdb, log: log}, nil
}

// Close gracefully closes the Redis connection.
func (c *Client) Close() error {
	c.log.Info("closing Redis connection")
	return c.Client.Close()
}
