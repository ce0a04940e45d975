package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "fuser-service/internal/domain/user"
)

// UserCache defines the interface for user caching operations.
type UserCache interface {
	// Get retrieves a user from cache by ID.
	// Returns nil if the user is not cached.
	Get(ctx context.Context, id int64) (*domain.User, error)

	// Set stores a user in cache with the configured TTL.
	Set(ctx context.Context, user *domain.User) error

	// Delete removes a user from cache by ID.
	Delete(ctx context.Context, id int64) error
}

// RedisUserCache implements UserCache using Redis as the backing store.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisUserCache creates a new Redis-backed user cache.
func NewRedisUserCache(client *redis.Client, ttl time.Duration, log *zap.Logger) UserCache {
	return &RedisUserCache{client: client, ttl: ttl, log: log}
}

func (c *RedisUserCache) cacheKey(id int64) string {
	return fmt.Sprintf("fuser:user:%d", id)
}

// Get retrieves a user from Redis cache.
func (c *RedisUserCache) Get(ctx context.Context, id int64) (*domain.User, error) {
	data, err := c.client.Get(ctx, c.cacheKey(id)).Bytes()
	if err == redis.Nil {
		// Cache miss - not an error
		c.log.Debug("cache miss", zap.Int64("user_id", id))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}

	var u domain.User
	if err := json.Unmarshal(data, &u); err != nil {
		c.log.Error("failed to unmarshal cached user", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}

	c.log.Debug("cache hit", zap.Int64("user_id", id))
	return &u, nil
}

// Set stores a user in Redis cache with TTL.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User) error {
	if user == nil {
		return fmt.Errorf("cannot cache nil user")
	}

	data, err := json.Marshal(user)
	if err != nil {
		c.log.Error("failed to marshal user for cache", zap.Int64("user_id", user.ID), zap.Error(err))
		return err
	}

	if err := c.client.Set(ctx, c.cacheKey(user.ID), data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set cache", zap.Int64("user_id", user.ID), zap.Error(err))
		return err
	}

	c.log.Debug("cached user", zap.Int64("user_id", user.ID), zap.Duration("ttl", c.ttl))
	return nil
}

// Delete removes a user from Redis cache.
func (c *RedisUserCache) Delete(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, c.cacheKey(id)).Err(); err != nil {
		c.log.Error("failed to delete from cache", zap.Int64("user_id", id), zap.Error(err))
		return err
	}

	c.log.Debug("deleted from cache", zap.Int64("user_id", id))
	return nil
}
