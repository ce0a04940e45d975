package di

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"fuser-service/cmd/api/infrastructure"
	"fuser-service/internal/adapter/cache"
	"fuser-service/internal/adapter/db/postgres"
	ginhandler "fuser-service/internal/adapter/gin/handler"
	"fuser-service/internal/adapter/gin/middleware"
	"fuser-service/internal/adapter/repository/cached"
	"fuser-service/internal/config"
	"fuser-service/internal/usecase/user"
	redisclient "fuser-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	UserUC      user.Usecase
	RateLimit   middleware.RateLimiterConfig
	GinHandler  *ginhandler.UserHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := infrastructure.NewRedisClient(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	// Repository, optionally wrapped in the caching decorator
	var repo user.Repository = postgres.NewUserRepoPG(db, l)
	if rdb != nil {
		userCache := cache.NewRedisUserCache(
			rdb.Client,
			time.Duration(cfg.Redis.CacheTTL)*time.Second,
			l,
		)
		repo = cached.NewUserRepository(repo, userCache, l)
	}

	userUC := user.New(repo, l)

	return &Container{
		Config:      cfg,
		Logger:      l,
		DB:          db,
		RedisClient: rdb,
		UserUC:      userUC,
		RateLimit: middleware.RateLimiterConfig{
			Enabled:           cfg.RateLimit.Enabled,
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstCapacity:     cfg.RateLimit.BurstCapacity,
		},
		GinHandler: ginhandler.NewUserHandler(userUC, l),
	}, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
