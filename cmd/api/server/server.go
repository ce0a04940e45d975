package server

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fuser-service/cmd/api/di"
	"fuser-service/internal/adapter/gin/router"
	"fuser-service/internal/config"
)

// Server holds the HTTP server and its dependencies.
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	HTTP   *http.Server
}

// New creates the HTTP server with the router wired to the container's
// handler, usecase and middleware dependencies.
func New(cfg *config.Config, l *zap.Logger, c *di.Container) *Server {
	engine := router.SetupRouter(c.GinHandler, c.UserUC, redisOrNil(c), c.RateLimit, l)

	addr := ":" + cfg.App.HTTPPort
	l.Info("HTTP API configured", zap.String("address", addr))

	return &Server{
		Config: cfg,
		Logger: l,
		HTTP: &http.Server{
			Addr:              addr,
			Handler:           engine,
			ReadHeaderTimeout: 2 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.Logger.Info("HTTP server running", zap.String("address", s.HTTP.Addr))
	if err := s.HTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func redisOrNil(c *di.Container) *redis.Client {
	if c.RedisClient == nil {
		return nil
	}
	return c.RedisClient.Client
}
