package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"fuser-service/cmd/api/di"
	"fuser-service/cmd/api/server"
	"fuser-service/internal/config"
	"fuser-service/pkg/logger"
)

// App represents the application
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Server    *server.Server
	Container *di.Container
}

// New creates a new application instance
func New() (*App, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := initLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	container, err := di.NewContainer(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	return &App{
		Config:    cfg,
		Logger:    l,
		Server:    server.New(cfg, l, container),
		Container: container,
	}, nil
}

// Run starts the application and blocks until ctx is canceled or the server
// fails.
func (a *App) Run(ctx context.Context) error {
	a.Logger.Info("starting application",
		zap.String("service", a.Config.Logger.ServiceName),
		zap.String("version", a.Config.Logger.ServiceVersion),
		zap.String("environment", getEnvironment()),
	)

	errChan := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				errChan <- fmt.Errorf("server panic: %v", r)
			}
		}()
		if err := a.Server.Start(); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.Logger.Info("shutting down application...")
		return a.shutdown()
	case err := <-errChan:
		return err
	}
}

// shutdown gracefully shuts down the application
func (a *App) shutdown() error {
	timeout := time.Duration(a.Config.App.ShutdownTimeoutSeconds) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error

	if a.Server.HTTP != nil {
		if err := a.Server.HTTP.Shutdown(shutdownCtx); err != nil {
			a.Logger.Error("failed to shutdown HTTP server", zap.Error(err))
			errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
		}
	}

	if a.Container != nil {
		if err := a.Container.Close(); err != nil {
			a.Logger.Error("failed to close container", zap.Error(err))
			errs = append(errs, fmt.Errorf("container close: %w", err))
		}
	}

	// Sync errors on stdout/stderr are expected and harmless
	_ = a.Logger.Sync()

	a.Logger.Info("application shutdown complete")

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// initLogger initializes the application logger
func initLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.NewWithConfig(logger.Config{
		Level:          cfg.Logger.Level,
		Format:         cfg.Logger.Format,
		OutputPath:     cfg.Logger.OutputPath,
		EnableSampling: cfg.Logger.EnableSampling,
		ServiceName:    cfg.Logger.ServiceName,
		ServiceVersion: cfg.Logger.ServiceVersion,
		Environment:    getEnvironment(),
	})
}

// getConfigPath returns the configuration path
func getConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "."
}

// getEnvironment returns the application environment
func getEnvironment() string {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env
	}
	return "development"
}
