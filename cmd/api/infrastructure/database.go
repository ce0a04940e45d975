package infrastructure

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"fuser-service/internal/adapter/db/postgres"
	"fuser-service/internal/config"
	"fuser-service/pkg/logger"
)

// NewDatabase creates the database connection with GORM configuration and
// ensures the users table exists.
func NewDatabase(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	gormLogger := logger.NewGormLogger(l, cfg.Logger.SlowQuerySeconds, cfg.Logger.Level)

	db, err := gorm.Open(pgdriver.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: gormLogger,
		// Unique violations must surface as gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&postgres.UserSchema{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.DB.ConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.DB.ConnMaxIdleTime) * time.Second)

	l.Info("database connected",
		zap.Int("max_open_conns", cfg.DB.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.DB.MaxIdleConns),
	)

	return db, nil
}

// CloseDatabase closes the database connection
func CloseDatabase(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
