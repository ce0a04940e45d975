package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	DB        DatabaseConfig
	App       AppConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Logger    LoggerConfig
}

// DatabaseConfig holds configuration for the database
type DatabaseConfig struct {
	Host            string `mapstructure:"DB_HOST"`
	Port            string `mapstructure:"DB_PORT"`
	User            string `mapstructure:"DB_USER"`
	Password        string `mapstructure:"DB_PASSWORD"`
	Name            string `mapstructure:"DB_NAME"`
	SSLMode         string `mapstructure:"DB_SSLMODE"`
	MaxOpenConns    int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime int    `mapstructure:"DB_CONN_MAX_LIFETIME_SECONDS"`
	ConnMaxIdleTime int    `mapstructure:"DB_CONN_MAX_IDLE_TIME_SECONDS"`
}

// AppConfig holds configuration for the application server
type AppConfig struct {
	HTTPPort               string `mapstructure:"HTTP_PORT"`
	ShutdownTimeoutSeconds int    `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS"`
}

// RedisConfig holds configuration for the Redis cache
type RedisConfig struct {
	Enabled     bool   `mapstructure:"REDIS_ENABLED"`
	Host        string `mapstructure:"REDIS_HOST"`
	Port        string `mapstructure:"REDIS_PORT"`
	Password    string `mapstructure:"REDIS_PASSWORD"`
	DB          int    `mapstructure:"REDIS_DB"`
	MaxRetries  int    `mapstructure:"REDIS_MAX_RETRIES"`
	PoolSize    int    `mapstructure:"REDIS_POOL_SIZE"`
	MinIdleConn int    `mapstructure:"REDIS_MIN_IDLE_CONNS"`
	CacheTTL    int    `mapstructure:"REDIS_CACHE_TTL_SECONDS"`
}

// RateLimitConfig holds configuration for the HTTP rate limiter
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"RATE_LIMIT_ENABLED"`
	RequestsPerSecond float64 `mapstructure:"RATE_LIMIT_REQUESTS_PER_SECOND"`
	BurstCapacity     int     `mapstructure:"RATE_LIMIT_BURST_CAPACITY"`
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level            string  `mapstructure:"LOG_LEVEL"`
	Format           string  `mapstructure:"LOG_FORMAT"`
	OutputPath       string  `mapstructure:"LOG_OUTPUT_PATH"`
	SlowQuerySeconds float64 `mapstructure:"LOG_SLOW_QUERY_SECONDS"`
	EnableSampling   bool    `mapstructure:"LOG_ENABLE_SAMPLING"`
	ServiceName      string  `mapstructure:"SERVICE_NAME"`
	ServiceVersion   string  `mapstructure:"SERVICE_VERSION"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (*Config, error) {
	// Set defaults first
	setDefaults()

	viper.AddConfigPath(path)
	viper.SetConfigName("app") // Look for app.env
	viper.SetConfigType("env")

	viper.AutomaticEnv() // Read from environment variables

	// Try to read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if we have env vars
	}

	var config Config

	// Manually populate config from viper
	config.DB.Host = viper.GetString("DB_HOST")
	config.DB.Port = viper.GetString("DB_PORT")
	config.DB.User = viper.GetString("DB_USER")
	config.DB.Password = viper.GetString("DB_PASSWORD")
	config.DB.Name = viper.GetString("DB_NAME")
	config.DB.SSLMode = viper.GetString("DB_SSLMODE")
	config.DB.MaxOpenConns = viper.GetInt("DB_MAX_OPEN_CONNS")
	config.DB.MaxIdleConns = viper.GetInt("DB_MAX_IDLE_CONNS")
	config.DB.ConnMaxLifetime = viper.GetInt("DB_CONN_MAX_LIFETIME_SECONDS")
	config.DB.ConnMaxIdleTime = viper.GetInt("DB_CONN_MAX_IDLE_TIME_SECONDS")

	config.App.HTTPPort = viper.GetString("HTTP_PORT")
	config.App.ShutdownTimeoutSeconds = viper.GetInt("SHUTDOWN_TIMEOUT_SECONDS")

	config.Redis.Enabled = viper.GetBool("REDIS_ENABLED")
	config.Redis.Host = viper.GetString("REDIS_HOST")
	config.Redis.Port = viper.GetString("REDIS_PORT")
	config.Redis.Password = viper.GetString("REDIS_PASSWORD")
	config.Redis.DB = viper.GetInt("REDIS_DB")
	config.Redis.MaxRetries = viper.GetInt("REDIS_MAX_RETRIES")
	config.Redis.PoolSize = viper.GetInt("REDIS_POOL_SIZE")
	config.Redis.MinIdleConn = viper.GetInt("REDIS_MIN_IDLE_CONNS")
	config.Redis.CacheTTL = viper.GetInt("REDIS_CACHE_TTL_SECONDS")

	config.RateLimit.Enabled = viper.GetBool("RATE_LIMIT_ENABLED")
	config.RateLimit.RequestsPerSecond = viper.GetFloat64("RATE_LIMIT_REQUESTS_PER_SECOND")
	config.RateLimit.BurstCapacity = viper.GetInt("RATE_LIMIT_BURST_CAPACITY")

	config.Logger.Level = viper.GetString("LOG_LEVEL")
	config.Logger.Format = viper.GetString("LOG_FORMAT")
	config.Logger.OutputPath = viper.GetString("LOG_OUTPUT_PATH")
	config.Logger.SlowQuerySeconds = viper.GetFloat64("LOG_SLOW_QUERY_SECONDS")
	config.Logger.EnableSampling = viper.GetBool("LOG_ENABLE_SAMPLING")
	config.Logger.ServiceName = viper.GetString("SERVICE_NAME")
	config.Logger.ServiceVersion = viper.GetString("SERVICE_VERSION")

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "fuser")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_SECONDS", 300)
	viper.SetDefault("DB_CONN_MAX_IDLE_TIME_SECONDS", 60)

	viper.SetDefault("HTTP_PORT", "8080")
	viper.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 15)

	viper.SetDefault("REDIS_ENABLED", false)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_MAX_RETRIES", 3)
	viper.SetDefault("REDIS_POOL_SIZE", 10)
	viper.SetDefault("REDIS_MIN_IDLE_CONNS", 2)
	viper.SetDefault("REDIS_CACHE_TTL_SECONDS", 300)

	viper.SetDefault("RATE_LIMIT_ENABLED", false)
	viper.SetDefault("RATE_LIMIT_REQUESTS_PER_SECOND", 10.0)
	viper.SetDefault("RATE_LIMIT_BURST_CAPACITY", 20)

	// Logger defaults
	env := viper.GetString("APP_ENV")
	if env == "production" {
		viper.SetDefault("LOG_LEVEL", "info")
		viper.SetDefault("LOG_FORMAT", "json")
		viper.SetDefault("LOG_ENABLE_SAMPLING", true)
	} else {
		viper.SetDefault("LOG_LEVEL", "debug")
		viper.SetDefault("LOG_FORMAT", "console")
		viper.SetDefault("LOG_ENABLE_SAMPLING", false)
	}
	viper.SetDefault("LOG_OUTPUT_PATH", "stdout")
	viper.SetDefault("LOG_SLOW_QUERY_SECONDS", 0.2)
	viper.SetDefault("SERVICE_NAME", "fuser-service")
	viper.SetDefault("SERVICE_VERSION", "1.0.0")
}

// Validate checks that the configuration is usable before wiring dependencies.
func (c *Config) Validate() error {
	if c.App.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT must not be empty")
	}
	if c.App.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT_SECONDS must be positive")
	}
	if c.DB.Host == "" || c.DB.Port == "" || c.DB.Name == "" {
		return fmt.Errorf("database host, port and name must not be empty")
	}
	if c.DB.MaxOpenConns <= 0 || c.DB.MaxIdleConns < 0 {
		return fmt.Errorf("invalid database connection pool settings")
	}
	if c.Redis.Enabled && (c.Redis.Host == "" || c.Redis.Port == "") {
		return fmt.Errorf("redis host and port must not be empty when Redis is enabled")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.BurstCapacity <= 0) {
		return fmt.Errorf("invalid rate limit settings")
	}
	return nil
}

// DSN returns the PostgreSQL Data Source Name
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}
