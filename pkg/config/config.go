package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Health/metrics server (separate port for probes and scraping)
	HealthPort string `yaml:"health_port"`
}

// DatabaseConfig holds the Postgres connection settings
type DatabaseConfig struct {
	URL         string        `yaml:"url"`
	MaxConns    int           `yaml:"max_conns"`
	MinConns    int           `yaml:"min_conns"`
	PingTimeout time.Duration `yaml:"ping_timeout"`
}

// AuthConfig holds the token signing settings
type AuthConfig struct {
	// Secret signs every issued token. Required; no default.
	Secret string `yaml:"secret"`
	// TokenTTL is the fixed lifetime of issued tokens.
	TokenTTL time.Duration `yaml:"token_ttl"`
	// PurgeSchedule is the cron schedule for the blacklist purge job.
	PurgeSchedule string `yaml:"purge_schedule"`
}

// RedisConfig holds the optional blacklist cache settings. An empty URL
// disables the cache and the blacklist is served from Postgres alone.
type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load builds configuration from an optional YAML file overlaid by the
// environment. Environment variables always win.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.loadEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			HealthPort:      "9090",
		},
		Database: DatabaseConfig{
			MaxConns:    25,
			MinConns:    5,
			PingTimeout: 5 * time.Second,
		},
		Auth: AuthConfig{
			TokenTTL:      4 * time.Hour,
			PurgeSchedule: "@hourly",
		},
		Log: LogConfig{Level: "info"},
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) loadEnv() {
	c.Server.Host = getEnv("RECIPES_HOST", c.Server.Host)
	c.Server.Port = getEnv("RECIPES_PORT", c.Server.Port)
	c.Server.HealthPort = getEnv("RECIPES_HEALTH_PORT", c.Server.HealthPort)
	c.Server.ReadTimeout = getEnvDuration("RECIPES_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("RECIPES_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvDuration("RECIPES_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("RECIPES_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Database.URL = getEnv("DATABASE_URL", c.Database.URL)
	c.Database.MaxConns = getEnvInt("RECIPES_DB_MAX_CONNS", c.Database.MaxConns)
	c.Database.MinConns = getEnvInt("RECIPES_DB_MIN_CONNS", c.Database.MinConns)
	c.Database.PingTimeout = getEnvDuration("RECIPES_DB_PING_TIMEOUT", c.Database.PingTimeout)

	c.Auth.Secret = getEnv("RECIPES_SECRET", c.Auth.Secret)
	c.Auth.TokenTTL = getEnvDuration("RECIPES_TOKEN_TTL", c.Auth.TokenTTL)
	c.Auth.PurgeSchedule = getEnv("RECIPES_PURGE_SCHEDULE", c.Auth.PurgeSchedule)

	c.Redis.URL = getEnv("RECIPES_REDIS_URL", c.Redis.URL)
	c.Redis.Password = getEnv("RECIPES_REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("RECIPES_REDIS_DB", c.Redis.DB)

	c.Log.Level = getEnv("RECIPES_LOG_LEVEL", c.Log.Level)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database URL is required (set DATABASE_URL)")
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("signing secret is required (set RECIPES_SECRET)")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}
	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
