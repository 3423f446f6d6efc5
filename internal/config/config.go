// Package config loads server configuration from defaults, an optional YAML
// file, an optional .env file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mcoot/pokerleague/internal/api"
	"github.com/mcoot/pokerleague/internal/services/auth"
	pgstorage "github.com/mcoot/pokerleague/internal/storage/postgres"
	redisstorage "github.com/mcoot/pokerleague/internal/storage/redis"
)

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type RedisConfig struct {
	URL          string `yaml:"url"`
	PoolSize     int    `yaml:"pool_size"`
	MinIdleConns int    `yaml:"min_idle_conns"`
}

type PostgresConfig struct {
	DSN          string `yaml:"-"` // DATABASE_URL only, it carries credentials
	Schema       string `yaml:"schema"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

type StorageConfig struct {
	Type     string         `yaml:"type"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type AuthConfig struct {
	AdminTokenHash string        `yaml:"admin_token_hash"`
	CacheDuration  time.Duration `yaml:"cache_duration"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type SSEConfig struct {
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// Config is the complete server configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`
	Log     LogConfig     `yaml:"log"`
	SSE     SSEConfig     `yaml:"sse"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	server := api.DefaultServerConfig()
	redisCfg := redisstorage.DefaultConfig()
	pgCfg := pgstorage.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Host:            server.Host,
			Port:            server.Port,
			ReadTimeout:     server.ReadTimeout,
			WriteTimeout:    server.WriteTimeout,
			ShutdownTimeout: server.ShutdownTimeout,
		},
		Storage: StorageConfig{
			Type: "memory",
			Redis: RedisConfig{
				URL:          redisCfg.URL,
				PoolSize:     redisCfg.PoolSize,
				MinIdleConns: redisCfg.MinIdleConns,
			},
			Postgres: PostgresConfig{
				Schema:       pgCfg.Schema,
				MaxOpenConns: pgCfg.MaxOpenConns,
				MaxIdleConns: pgCfg.MaxIdleConns,
			},
		},
		Auth: AuthConfig{CacheDuration: auth.DefaultConfig().CacheDuration},
		Log:  LogConfig{Level: "info", Format: "json"},
		SSE:  SSEConfig{CleanupInterval: 5 * time.Minute},
	}
}

// Load builds the configuration. configPath may be empty, in which case only
// defaults and the environment apply. envFile is loaded into the process
// environment when it exists; variables already set win.
func Load(configPath, envFile string) (*Config, error) {
	cfg := Default()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT environment variable: %w", err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("STORAGE_TYPE"); ok && v != "" {
		c.Storage.Type = v
	}
	if v, ok := lookup("REDIS_URL"); ok && v != "" {
		c.Storage.Redis.URL = v
	}
	if v, ok := lookup("DATABASE_URL"); ok && v != "" {
		c.Storage.Postgres.DSN = v
	}
	if v, ok := lookup("ADMIN_TOKEN_HASH"); ok && v != "" {
		c.Auth.AdminTokenHash = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok && v != "" {
		c.Log.Format = v
	}
	return nil
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Storage.Type {
	case "memory":
	case "redis":
		if c.Storage.Redis.URL == "" {
			return errors.New("redis url is required for redis storage")
		}
	case "postgres":
		if c.Storage.Postgres.DSN == "" {
			return errors.New("DATABASE_URL is required for postgres storage")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported log format: %s", c.Log.Format)
	}

	if c.SSE.CleanupInterval <= 0 {
		return errors.New("sse cleanup interval must be positive")
	}
	return nil
}

// SlogLevel parses the configured log level
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("unsupported log level: %s", c.Log.Level)
	}
	return level, nil
}

// NewLogger builds the process logger writing to w
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := c.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// APIServerConfig converts the server section for api.NewServer
func (c *Config) APIServerConfig() api.ServerConfig {
	return api.ServerConfig{
		Host:            c.Server.Host,
		Port:            c.Server.Port,
		ReadTimeout:     c.Server.ReadTimeout,
		WriteTimeout:    c.Server.WriteTimeout,
		ShutdownTimeout: c.Server.ShutdownTimeout,
	}
}

// RedisStorageConfig converts the redis section for the redis backend
func (c *Config) RedisStorageConfig() redisstorage.Config {
	cfg := redisstorage.DefaultConfig()
	cfg.URL = c.Storage.Redis.URL
	cfg.PoolSize = c.Storage.Redis.PoolSize
	cfg.MinIdleConns = c.Storage.Redis.MinIdleConns
	return cfg
}

// PostgresStorageConfig converts the postgres section for the postgres backend
func (c *Config) PostgresStorageConfig() pgstorage.Config {
	cfg := pgstorage.DefaultConfig()
	cfg.DSN = c.Storage.Postgres.DSN
	cfg.Schema = c.Storage.Postgres.Schema
	cfg.MaxOpenConns = c.Storage.Postgres.MaxOpenConns
	cfg.MaxIdleConns = c.Storage.Postgres.MaxIdleConns
	return cfg
}

// AuthServiceConfig converts the auth section for auth.New
func (c *Config) AuthServiceConfig() auth.Config {
	return auth.Config{
		TokenHash:     c.Auth.AdminTokenHash,
		CacheDuration: c.Auth.CacheDuration,
	}
}
