package redis

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection settings
type Config struct {
	// URL in redis://[user:pass@]host:port/db form
	URL string

	PoolSize     int
	MinIdleConns int

	// ConnectTimeout bounds the dial and the startup ping
	ConnectTimeout time.Duration

	// MaxTxRetries bounds WATCH retries when a counter or index key keeps changing
	MaxTxRetries int
}

func DefaultConfig() Config {
	return Config{
		URL:            "redis://localhost:6379",
		PoolSize:       10,
		MinIdleConns:   2,
		ConnectTimeout: 5 * time.Second,
		MaxTxRetries:   5,
	}
}

// options turns the config into client options. Zero fields keep the
// go-redis defaults.
func (c Config) options() (*redis.Options, error) {
	opts, err := redis.ParseURL(c.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if c.PoolSize > 0 {
		opts.PoolSize = c.PoolSize
	}
	if c.MinIdleConns > 0 {
		opts.MinIdleConns = c.MinIdleConns
	}
	if c.ConnectTimeout > 0 {
		opts.DialTimeout = c.ConnectTimeout
	}
	return opts, nil
}
