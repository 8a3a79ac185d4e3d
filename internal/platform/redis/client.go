// Package redis holds the shared client behind the event stream sink.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"foodshare/internal/platform/config"
)

// Client wraps go-redis with the probe the readiness endpoint polls.
type Client struct {
	*redis.Client
}

// New dials Redis from config. A nil client with a nil error means Redis is
// not configured and the stream sink stays disabled.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{Client: client}, nil
}

// Health reports whether the connection still answers.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
