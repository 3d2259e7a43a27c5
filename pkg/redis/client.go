package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/alphalab/pkg/config"
)

// Client wraps the Redis client with additional utilities.
// SSOT: the Redis connection is managed only here.
type Client struct {
	rdb     *redis.Client
	enabled bool
}

// New creates a new Redis client
func New(cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return &Client{enabled: false}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Client{
		rdb:     rdb,
		enabled: true,
	}, nil
}

// Enabled reports whether the client has a live connection
func (c *Client) Enabled() bool {
	return c.enabled
}

// Redis returns the underlying go-redis client
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

// Close closes the connection
func (c *Client) Close() error {
	if !c.enabled || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// Ping checks connectivity
func (c *Client) Ping(ctx context.Context) error {
	if !c.enabled {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}
