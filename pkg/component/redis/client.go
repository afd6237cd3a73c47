// Package redis provides the Redis client used by the query cache.
package redis

import (
	"context"
	"errors"
	"fmt"

	options "github.com/kart-io/docqa/pkg/options/redis"
	goredis "github.com/redis/go-redis/v9"
)

// Client wraps a go-redis client configured from options.
//
// Example usage:
//
//	opts := options.NewOptions()
//	opts.Host = "localhost"
//	opts.Port = 6379
//
//	client, err := redis.New(context.Background(), opts)
//	if err != nil {
//	    log.Fatalf("failed to create Redis client: %v", err)
//	}
//	defer client.Close()
type Client struct {
	client *goredis.Client
	opts   *options.Options
}

// New creates a new Redis client and verifies connectivity with a ping.
func New(ctx context.Context, opts *options.Options) (*Client, error) {
	if opts == nil {
		return nil, fmt.Errorf("redis options cannot be nil")
	}

	if err := opts.Complete(); err != nil {
		return nil, fmt.Errorf("invalid redis options: %w", err)
	}
	if errs := opts.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid redis options: %w", errors.Join(errs...))
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Password:     opts.Password,
		DB:           opts.Database,
		MaxRetries:   opts.MaxRetries,
		PoolSize:     opts.PoolSize,
		MinIdleConns: opts.MinIdleConns,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		PoolTimeout:  opts.PoolTimeout,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Client{
		client: rdb,
		opts:   opts,
	}, nil
}

// Client returns the underlying go-redis client.
func (c *Client) Client() *goredis.Client {
	return c.client
}

// Ping checks if the connection to Redis is alive.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection. Safe to call multiple times.
func (c *Client) Close() error {
	return c.client.Close()
}
