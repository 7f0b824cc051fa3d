package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps go-redis with the live game-state cache operations.
// Everything stored here can be rebuilt from Postgres; Redis holds only
// the hot per-turn state and deadline timers.
type Client struct {
	rdb *redis.Client
}

// NewClient dials Redis from a redis:// URL and verifies the connection.
func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// NewClientFromPool wraps an already-dialed client; tests use this to
// share the connection managed by testutil.
func NewClientFromPool(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// Underlying exposes the raw client for pub/sub (keyspace expiry
// notifications) and server CONFIG commands.
func (c *Client) Underlying() *redis.Client {
	return c.rdb
}
