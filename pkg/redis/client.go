// Package redis holds the shared client behind idempotent replay, in-flight
// mutation locks and operator sessions
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const initTimeout = 5 * time.Second

// ErrNotInitialized is returned by every operation before Init
var ErrNotInitialized = errors.New("redis client not initialized")

var client *redis.Client

var pingClient = func(ctx context.Context, c *redis.Client) error {
	return c.Ping(ctx).Err()
}

// Init connects the shared client. password overrides any password in url.
func Init(url, password string) error {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return fmt.Errorf("invalid redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}

	c := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := pingClient(ctx, c); err != nil {
		_ = c.Close()
		return fmt.Errorf("redis ping: %w", err)
	}

	client = c
	return nil
}

// SetClient swaps the shared client, used by tests
func SetClient(c *redis.Client) {
	client = c
}

func GetClient() *redis.Client {
	return client
}

func conn() (*redis.Client, error) {
	if client == nil {
		return nil, ErrNotInitialized
	}
	return client, nil
}

func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c, err := conn()
	if err != nil {
		return err
	}
	return c.Set(ctx, key, value, expiration).Err()
}

// Get returns redis.Nil for a missing key
func Get(ctx context.Context, key string) (string, error) {
	c, err := conn()
	if err != nil {
		return "", err
	}
	return c.Get(ctx, key).Result()
}

func Del(ctx context.Context, key string) error {
	c, err := conn()
	if err != nil {
		return err
	}
	return c.Del(ctx, key).Err()
}

// SetNX stores value only when key is absent and reports whether it did
func SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	c, err := conn()
	if err != nil {
		return false, err
	}
	return c.SetNX(ctx, key, value, expiration).Result()
}

// Close releases the shared client
func Close() error {
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}
