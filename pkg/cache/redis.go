package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces every key written by [RedisCache].
const DefaultRedisPrefix = "tarper:"

// DefaultRedisCooldown is how long a [RedisCache] stops talking to a server
// that failed with a network error.
const DefaultRedisCooldown = 30 * time.Second

// ErrUnavailable is returned without contacting Redis while a RedisCache is
// cooling down after a network failure. It wraps [ErrNetwork].
var ErrUnavailable = fmt.Errorf("%w: redis unavailable", ErrNetwork)

// RedisCache stores entries in Redis so several machines searching the same
// tree can share measurements. Transient connection errors are retried with
// [RetryWithBackoff]. Once retries are exhausted the cache fails fast with
// [ErrUnavailable] for Cooldown before trying the server again.
type RedisCache struct {
	client *redis.Client
	prefix string

	// Cooldown is the fail-fast window after a network failure.
	Cooldown time.Duration

	mu        sync.Mutex
	downUntil time.Time
}

// NewRedisCache connects to the Redis server at url (redis://host:port/db)
// and verifies the connection with PING.
func NewRedisCache(ctx context.Context, url, prefix string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	c := newRedisCache(redis.NewClient(opts), prefix)
	if err := c.do(ctx, func() error { return c.client.Ping(ctx).Err() }); err != nil {
		c.client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return c, nil
}

func newRedisCache(client *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisCache{client: client, prefix: prefix, Cooldown: DefaultRedisCooldown}
}

// Get retrieves a value. Expiry is handled by Redis itself.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := c.do(ctx, func() error {
		var err error
		data, err = c.client.Get(ctx, c.prefix+key).Bytes()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value. A ttl of zero keeps the key forever.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.do(ctx, func() error {
		return c.client.Set(ctx, c.prefix+key, data, ttl).Err()
	})
}

// Delete removes a value.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.do(ctx, func() error {
		return c.client.Del(ctx, c.prefix+key).Err()
	})
}

// Clear deletes every key under the cache prefix.
func (c *RedisCache) Clear(ctx context.Context) (int, error) {
	if c.unavailable() {
		return 0, ErrUnavailable
	}
	var keys []string
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 500).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("scan %s*: %w", c.prefix, err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := c.client.Del(ctx, keys...).Result()
	return int(n), err
}

// Close closes the underlying client.
func (c *RedisCache) Close() error { return c.client.Close() }

// do runs fn, retrying errors that look like connection trouble. redis.Nil
// and server-side errors are returned unchanged. A network error that
// survives the retries starts the cooldown.
func (c *RedisCache) do(ctx context.Context, fn func() error) error {
	if c.unavailable() {
		return ErrUnavailable
	}
	err := RetryWithBackoff(ctx, func() error {
		err := fn()
		if err == nil || errors.Is(err, redis.Nil) {
			return err
		}
		var rerr redis.Error
		if errors.As(err, &rerr) {
			return err
		}
		return Retryable(fmt.Errorf("%w: %w", ErrNetwork, err))
	})
	var re *RetryableError
	if errors.As(err, &re) {
		c.trip()
		return re.Err
	}
	return err
}

func (c *RedisCache) unavailable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Now().Before(c.downUntil)
}

func (c *RedisCache) trip() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.downUntil = time.Now().Add(c.Cooldown)
}

var (
	_ Cache   = (*RedisCache)(nil)
	_ Clearer = (*RedisCache)(nil)
)
