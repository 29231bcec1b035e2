package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/culinara/culinara/pkg/config"
	"github.com/culinara/culinara/pkg/logging"
)

const namespace = "culinara"

// Cache wraps Redis client. Only request counters live here; feed data is
// always read from the database.
type Cache struct {
	client *redis.Client
}

// New creates a new Redis cache client. It returns a nil Cache when Redis is
// disabled; every method treats a nil Cache as disabled.
func New(cfg *config.RedisConfig) (*Cache, error) {
	if !cfg.Enabled {
		logging.GetLogger().Info("Redis cache disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetLogger().Info("Redis connection established")

	return NewFromClient(client), nil
}

// NewFromClient wraps an existing client
func NewFromClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// HashKey builds a fixed-length key from arbitrary parts
func HashKey(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) namespaceKey(key string) string {
	return namespace + ":" + key
}

// IncrWindow increments the counter for key and returns its new value and
// remaining lifetime. The first increment in a window starts the expiry, so
// the counter resets once window has elapsed.
func (c *Cache) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if c == nil || c.client == nil {
		return 0, 0, ErrCacheDisabled
	}
	key = c.namespaceKey(key)

	n, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if n == 1 {
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			return n, 0, err
		}
		return n, window, nil
	}

	ttl, err := c.client.TTL(ctx, key).Result()
	if err != nil {
		return n, 0, err
	}
	if ttl < 0 {
		// A previous Expire was lost; restart the window rather than
		// blocking the client forever.
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			return n, 0, err
		}
		ttl = window
	}
	return n, ttl, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Health checks Redis health
func (c *Cache) Health(ctx context.Context) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Ping(ctx).Err()
}

var (
	// ErrCacheDisabled is returned when cache operations are attempted but cache is disabled
	ErrCacheDisabled = fmt.Errorf("cache is disabled")
)
