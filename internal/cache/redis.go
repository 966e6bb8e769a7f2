package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

// Cache is a small redis-backed byte cache with a fixed TTL. It holds the
// upstream todo payload between imports so repeated calls don't hammer the
// provider.
type Cache struct {
	redisdb *redis.Client
	ttl     time.Duration
}

func New(cfg Config, ttl time.Duration) *Cache {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache{redisdb: redisdb, ttl: ttl}
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.redisdb.Close()
}

// Get returns the cached payload. A redis error is treated as a miss; the
// cache is an optimization, never a hard dependency.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.redisdb.Get(ctx, key).Bytes()

	if err != nil {
		return nil, false
	}

	return val, true
}

func (c *Cache) Set(ctx context.Context, key string, val []byte) {
	_ = c.redisdb.Set(ctx, key, val, c.ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, key string) {
	_ = c.redisdb.Del(ctx, key).Err()
}
