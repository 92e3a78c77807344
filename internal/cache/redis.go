package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Redis backs the profile cache with a shared store so invalidation on one
// instance is visible to all of them.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(cfg RedisConfig, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Redis{client: client, ttl: ttl}
}

func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Redis) Close() error {
	return c.client.Close()
}

func profileKey(userID string) string {
	return "profile:" + userID
}

func (c *Redis) Get(ctx context.Context, userID string) ([]byte, bool) {
	payload, err := c.client.Get(ctx, profileKey(userID)).Bytes()

	if err != nil {
		// redis.Nil (miss) and transport errors both fall back to the store.
		return nil, false
	}

	return payload, true
}

func (c *Redis) Set(ctx context.Context, userID string, payload []byte) {
	// Best effort; a dropped write only costs a future cache miss.
	_ = c.client.Set(ctx, profileKey(userID), payload, c.ttl).Err()
}

func (c *Redis) Invalidate(ctx context.Context, userID string) {
	_ = c.client.Del(ctx, profileKey(userID)).Err()
}
