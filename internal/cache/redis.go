package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/emberdate/ember-server/internal/config"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// --- unread message counter ---
//
// Advisory cache in front of the messages table; the DB count is the
// ground truth and callers fall back to it on a miss.

func (c *RedisCache) KeyForUnreadCount(userID uint64) string {
	return fmt.Sprintf("messages:unread:%d", userID)
}

func (c *RedisCache) SetUnreadCount(ctx context.Context, userID uint64, count int64) error {
	return c.Client.Set(ctx, c.KeyForUnreadCount(userID), count, time.Hour).Err()
}

// GetUnreadCount returns the cached count, or found=false on a miss.
func (c *RedisCache) GetUnreadCount(ctx context.Context, userID uint64) (int64, bool, error) {
	val, err := c.Client.Get(ctx, c.KeyForUnreadCount(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, c.KeyForUnreadCount(userID), time.Hour).Err()
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return n, true, nil
}

// InvalidateUnreadCount drops the cached value; the next read falls back
// to the DB.
func (c *RedisCache) InvalidateUnreadCount(ctx context.Context, userID uint64) error {
	return c.Client.Del(ctx, c.KeyForUnreadCount(userID)).Err()
}

// --- access token blacklist ---
//
// Logout stores the presented token until its natural expiry so the auth
// middleware can reject it afterwards.

func keyForBlacklist(token string) string {
	return "auth:blacklist:" + token
}

func (c *RedisCache) BlacklistToken(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // already expired, nothing to do
	}
	return c.Client.Set(ctx, keyForBlacklist(token), "1", ttl).Err()
}

func (c *RedisCache) IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	_, err := c.Client.Get(ctx, keyForBlacklist(token)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}
