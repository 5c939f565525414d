package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// OpenRedis 解析 redis:// 或 rediss:// URL 并确认连接可用。
func OpenRedis(ctx context.Context, url string) (redis.UniversalClient, error) {
	if url == "" {
		return nil, errors.New("redis url cannot be empty")
	}
	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return nil, fmt.Errorf("invalid redis url scheme: %s", url)
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisSlot 将值保存在 Redis 中，ttl 为 0 表示永不过期。
type RedisSlot struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisSlot 基于已有客户端创建 RedisSlot。
func NewRedisSlot(client redis.UniversalClient, ttl time.Duration) *RedisSlot {
	return &RedisSlot{client: client, ttl: max(ttl, 0)}
}

func (r *RedisSlot) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return v, nil
}

func (r *RedisSlot) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, r.ttl).Err()
}

func (r *RedisSlot) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
