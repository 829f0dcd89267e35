package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jw6ventures/carrental-console/internal/metrics"
)

const redisKeyPrefix = "carrental:session:"

// RedisClient is the subset of go-redis the session backend needs.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisBackend stores sessions in Redis with a TTL matching the session expiry.
type RedisBackend struct {
	client RedisClient
}

func NewRedisBackend(client RedisClient) *RedisBackend {
	return &RedisBackend{client: client}
}

func (b *RedisBackend) Save(ctx context.Context, id, payload string, expiresAt time.Time) error {
	defer metrics.ObserveSessionStoreLatency(ctx, "redis_save", time.Now())
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", id)
	}
	return b.client.Set(ctx, redisKeyPrefix+id, payload, ttl).Err()
}

func (b *RedisBackend) Load(ctx context.Context, id string) (string, error) {
	defer metrics.ObserveSessionStoreLatency(ctx, "redis_load", time.Now())
	payload, err := b.client.Get(ctx, redisKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	return payload, err
}

func (b *RedisBackend) Delete(ctx context.Context, id string) error {
	defer metrics.ObserveSessionStoreLatency(ctx, "redis_delete", time.Now())
	return b.client.Del(ctx, redisKeyPrefix+id).Err()
}

// HealthCheck pings the Redis server.
func (b *RedisBackend) HealthCheck(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}
