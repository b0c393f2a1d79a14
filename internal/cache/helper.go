package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// GetJSON fetches a cached value and unmarshals it into out. Returns false on
// a miss or when Redis is unavailable.
func GetJSON(ctx context.Context, rdb *redis.Client, key string, out any) bool {
	if rdb == nil {
		return false
	}
	raw, err := rdb.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), out) == nil
}

// SetJSON stores a value as JSON with a TTL. Best effort: marshal or Redis
// failures are ignored.
func SetJSON(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) {
	if rdb == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = rdb.Set(ctx, key, raw, ttl).Err()
}

// Invalidate removes a cached key, ignoring misses.
func Invalidate(ctx context.Context, rdb *redis.Client, key string) {
	if rdb == nil {
		return
	}
	if err := rdb.Del(ctx, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return
	}
}
