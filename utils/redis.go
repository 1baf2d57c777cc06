package utils

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	redisClient *redis.Client
	redisCtx    = context.Background()
)

// ErrCacheMiss is returned by GetCache when the key is absent or Redis
// is not configured. Callers fall back to recomputation.
var ErrCacheMiss = errors.New("cache miss")

// InitRedis connects the shared Redis client. Redis is optional; when
// REDIS_ADDR is unset, caching quietly degrades to no-ops.
func InitRedis() error {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil
	}

	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(redisCtx, 3*time.Second)
	defer cancel()
	return redisClient.Ping(ctx).Err()
}

func SetCache(key string, value string, ttl time.Duration) error {
	if redisClient == nil {
		return nil
	}
	return redisClient.Set(redisCtx, key, value, ttl).Err()
}

func GetCache(key string) (string, error) {
	if redisClient == nil {
		return "", ErrCacheMiss
	}
	val, err := redisClient.Get(redisCtx, key).Result()
	if err == redis.Nil {
		return "", ErrCacheMiss
	}
	return val, err
}

func DeleteCache(key string) error {
	if redisClient == nil {
		return nil
	}
	return redisClient.Del(redisCtx, key).Err()
}
