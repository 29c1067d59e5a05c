package cache

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// operationTimeout bounds each storage call, fiber.Storage has no context
const operationTimeout = 2 * time.Second

// Storage adapts RedisCache to fiber.Storage so middleware such as the
// rate limiter can keep state shared between instances
type Storage struct {
	cache  *RedisCache
	prefix string
}

var _ fiber.Storage = (*Storage)(nil)

// NewStorage returns a fiber.Storage writing keys under prefix
func NewStorage(cache *RedisCache, prefix string) *Storage {
	return &Storage{cache: cache, prefix: prefix}
}

func (s *Storage) key(k string) string {
	return s.prefix + k
}

// Get returns nil without an error when the key does not exist
func (s *Storage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	val, err := s.cache.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

func (s *Storage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	return s.cache.Set(ctx, s.key(key), val, exp)
}

func (s *Storage) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	return s.cache.Delete(ctx, s.key(key))
}

// Reset removes every key under the prefix
func (s *Storage) Reset() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*operationTimeout)
	defer cancel()

	iter := s.cache.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.cache.Delete(ctx, keys...)
}

// Close is a no-op, the client is owned by RedisCache
func (s *Storage) Close() error {
	return nil
}
