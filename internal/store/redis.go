package store

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

type redisKV struct {
	rdb    *goredis.Client
	prefix string
}

// NewRedis creates a KV on top of a Redis client. Keys are namespaced by prefix.
func NewRedis(rdb *goredis.Client, prefix string) KV {
	return &redisKV{rdb: rdb, prefix: prefix}
}

func (s *redisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get record %q: %w", key, err)
	}
	return v, true, nil
}

func (s *redisKV) Set(ctx context.Context, key, value string) error {
	// No TTL: records live until overwritten
	if err := s.rdb.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set record %q: %w", key, err)
	}
	return nil
}

func (s *redisKV) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
