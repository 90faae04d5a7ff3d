package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/preston-bernstein/nba-next-game-service/internal/logging"
)

const scanBatch = 200

// RedisStore backs the cache with Redis. Errors are logged and swallowed.
type RedisStore struct {
	client redis.UniversalClient
	logger *slog.Logger
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient, logger *slog.Logger) *RedisStore {
	return &RedisStore{client: client, logger: logger}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.Warn(s.logger, "cache get failed", logging.FieldCacheKey, key, logging.FieldError, err)
		}
		return nil, false
	}
	return raw, true
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		logging.Warn(s.logger, "cache set failed", logging.FieldCacheKey, key, logging.FieldError, err)
	}
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) int {
	if len(keys) == 0 {
		return 0
	}
	n, err := s.client.Del(ctx, keys...).Result()
	if err != nil {
		logging.Warn(s.logger, "cache delete failed", logging.FieldCount, len(keys), logging.FieldError, err)
		return 0
	}
	return int(n)
}

func (s *RedisStore) KeysMatching(ctx context.Context, prefix string) []string {
	keys := make([]string, 0)
	iter := s.client.Scan(ctx, 0, escapeGlob(prefix)+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logging.Warn(s.logger, "cache scan failed", logging.FieldCacheKey, prefix, logging.FieldError, err)
	}
	return keys
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func escapeGlob(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
