package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/preston-bernstein/nba-next-game-service/internal/config"
	"github.com/preston-bernstein/nba-next-game-service/internal/logging"
	"github.com/preston-bernstein/nba-next-game-service/internal/metrics"
)

var pingTimeout = 2 * time.Second

// New picks a backend from config: disabled, Redis when the URL parses and answers PING, otherwise memory.
func New(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger, recorder *metrics.Recorder) Store {
	var store Store
	switch {
	case cfg.Disabled:
		logging.Info(logger, "cache disabled")
		store = NopStore{}
	case cfg.RedisURL != "":
		store = newRedisOrMemory(ctx, cfg.RedisURL, logger)
	default:
		logging.Info(logger, "cache backend selected", "backend", "memory")
		store = NewMemoryStore()
	}
	return WithMetrics(Prefixed(store, cfg.KeyPrefix), recorder)
}

func newRedisOrMemory(ctx context.Context, url string, logger *slog.Logger) Store {
	opts, err := redis.ParseURL(url)
	if err != nil {
		logging.Warn(logger, "invalid redis url, using memory cache", logging.FieldError, err)
		return NewMemoryStore()
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		logging.Warn(logger, "redis unreachable, using memory cache", logging.FieldError, err)
		return NewMemoryStore()
	}
	logging.Info(logger, "cache backend selected", "backend", "redis", "addr", opts.Addr)
	return NewRedisStore(client, logger)
}
