package cache

import (
	"context"
	"time"

	"github.com/preston-bernstein/nba-next-game-service/internal/metrics"
)

type instrumentedStore struct {
	inner    Store
	recorder *metrics.Recorder
}

// WithMetrics records a hit or miss per resource on every Get.
func WithMetrics(inner Store, recorder *metrics.Recorder) Store {
	if recorder == nil {
		return inner
	}
	return &instrumentedStore{inner: inner, recorder: recorder}
}

func (s *instrumentedStore) Get(ctx context.Context, key string) ([]byte, bool) {
	v, ok := s.inner.Get(ctx, key)
	s.recorder.RecordCacheLookup(Resource(key), ok)
	return v, ok
}

func (s *instrumentedStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	s.inner.Set(ctx, key, value, ttl)
}

func (s *instrumentedStore) Delete(ctx context.Context, keys ...string) int {
	return s.inner.Delete(ctx, keys...)
}

func (s *instrumentedStore) KeysMatching(ctx context.Context, prefix string) []string {
	return s.inner.KeysMatching(ctx, prefix)
}

func (s *instrumentedStore) Close() error { return s.inner.Close() }
