package cache

import (
	"context"
	"strings"
	"time"
)

type prefixedStore struct {
	inner  Store
	prefix string
}

// Prefixed namespaces every key so several deployments can share one backend.
// Callers keep using unprefixed keys.
func Prefixed(inner Store, prefix string) Store {
	if prefix == "" {
		return inner
	}
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &prefixedStore{inner: inner, prefix: prefix}
}

func (p *prefixedStore) Get(ctx context.Context, key string) ([]byte, bool) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixedStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	p.inner.Set(ctx, p.prefix+key, value, ttl)
}

func (p *prefixedStore) Delete(ctx context.Context, keys ...string) int {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = p.prefix + k
	}
	return p.inner.Delete(ctx, full...)
}

func (p *prefixedStore) KeysMatching(ctx context.Context, prefix string) []string {
	raw := p.inner.KeysMatching(ctx, p.prefix+prefix)
	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		keys = append(keys, strings.TrimPrefix(k, p.prefix))
	}
	return keys
}

func (p *prefixedStore) Close() error { return p.inner.Close() }
