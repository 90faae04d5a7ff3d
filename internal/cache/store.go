// Package cache is the key/value substrate every source reads through.
// Stores never return errors; backend failures behave like a miss or a no-op.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// Store is a TTL key/value store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	// Delete removes keys and reports how many existed.
	Delete(ctx context.Context, keys ...string) int
	// KeysMatching lists live keys starting with prefix.
	KeysMatching(ctx context.Context, prefix string) []string
	Close() error
}

// GetJSON decodes a cached value. Decode failures count as a miss.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, bool) {
	var zero T
	if s == nil {
		return zero, false
	}
	raw, ok := s.Get(ctx, key)
	if !ok {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, false
	}
	return v, true
}

// SetJSON encodes and stores a value. Values that cannot be encoded are skipped.
func SetJSON(ctx context.Context, s Store, key string, value any, ttl time.Duration) {
	if s == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	s.Set(ctx, key, raw, ttl)
}

// KeysUnder lists the distinct live keys under any of the prefixes.
func KeysUnder(ctx context.Context, s Store, prefixes ...string) []string {
	keys := []string{}
	if s == nil {
		return keys
	}
	seen := make(map[string]struct{})
	for _, p := range prefixes {
		for _, k := range s.KeysMatching(ctx, p) {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys
}

// DeletePrefixes removes every key under the given prefixes and returns the removed keys.
func DeletePrefixes(ctx context.Context, s Store, prefixes ...string) (int, []string) {
	return deleteKeys(ctx, s, KeysUnder(ctx, s, prefixes...))
}

// DeleteLivePrefixes is DeletePrefixes that leaves stale aggregate backups in place.
func DeleteLivePrefixes(ctx context.Context, s Store, prefixes ...string) (int, []string) {
	keys := KeysUnder(ctx, s, prefixes...)
	live := keys[:0]
	for _, k := range keys {
		if !strings.HasPrefix(k, PrefixStale) {
			live = append(live, k)
		}
	}
	return deleteKeys(ctx, s, live)
}

func deleteKeys(ctx context.Context, s Store, keys []string) (int, []string) {
	if len(keys) == 0 {
		return 0, keys
	}
	return s.Delete(ctx, keys...), keys
}
