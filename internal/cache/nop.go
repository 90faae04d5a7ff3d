package cache

import (
	"context"
	"time"
)

// NopStore never stores anything. It is the cache-disabled mode.
type NopStore struct{}

func (NopStore) Get(context.Context, string) ([]byte, bool) { return nil, false }

func (NopStore) Set(context.Context, string, []byte, time.Duration) {}

func (NopStore) Delete(context.Context, ...string) int { return 0 }

func (NopStore) KeysMatching(context.Context, string) []string { return []string{} }

func (NopStore) Close() error { return nil }
