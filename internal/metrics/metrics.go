package metrics

import (
	"sync"
	"time"
)

type upstreamStats struct {
	calls           int
	errors          int
	rateLimitHits   int
	lastRetryAfter  time.Duration
	lastCallLatency time.Duration
}

type cacheStats struct {
	hits   int
	misses int
}

// Recorder captures lightweight, in-memory metrics about upstream calls and cache use.
// When built by Setup it also forwards every observation to OpenTelemetry.
type Recorder struct {
	mu          sync.Mutex
	stats       map[string]*upstreamStats
	cache       map[string]*cacheStats
	staleServed int
	otel        *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats: make(map[string]*upstreamStats),
		cache: make(map[string]*cacheStats),
		otel:  otel,
	}
}

// RecordUpstreamAttempt increments counters for an upstream call and stores the last observed latency.
func (r *Recorder) RecordUpstreamAttempt(upstream string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStats(upstream)
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordUpstreamAttempt(upstream, duration, err)
	}
}

// RecordRateLimit tracks that an upstream response hit a rate limit and stores the last Retry-After.
func (r *Recorder) RecordRateLimit(upstream string, retryAfter time.Duration) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStats(upstream)
	stats.rateLimitHits++
	if retryAfter > 0 {
		stats.lastRetryAfter = retryAfter
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordRateLimit(upstream, retryAfter)
	}
}

// RecordCacheLookup counts a cache hit or miss for a logical resource (schedule, roster, ...).
func (r *Recorder) RecordCacheLookup(resource string, hit bool) {
	if r == nil {
		return
	}

	r.mu.Lock()
	cs, ok := r.cache[resource]
	if !ok {
		cs = &cacheStats{}
		r.cache[resource] = cs
	}
	if hit {
		cs.hits++
	} else {
		cs.misses++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordCacheLookup(resource, hit)
	}
}

// RecordStaleServed counts aggregate responses served from the stale copy.
func (r *Recorder) RecordStaleServed(reason string) {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.staleServed++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordStaleServed(reason)
	}
}

// UpstreamCalls returns the total attempts recorded for an upstream.
func (r *Recorder) UpstreamCalls(upstream string) int {
	return r.Snapshot(upstream).Calls
}

// UpstreamErrors returns the total failed attempts recorded for an upstream.
func (r *Recorder) UpstreamErrors(upstream string) int {
	return r.Snapshot(upstream).Errors
}

// RateLimitHits returns the number of rate limit events seen for an upstream.
func (r *Recorder) RateLimitHits(upstream string) int {
	return r.Snapshot(upstream).RateLimitHits
}

// LastRetryAfter returns the most recent Retry-After recorded for an upstream.
func (r *Recorder) LastRetryAfter(upstream string) time.Duration {
	return r.Snapshot(upstream).LastRetryAfter
}

// CacheHits returns hits recorded for a resource.
func (r *Recorder) CacheHits(resource string) int {
	hits, _ := r.cacheCounts(resource)
	return hits
}

// CacheMisses returns misses recorded for a resource.
func (r *Recorder) CacheMisses(resource string) int {
	_, misses := r.cacheCounts(resource)
	return misses
}

// StaleServed returns how many stale aggregates were served.
func (r *Recorder) StaleServed() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.staleServed
}

// Snapshot returns a copy of the current stats for the upstream.
type Snapshot struct {
	Calls           int
	Errors          int
	RateLimitHits   int
	LastRetryAfter  time.Duration
	LastCallLatency time.Duration
}

func (r *Recorder) Snapshot(upstream string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[upstream]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		RateLimitHits:   stats.rateLimitHits,
		LastRetryAfter:  stats.lastRetryAfter,
		LastCallLatency: stats.lastCallLatency,
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// RecordRefreshCycle tracks scheduled refresh runs and errors.
func (r *Recorder) RecordRefreshCycle(duration time.Duration, err error) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordRefresh(duration, err)
}

// ensureStats must be called with r.mu held.
func (r *Recorder) ensureStats(upstream string) *upstreamStats {
	stats, ok := r.stats[upstream]
	if !ok {
		stats = &upstreamStats{}
		r.stats[upstream] = stats
	}
	return stats
}

func (r *Recorder) cacheCounts(resource string) (int, int) {
	if r == nil {
		return 0, 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if cs, ok := r.cache[resource]; ok {
		return cs.hits, cs.misses
	}
	return 0, 0
}
