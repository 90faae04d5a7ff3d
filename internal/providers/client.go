package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/preston-bernstein/nba-next-game-service/internal/config"
	"github.com/preston-bernstein/nba-next-game-service/internal/logging"
	"github.com/preston-bernstein/nba-next-game-service/internal/metrics"
)

const (
	defaultHTTPTimeout     = 10 * time.Second
	defaultAttempts        = 3
	defaultBreakerFailures = 5
	defaultBreakerCooldown = 30 * time.Second
	initialBackoff         = 250 * time.Millisecond
	maxBodySnippet         = 512
	maxBodyBytes           = 32 << 20
)

// Upstream names used for metrics, logs and breakers.
const (
	UpstreamSchedule = "schedule"
	UpstreamStats    = "stats"
	UpstreamLive     = "live"
	UpstreamInjuries = "injuries"
	UpstreamCBS      = "cbs"
)

// StatsHeaders are required by stats.nba.com; without them requests hang.
var StatsHeaders = map[string]string{
	"User-Agent":         "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
	"Referer":            "https://www.nba.com/",
	"Origin":             "https://www.nba.com",
	"Accept":             "application/json, text/plain, */*",
	"x-nba-stats-origin": "stats",
	"x-nba-stats-token":  "true",
}

// BrowserHeaders are sent to HTML and document hosts.
var BrowserHeaders = map[string]string{
	"User-Agent": StatsHeaders["User-Agent"],
	"Accept":     "text/html,application/xhtml+xml,application/pdf;q=0.9,*/*;q=0.8",
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig controls one upstream's transport policy.
type ClientConfig struct {
	Name            string
	HTTPClient      *http.Client
	Timeout         time.Duration
	RequestsPerSec  float64
	Burst           int
	MaxAttempts     int
	BreakerFailures int
	BreakerCooldown time.Duration
	Headers         map[string]string
	Logger          *slog.Logger
	Metrics         *metrics.Recorder
}

// ClientConfigFor derives a ClientConfig for a named upstream from process config.
func ClientConfigFor(name string, cfg config.UpstreamConfig, headers map[string]string, logger *slog.Logger, recorder *metrics.Recorder) ClientConfig {
	return ClientConfig{
		Name:            name,
		Timeout:         cfg.Timeout,
		RequestsPerSec:  cfg.RequestsPerSec,
		Burst:           cfg.Burst,
		MaxAttempts:     cfg.MaxAttempts,
		BreakerFailures: cfg.BreakerFailures,
		BreakerCooldown: cfg.BreakerCooldown,
		Headers:         headers,
		Logger:          logger,
		Metrics:         recorder,
	}
}

// Client is a GET-only HTTP client for one upstream. Every request passes a token bucket,
// a circuit breaker and a bounded exponential retry. 429s are never retried.
type Client struct {
	name        string
	httpClient  httpDoer
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
	maxAttempts int
	headers     map[string]string
	logger      *slog.Logger
	metrics     *metrics.Recorder
	newBackoff  func() backoff.BackOff
}

// NewClient constructs a Client with defaults for any unset field.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		name:        cfg.Name,
		httpClient:  resolveHTTPClient(cfg.HTTPClient, cfg.Timeout),
		maxAttempts: cfg.MaxAttempts,
		headers:     cfg.Headers,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = defaultAttempts
	}
	if cfg.RequestsPerSec > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), burst)
	}
	c.breaker = newBreaker(cfg, c.logger)
	c.newBackoff = func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = initialBackoff
		b.MaxElapsedTime = 0
		b.Reset()
		return b
	}
	return c
}

func newBreaker(cfg ClientConfig, logger *slog.Logger) *gobreaker.CircuitBreaker {
	failures := cfg.BreakerFailures
	if failures <= 0 {
		failures = defaultBreakerFailures
	}
	cooldown := cfg.BreakerCooldown
	if cooldown <= 0 {
		cooldown = defaultBreakerCooldown
	}
	name := cfg.Name
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(failures)
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var se *StatusError
			if errors.As(err, &se) {
				return !se.Retryable()
			}
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(breakerName string, from, to gobreaker.State) {
			logging.Warn(logger, "upstream breaker state changed",
				logging.FieldUpstream, breakerName,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
}

func resolveHTTPClient(client *http.Client, timeout time.Duration) httpDoer {
	if client != nil {
		return client
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Name returns the upstream label.
func (c *Client) Name() string {
	return c.name
}

// Get fetches url and returns the body of a 2xx response.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	attempt := 0
	op := func() error {
		attempt++
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(fmt.Errorf("%s: rate limit wait: %w", c.name, err))
			}
		}
		res, err := c.breaker.Execute(func() (interface{}, error) {
			return c.do(ctx, url)
		})
		if err != nil {
			return classify(c.name, err)
		}
		body = res.([]byte)
		return nil
	}
	notify := func(err error, wait time.Duration) {
		logging.Warn(logging.FromContext(ctx, c.logger), "upstream retry",
			logging.FieldUpstream, c.name,
			"attempt", attempt,
			"max_attempts", c.maxAttempts,
			"wait_ms", wait.Milliseconds(),
			logging.FieldError, err,
		)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackoff(), uint64(c.maxAttempts-1)), ctx)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, err
	}
	return body, nil
}

// GetJSON fetches url and decodes the body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	body, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &ParseError{Provider: c.name, Err: err}
	}
	return nil
}

func (c *Client) do(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamAttempt(c.name, time.Since(start), err)
		return nil, fmt.Errorf("%s: request: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		rlErr := &RateLimitError{
			Provider:   c.name,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
			Remaining:  resp.Header.Get("X-RateLimit-Remaining"),
			Message:    "Too Many Requests",
		}
		c.metrics.RecordUpstreamAttempt(c.name, time.Since(start), rlErr)
		c.metrics.RecordRateLimit(c.name, rlErr.RetryAfter)
		return nil, rlErr
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySnippet))
		statusErr := &StatusError{
			Provider:   c.name,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
		c.metrics.RecordUpstreamAttempt(c.name, time.Since(start), statusErr)
		return nil, statusErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.metrics.RecordUpstreamAttempt(c.name, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", c.name, err)
	}
	return body, nil
}

// classify decides whether an attempt error is worth retrying.
func classify(name string, err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return backoff.Permanent(fmt.Errorf("%s: %w", name, ErrProviderUnavailable))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return backoff.Permanent(err)
	}
	if _, ok := AsRateLimitError(err); ok {
		return backoff.Permanent(err)
	}
	var se *StatusError
	if errors.As(err, &se) && !se.Retryable() {
		return backoff.Permanent(err)
	}
	return err
}

func parseRetryAfter(raw string, now time.Time) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(raw); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
