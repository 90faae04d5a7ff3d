package teststubs

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/preston-bernstein/nba-next-game-service/internal/providers"
	"github.com/preston-bernstein/nba-next-game-service/internal/testutil"
)

// Client builds a single-attempt upstream client over a fake upstream.
func Client(name string, up *testutil.Upstream) *providers.Client {
	return providers.NewClient(providers.ClientConfig{
		Name:        name,
		HTTPClient:  up.Client(),
		MaxAttempts: 1,
	})
}

// StubFetcher is a providers.Fetcher that answers from canned bodies keyed by
// URL substring. Errs take precedence over Bodies.
type StubFetcher struct {
	mu     sync.Mutex
	Bodies map[string]string
	Errs   map[string]error
	URLs   []string
	Calls  atomic.Int32
}

// Get returns the first matching error or body; unmatched URLs are a 404.
func (s *StubFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	s.Calls.Add(1)
	s.mu.Lock()
	s.URLs = append(s.URLs, url)
	s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for match, err := range s.Errs {
		if strings.Contains(url, match) {
			return nil, err
		}
	}
	for match, body := range s.Bodies {
		if strings.Contains(url, match) {
			return []byte(body), nil
		}
	}
	return nil, &providers.StatusError{Provider: "stub", StatusCode: 404}
}

// GetJSON decodes the Get body into v.
func (s *StubFetcher) GetJSON(ctx context.Context, url string, v any) error {
	raw, err := s.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &providers.ParseError{Provider: "stub", Err: err}
	}
	return nil
}

// Requested reports whether any call URL contains match.
func (s *StubFetcher) Requested(match string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.URLs {
		if strings.Contains(u, match) {
			return true
		}
	}
	return false
}

var _ providers.Fetcher = (*StubFetcher)(nil)
