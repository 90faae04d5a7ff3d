package testutil

import (
	"io"
	"net/http"
	"strings"
	"sync"
)

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// NewHTTPClient returns a client whose transport is fn.
func NewHTTPClient(fn RoundTripperFunc) *http.Client {
	return &http.Client{Transport: fn}
}

// Response builds an *http.Response with the given status, body and optional header pairs.
func Response(status int, body string, headerPairs ...string) *http.Response {
	h := make(http.Header)
	for i := 0; i+1 < len(headerPairs); i += 2 {
		h.Set(headerPairs[i], headerPairs[i+1])
	}
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// Route answers requests whose URL contains Match.
type Route struct {
	Match   string
	Status  int
	Body    string
	Headers []string
}

// Upstream is a fake transport that serves canned routes and counts hits per route.
// Unmatched requests get a 404.
type Upstream struct {
	mu     sync.Mutex
	routes []Route
	hits   map[string]int
	// Gate, when set, is received from before every response.
	Gate chan struct{}
}

// NewUpstream builds a fake upstream. Earlier routes win.
func NewUpstream(routes ...Route) *Upstream {
	return &Upstream{routes: routes, hits: make(map[string]int)}
}

// Client returns an *http.Client backed by the fake.
func (u *Upstream) Client() *http.Client {
	return NewHTTPClient(u.RoundTrip)
}

// Set replaces or appends a route.
func (u *Upstream) Set(r Route) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i := range u.routes {
		if u.routes[i].Match == r.Match {
			u.routes[i] = r
			return
		}
	}
	u.routes = append(u.routes, r)
}

// Hits reports how many requests matched the route.
func (u *Upstream) Hits(match string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.hits[match]
}

// Total reports all matched requests.
func (u *Upstream) Total() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := 0
	for _, v := range u.hits {
		n += v
	}
	return n
}

func (u *Upstream) RoundTrip(req *http.Request) (*http.Response, error) {
	if u.Gate != nil {
		select {
		case <-u.Gate:
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}
	u.mu.Lock()
	url := req.URL.String()
	var matched *Route
	for i := range u.routes {
		if strings.Contains(url, u.routes[i].Match) {
			r := u.routes[i]
			matched = &r
			u.hits[r.Match]++
			break
		}
	}
	u.mu.Unlock()

	if matched == nil {
		return Response(http.StatusNotFound, "not found"), nil
	}
	status := matched.Status
	if status == 0 {
		status = http.StatusOK
	}
	return Response(status, matched.Body, matched.Headers...), nil
}
