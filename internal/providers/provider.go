package providers

import "context"

// Fetcher is the transport every source depends on. *Client satisfies it.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
	GetJSON(ctx context.Context, url string, v any) error
}

var _ Fetcher = (*Client)(nil)
